package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/services"
	"camlive/internal/infrastructure/monitoring"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Config holds the gateway's transport tuning knobs.
type Config struct {
	PingInterval    time.Duration
	PongTimeout     time.Duration
	WriteTimeout    time.Duration
	SendBufferSize  int
	MaxMessageBytes int64

	// Per-connection inbound message rate; zero disables limiting.
	MessagesPerSecond float64
	MessageBurst      int
}

// Server authenticates inbound websocket connections and drives their
// read/write loops. A connection that fails authentication is rejected
// during the HTTP handshake, before any Connection object exists, so
// an unauthenticated socket can never reach a room.
type Server struct {
	tokens   services.TokenService
	registry *RoomRegistry
	metrics  *monitoring.Collector
	cfg      Config
	logger   *zap.SugaredLogger
}

func NewServer(tokens services.TokenService, registry *RoomRegistry, metrics *monitoring.Collector, cfg Config, logger *zap.SugaredLogger) *Server {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 64
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 64 * 1024
	}
	return &Server{
		tokens:   tokens,
		registry: registry,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
	}
}

// Registry exposes the room registry for collaborators that broadcast
// without owning a connection (the payment workflow).
func (s *Server) Registry() *RoomRegistry {
	return s.registry
}

// extractToken pulls the bearer token from the handshake request,
// checking the query parameter, then the auth header the client
// payload maps onto, then the Authorization header.
func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if token := r.Header.Get("X-Auth-Token"); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// HandleWebSocket authenticates and accepts one websocket connection.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		s.logger.Warnw("websocket handshake without token", "remote", r.RemoteAddr)
		s.metrics.AuthFailure("missing_token")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, _, err := s.tokens.Validate(r.Context(), token, services.TokenAccess)
	if err != nil {
		s.logger.Warnw("websocket handshake rejected", "remote", r.RemoteAddr, "error", err)
		s.metrics.AuthFailure(authFailureReason(err))
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error; the client aborted or
		// sent a non-websocket request. No Connection was created.
		s.logger.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := newConnection(uuid.New().String(), user, s.cfg.SendBufferSize)
	s.registry.add(conn)

	s.logger.Infow("websocket connected",
		"connection_id", conn.ID,
		"user_id", user.ID,
		"username", user.Username,
	)

	go s.writeLoop(conn, ws)
	s.readLoop(conn, ws)
}

// readLoop processes inbound frames in arrival order until the
// transport closes, then runs the single disconnect.
func (s *Server) readLoop(conn *Connection, ws *websocket.Conn) {
	defer func() {
		s.registry.Disconnect(conn)
		ws.Close()
	}()

	ws.SetReadLimit(s.cfg.MaxMessageBytes)
	ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		return nil
	})

	var limiter *rate.Limiter
	if s.cfg.MessagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.MessagesPerSecond), s.cfg.MessageBurst)
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Infow("websocket read error", "connection_id", conn.ID, "error", err)
			}
			return
		}

		if limiter != nil && !limiter.Allow() {
			s.sendError(conn, "rate limit exceeded")
			continue
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.sendError(conn, "malformed frame")
			continue
		}

		if err := s.handleFrame(context.Background(), conn, frame); err != nil {
			s.logger.Debugw("event rejected",
				"connection_id", conn.ID,
				"event", frame.Event,
				"error", err,
			)
			s.sendError(conn, err.Error())
		}
	}
}

// writeLoop drains the connection's send channel and keeps the
// transport alive with pings.
func (s *Server) writeLoop(conn *Connection, ws *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case frame := <-conn.send:
			ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := ws.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-conn.done:
			return
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, conn *Connection, frame Frame) error {
	switch frame.Event {
	case EventJoinRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil || payload.RoomID == "" {
			return fmt.Errorf("invalid joinRoom payload")
		}
		s.registry.Join(conn, payload.RoomID)
		return nil

	case EventLeaveRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil || payload.RoomID == "" {
			return fmt.Errorf("invalid leaveRoom payload")
		}
		s.registry.Leave(conn, payload.RoomID)
		return nil

	case EventChatMessage:
		var payload ChatMessagePayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil || payload.RoomID == "" || payload.Message == "" {
			return fmt.Errorf("invalid chatMessage payload")
		}
		return s.chatError(s.registry.SendChat(conn, payload.RoomID, payload.Message))

	case EventTipReceived:
		var payload TipPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil || payload.RoomID == "" {
			return fmt.Errorf("invalid tipReceived payload")
		}
		if payload.Amount <= 0 {
			return fmt.Errorf("tip amount must be > 0")
		}
		return s.chatError(s.registry.SendTip(conn, payload.RoomID, payload.Amount, payload.Message))

	case EventStreamUpdate:
		var payload StreamUpdatePayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil || payload.RoomID == "" || payload.Status == "" {
			return fmt.Errorf("invalid streamUpdate payload")
		}
		return s.chatError(s.registry.SendStreamUpdate(conn, payload.RoomID, payload.Status, payload.Message))

	default:
		return fmt.Errorf("unknown event: %s", frame.Event)
	}
}

func (s *Server) chatError(err error) error {
	if errors.Is(err, domain.ErrNotJoined) {
		return fmt.Errorf("you must join this room first")
	}
	return err
}

func (s *Server) sendError(conn *Connection, message string) {
	conn.enqueue(ServerFrame{Event: EventError, Payload: ErrorEvent{Message: message}})
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrIdentityNotFound):
		return "identity_not_found"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	default:
		return "store_error"
	}
}
