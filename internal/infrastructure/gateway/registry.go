package gateway

import (
	"sync"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/infrastructure/monitoring"
	"camlive/pkg/validation"

	"go.uber.org/zap"
)

// RoomRegistry tracks which authenticated connections are subscribed
// to which broadcast room. Rooms are emergent: a room exists exactly
// while it has members, and membership is derived from each
// connection's joinedRooms set via the per-room index. All mutations
// happen under one lock, so concurrent joins and leaves on the same
// room can never lose an update.
type RoomRegistry struct {
	mu    sync.Mutex
	conns map[string]*Connection
	rooms map[domain.StreamID]map[string]*Connection

	metrics *monitoring.Collector
	logger  *zap.SugaredLogger
}

func NewRoomRegistry(metrics *monitoring.Collector, logger *zap.SugaredLogger) *RoomRegistry {
	return &RoomRegistry{
		conns:   make(map[string]*Connection),
		rooms:   make(map[domain.StreamID]map[string]*Connection),
		metrics: metrics,
		logger:  logger,
	}
}

// add registers a freshly handshaken connection.
func (r *RoomRegistry) add(conn *Connection) {
	r.mu.Lock()
	r.conns[conn.ID] = conn
	r.mu.Unlock()

	r.metrics.ConnectionOpened()
	r.logger.Infow("connection registered",
		"connection_id", conn.ID,
		"user_id", conn.User.ID,
		"username", conn.User.Username,
	)
}

// Join subscribes the connection to a room and announces the join to
// the room's current members, the joiner included. Joining a room the
// connection is already in is a no-op.
func (r *RoomRegistry) Join(conn *Connection, roomID domain.StreamID) {
	if roomID == "" {
		return
	}

	r.mu.Lock()
	if _, registered := r.conns[conn.ID]; !registered {
		r.mu.Unlock()
		return
	}
	if _, joined := conn.joinedRooms[roomID]; joined {
		r.mu.Unlock()
		return
	}
	conn.joinedRooms[roomID] = struct{}{}
	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[roomID] = room
	}
	room[conn.ID] = conn
	members := snapshot(room)
	r.mu.Unlock()

	r.metrics.RoomJoined(string(roomID))
	r.logger.Debugw("user joined room", "username", conn.User.Username, "room_id", roomID)

	deliver(members, ServerFrame{Event: EventUserJoined, Payload: PresenceEvent{
		UserID:    conn.User.ID,
		Username:  conn.User.Username,
		Timestamp: time.Now(),
	}})
}

// Leave unsubscribes the connection from a room and announces the
// departure. Leaving a room the connection never joined is a no-op.
func (r *RoomRegistry) Leave(conn *Connection, roomID domain.StreamID) {
	r.mu.Lock()
	if _, joined := conn.joinedRooms[roomID]; !joined {
		r.mu.Unlock()
		return
	}
	delete(conn.joinedRooms, roomID)
	members := r.removeFromRoom(conn, roomID)
	r.mu.Unlock()

	r.metrics.RoomLeft(string(roomID))
	r.logger.Debugw("user left room", "username", conn.User.Username, "room_id", roomID)

	deliver(members, ServerFrame{Event: EventUserLeft, Payload: PresenceEvent{
		UserID:    conn.User.ID,
		Username:  conn.User.Username,
		Timestamp: time.Now(),
	}})
}

// Broadcast delivers a frame to the room's member set as of this call.
// An empty room is a harmless no-op.
func (r *RoomRegistry) Broadcast(roomID domain.StreamID, frame ServerFrame) {
	r.mu.Lock()
	members := snapshot(r.rooms[roomID])
	r.mu.Unlock()

	deliver(members, frame)
}

// SendChat validates room membership, caps the message length and
// fans the chat message out to the room.
func (r *RoomRegistry) SendChat(conn *Connection, roomID domain.StreamID, message string) error {
	r.mu.Lock()
	_, joined := conn.joinedRooms[roomID]
	members := snapshot(r.rooms[roomID])
	r.mu.Unlock()

	if !joined {
		return domain.ErrNotJoined
	}

	deliver(members, ServerFrame{Event: EventChatMessage, Payload: ChatEvent{
		UserID:    conn.User.ID,
		Username:  conn.User.Username,
		Message:   validation.TruncateRunes(message, domain.MaxChatMessageLen),
		Timestamp: time.Now(),
	}})

	r.metrics.ChatMessageSent(string(roomID))
	return nil
}

// SendTip fans a tip announcement out to the room. The amount must
// already be validated positive by the caller; the note is capped at
// the tip limit, which is shorter than the chat limit.
func (r *RoomRegistry) SendTip(conn *Connection, roomID domain.StreamID, amount float64, message string) error {
	r.mu.Lock()
	_, joined := conn.joinedRooms[roomID]
	members := snapshot(r.rooms[roomID])
	r.mu.Unlock()

	if !joined {
		return domain.ErrNotJoined
	}

	deliver(members, ServerFrame{Event: EventTipReceived, Payload: TipEvent{
		UserID:    conn.User.ID,
		Username:  conn.User.Username,
		Amount:    amount,
		Message:   validation.TruncateRunes(message, domain.MaxTipNoteLen),
		Timestamp: time.Now(),
	}})

	r.metrics.TipBroadcast(string(roomID))
	return nil
}

// SendStreamUpdate forwards a stream status update to the room.
// TODO: check the sender owns the stream before forwarding; the
// payment/webhook path is the trusted channel today.
func (r *RoomRegistry) SendStreamUpdate(conn *Connection, roomID domain.StreamID, status, message string) error {
	r.mu.Lock()
	_, joined := conn.joinedRooms[roomID]
	members := snapshot(r.rooms[roomID])
	r.mu.Unlock()

	if !joined {
		return domain.ErrNotJoined
	}

	deliver(members, ServerFrame{Event: EventStreamUpdate, Payload: StreamUpdateEvent{
		StreamID:  roomID,
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}})
	return nil
}

// Disconnect removes the connection from every room it joined,
// announcing each departure, then discards it. It is idempotent:
// transport layers that fire multiple close signals cause exactly one
// round of userLeft events.
func (r *RoomRegistry) Disconnect(conn *Connection) {
	r.mu.Lock()
	if _, registered := r.conns[conn.ID]; !registered {
		r.mu.Unlock()
		return
	}
	delete(r.conns, conn.ID)

	type departure struct {
		roomID  domain.StreamID
		members []*Connection
	}
	var departures []departure
	for roomID := range conn.joinedRooms {
		delete(conn.joinedRooms, roomID)
		departures = append(departures, departure{roomID: roomID, members: r.removeFromRoom(conn, roomID)})
	}
	r.mu.Unlock()

	for _, d := range departures {
		r.metrics.RoomLeft(string(d.roomID))
		deliver(d.members, ServerFrame{Event: EventUserLeft, Payload: PresenceEvent{
			UserID:    conn.User.ID,
			Username:  conn.User.Username,
			Timestamp: time.Now(),
		}})
	}

	conn.shutdown()
	r.metrics.ConnectionClosed()
	r.logger.Infow("connection closed",
		"connection_id", conn.ID,
		"user_id", conn.User.ID,
	)
}

// NotifyTip announces a tip completed through the payment workflow to
// the stream's room. Implements ports.TipNotifier.
func (r *RoomRegistry) NotifyTip(streamID domain.StreamID, userID domain.UserID, username string, amount float64, message string) {
	r.Broadcast(streamID, ServerFrame{Event: EventTipReceived, Payload: TipEvent{
		UserID:    userID,
		Username:  username,
		Amount:    amount,
		Message:   validation.TruncateRunes(message, domain.MaxTipNoteLen),
		Timestamp: time.Now(),
	}})
	r.metrics.TipBroadcast(string(streamID))
}

// SendStatusUpdate announces a lifecycle transition made through the
// HTTP API to the stream's room.
func (r *RoomRegistry) SendStatusUpdate(streamID domain.StreamID, status string) {
	r.Broadcast(streamID, ServerFrame{Event: EventStreamUpdate, Payload: StreamUpdateEvent{
		StreamID:  streamID,
		Status:    status,
		Timestamp: time.Now(),
	}})
}

// RoomSize returns the current member count of a room.
func (r *RoomRegistry) RoomSize(roomID domain.StreamID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[roomID])
}

// ConnectionCount returns the number of live connections.
func (r *RoomRegistry) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// removeFromRoom drops the connection from the room index, deleting
// the room when it empties, and returns the remaining members. The
// leaver does not hear its own departure; it has already left the
// room when the announcement goes out. Caller holds r.mu.
func (r *RoomRegistry) removeFromRoom(conn *Connection, roomID domain.StreamID) []*Connection {
	room := r.rooms[roomID]
	if room == nil {
		return nil
	}
	delete(room, conn.ID)
	members := snapshot(room)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
	return members
}

func snapshot(room map[string]*Connection) []*Connection {
	members := make([]*Connection, 0, len(room))
	for _, member := range room {
		members = append(members, member)
	}
	return members
}

func deliver(members []*Connection, frame ServerFrame) {
	for _, member := range members {
		member.enqueue(frame)
	}
}
