package gateway

import (
	"encoding/json"
	"time"

	"camlive/internal/core/domain"
)

// Client → gateway event names.
const (
	EventJoinRoom     = "joinRoom"
	EventLeaveRoom    = "leaveRoom"
	EventChatMessage  = "chatMessage"
	EventTipReceived  = "tipReceived"
	EventStreamUpdate = "streamUpdate"
)

// Gateway → client event names.
const (
	EventUserJoined = "userJoined"
	EventUserLeft   = "userLeft"
	EventError      = "error"
)

// Frame is one inbound websocket message.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerFrame is one outbound websocket message.
type ServerFrame struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

type JoinRoomPayload struct {
	RoomID domain.StreamID `json:"roomId"`
}

type ChatMessagePayload struct {
	RoomID  domain.StreamID `json:"roomId"`
	Message string          `json:"message"`
}

type TipPayload struct {
	RoomID  domain.StreamID `json:"roomId"`
	Amount  float64         `json:"amount"`
	Message string          `json:"message,omitempty"`
}

type StreamUpdatePayload struct {
	RoomID  domain.StreamID `json:"roomId"`
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
}

type PresenceEvent struct {
	UserID    domain.UserID `json:"userId"`
	Username  string        `json:"username"`
	Timestamp time.Time     `json:"timestamp"`
}

type ChatEvent struct {
	UserID    domain.UserID `json:"userId"`
	Username  string        `json:"username"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

type TipEvent struct {
	UserID    domain.UserID `json:"userId"`
	Username  string        `json:"username"`
	Amount    float64       `json:"amount"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

type StreamUpdateEvent struct {
	StreamID  domain.StreamID `json:"streamId"`
	Status    string          `json:"status"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
