package domain

import "time"

// MaxChatMessageLen and MaxTipNoteLen cap user supplied text before it
// is fanned out to a room. Longer input is truncated, not rejected.
const (
	MaxChatMessageLen = 500
	MaxTipNoteLen     = 200
)

type ChatMessage struct {
	ID        string    `json:"id"`
	StreamID  StreamID  `json:"stream_id"`
	UserID    UserID    `json:"user_id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
