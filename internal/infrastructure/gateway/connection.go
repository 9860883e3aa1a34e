package gateway

import (
	"sync"

	"camlive/internal/core/domain"
)

// Connection is one authenticated real-time session. It is created
// only after a successful handshake (a rejected handshake never
// produces one) and its User binding never changes afterwards.
//
// joinedRooms is the single source of truth for membership; the
// registry's per-room index is derived from it and both are mutated
// together under the registry lock.
type Connection struct {
	ID   string
	User *domain.User

	send chan ServerFrame
	done chan struct{}

	joinedRooms map[domain.StreamID]struct{}

	closeOnce sync.Once
}

func newConnection(id string, user *domain.User, sendBuffer int) *Connection {
	return &Connection{
		ID:          id,
		User:        user,
		send:        make(chan ServerFrame, sendBuffer),
		done:        make(chan struct{}),
		joinedRooms: make(map[domain.StreamID]struct{}),
	}
}

// enqueue hands a frame to the writer without blocking the caller. A
// connection whose send buffer is full drops the frame rather than
// stalling the room fan-out.
func (c *Connection) enqueue(frame ServerFrame) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// shutdown closes the done channel exactly once, releasing the writer.
func (c *Connection) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
