// ABOUTME: Session handle for a single authenticated connection
// ABOUTME: Holds the immutable identity and a buffered outbound event channel

package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/2389/ripple/internal/auth"
)

// Session is the handle for one authenticated connection. The identity is
// fixed at handshake time; the outbox carries marshaled events toward the
// transport's write pump.
type Session struct {
	ID       string
	Identity auth.Identity

	outbox    chan []byte
	closeOnce sync.Once
}

// New creates a session for the given identity with the given outbound
// buffer size.
func New(identity auth.Identity, bufferSize int) *Session {
	return &Session{
		ID:       uuid.New().String(),
		Identity: identity,
		outbox:   make(chan []byte, bufferSize),
	}
}

// Send queues a marshaled event for delivery. Non-blocking: returns false
// when the session's buffer is full or the session is closed, in which case
// the event is dropped for this session only.
func (s *Session) Send(payload []byte) (sent bool) {
	defer func() {
		// Send on a closed outbox panics; treat it as a drop.
		if recover() != nil {
			sent = false
		}
	}()

	select {
	case s.outbox <- payload:
		return true
	default:
		return false
	}
}

// Outbox returns the channel the transport's write pump drains. The channel
// is closed when the session closes.
func (s *Session) Outbox() <-chan []byte {
	return s.outbox
}

// Close closes the session's outbox. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.outbox)
	})
}
