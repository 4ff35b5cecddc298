// ABOUTME: Process-wide registry of active sessions keyed by user ID
// ABOUTME: Supports multi-device users and idempotent unregistration

package session

import (
	"log/slog"
	"sync"
)

// Registry tracks every active session in the process. A user may hold any
// number of concurrent sessions (multi-device); entries are removed exactly
// once on disconnect.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Session // userID -> sessionID -> session
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. Pass nil logger for default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]map[string]*Session),
		logger:   logger.With("component", "sessions"),
	}
}

// Register adds a session to the registry. Registering the same session
// twice is a no-op.
func (r *Registry) Register(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID := sess.Identity.ID
	if _, ok := r.sessions[userID]; !ok {
		r.sessions[userID] = make(map[string]*Session)
	}
	if _, exists := r.sessions[userID][sess.ID]; exists {
		return
	}
	r.sessions[userID][sess.ID] = sess

	r.logger.Info("session registered",
		"session_id", sess.ID,
		"user_id", userID,
		"user_sessions", len(r.sessions[userID]))
}

// Unregister removes a session from the registry. Idempotent: removing a
// session that is already gone is a no-op, not an error.
func (r *Registry) Unregister(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID := sess.Identity.ID
	userSessions, ok := r.sessions[userID]
	if !ok {
		return
	}
	if _, exists := userSessions[sess.ID]; !exists {
		return
	}

	delete(userSessions, sess.ID)
	if len(userSessions) == 0 {
		delete(r.sessions, userID)
	}

	r.logger.Info("session unregistered",
		"session_id", sess.ID,
		"user_id", userID)
}

// SessionsFor returns every active session belonging to any of the given
// users. Used at conversation-creation time to admit online participants to
// the new room.
func (r *Registry) SessionsFor(userIDs []string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Session
	for _, userID := range userIDs {
		for _, sess := range r.sessions[userID] {
			result = append(result, sess)
		}
	}
	return result
}

// IsOnline reports whether the user has at least one active session.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions[userID]) > 0
}

// Len returns the total number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, userSessions := range r.sessions {
		n += len(userSessions)
	}
	return n
}
