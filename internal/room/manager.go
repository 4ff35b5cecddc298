// ABOUTME: Room membership table and broadcast fan-out keyed by conversation ID
// ABOUTME: Syncs a session's rooms with persisted membership on connect

package room

import (
	"context"
	"log/slog"
	"sync"

	"github.com/2389/ripple/internal/events"
	"github.com/2389/ripple/internal/session"
	"github.com/2389/ripple/internal/store"
)

// Manager is the process-wide room membership table. Room identity equals
// conversation ID; every session in a room receives events emitted to it.
type Manager struct {
	mu           sync.RWMutex
	rooms        map[string]map[string]*session.Session // conversationID -> sessionID -> session
	sessionRooms map[string]map[string]struct{}         // sessionID -> conversationID set
	store        store.Store
	logger       *slog.Logger
}

// NewManager creates an empty room manager backed by the given store.
// Pass nil logger for default.
func NewManager(st store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		rooms:        make(map[string]map[string]*session.Session),
		sessionRooms: make(map[string]map[string]struct{}),
		store:        st,
		logger:       logger.With("component", "rooms"),
	}
}

// Admit joins a session to a conversation's room. Admitting a session that
// is already in the room is a no-op.
func (m *Manager) Admit(sess *session.Session, conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[conversationID]; !ok {
		m.rooms[conversationID] = make(map[string]*session.Session)
	}
	m.rooms[conversationID][sess.ID] = sess

	if _, ok := m.sessionRooms[sess.ID]; !ok {
		m.sessionRooms[sess.ID] = make(map[string]struct{})
	}
	m.sessionRooms[sess.ID][conversationID] = struct{}{}

	m.logger.Debug("session admitted to room",
		"session_id", sess.ID,
		"conversation_id", conversationID,
		"room_size", len(m.rooms[conversationID]))
}

// RemoveSession drops a session from every room it occupies. Called on
// disconnect; idempotent.
func (m *Manager) RemoveSession(sess *session.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conversationIDs, ok := m.sessionRooms[sess.ID]
	if !ok {
		return
	}

	for conversationID := range conversationIDs {
		members := m.rooms[conversationID]
		delete(members, sess.ID)
		if len(members) == 0 {
			delete(m.rooms, conversationID)
		}
	}
	delete(m.sessionRooms, sess.ID)

	m.logger.Debug("session removed from rooms",
		"session_id", sess.ID,
		"rooms", len(conversationIDs))
}

// JoinConversationRooms syncs the session's room set with its persisted
// conversation memberships. A store failure here is non-fatal: the session
// stays connected but may miss broadcasts until its next reconnect
// (availability over consistency).
func (m *Manager) JoinConversationRooms(ctx context.Context, sess *session.Session) error {
	conversationIDs, err := m.store.ConversationIDsForUser(ctx, sess.Identity.ID)
	if err != nil {
		m.logger.Error("failed to load conversation memberships",
			"session_id", sess.ID,
			"user_id", sess.Identity.ID,
			"error", err)
		return err
	}

	for _, conversationID := range conversationIDs {
		m.Admit(sess, conversationID)
	}

	m.logger.Debug("session rooms populated",
		"session_id", sess.ID,
		"user_id", sess.Identity.ID,
		"rooms", len(conversationIDs))
	return nil
}

// EmitToRoom broadcasts an envelope to every session in the conversation's
// room. The envelope is encoded once; delivery is non-blocking per session,
// dropping for slow consumers rather than stalling the sender.
func (m *Manager) EmitToRoom(conversationID string, envelope events.Outbound) {
	payload, err := envelope.Encode()
	if err != nil {
		m.logger.Error("failed to encode broadcast",
			"conversation_id", conversationID,
			"event", envelope.Event,
			"error", err)
		return
	}

	m.mu.RLock()
	members, ok := m.rooms[conversationID]
	if !ok || len(members) == 0 {
		m.mu.RUnlock()
		return
	}

	// Copy member sessions under read lock to avoid holding it during sends
	targets := make([]*session.Session, 0, len(members))
	for _, sess := range members {
		targets = append(targets, sess)
	}
	m.mu.RUnlock()

	for _, sess := range targets {
		if !sess.Send(payload) {
			m.logger.Debug("dropped broadcast for slow session",
				"session_id", sess.ID,
				"conversation_id", conversationID,
				"event", envelope.Event)
		}
	}
}

// RoomSize returns the number of sessions currently in a room.
func (m *Manager) RoomSize(conversationID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rooms[conversationID])
}
