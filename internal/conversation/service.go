// ABOUTME: Conversation service: creation with direct-pair dedup and listing
// ABOUTME: New conversations admit online participants and broadcast to the room

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/ripple/internal/events"
	"github.com/2389/ripple/internal/room"
	"github.com/2389/ripple/internal/session"
	"github.com/2389/ripple/internal/store"
)

// ErrNotParticipant is returned when the requester is not part of the
// direct pair they are trying to open.
var ErrNotParticipant = errors.New("requester is not a participant")

// ErrSelfConversation is returned when a direct pair names the same user
// twice. A degenerate pair would otherwise collide with the participant
// primary key during insert.
var ErrSelfConversation = errors.New("direct conversation requires two distinct participants")

// Service coordinates conversation creation and listing. Creation is the
// only path that mutates room membership outside of connect/disconnect.
type Service struct {
	store    store.Store
	registry *session.Registry
	rooms    *room.Manager
	logger   *slog.Logger
}

// NewService creates a conversation service. Pass nil logger for default.
func NewService(st store.Store, registry *session.Registry, rooms *room.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		registry: registry,
		rooms:    rooms,
		logger:   logger.With("component", "conversation"),
	}
}

// CreateOrGetDirect returns the direct conversation for the given pair,
// creating it if none exists. The second return reports whether this call
// created it.
//
// An existing conversation is returned to the requester only: no room
// admission changes and no broadcast. A new conversation admits every
// currently-online invited participant to its room and broadcasts the
// populated conversation there, so every admitted session (including the
// requester) receives one consistent isNew=true event.
func (s *Service) CreateOrGetDirect(ctx context.Context, sess *session.Session, participants []string) (*Payload, bool, error) {
	if len(participants) != 2 {
		return nil, false, fmt.Errorf("direct conversation requires exactly 2 participants, got %d", len(participants))
	}
	if participants[0] == participants[1] {
		return nil, false, ErrSelfConversation
	}
	if participants[0] != sess.Identity.ID && participants[1] != sess.Identity.ID {
		return nil, false, ErrNotParticipant
	}

	key := store.DirectKey(participants[0], participants[1])

	existing, err := s.store.GetDirectConversation(ctx, key)
	if err == nil {
		s.logger.Debug("direct conversation already exists",
			"conversation_id", existing.ID,
			"requester", sess.Identity.ID)
		return payloadFrom(existing, false), false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("looking up direct conversation: %w", err)
	}

	now := time.Now()
	conv := &store.Conversation{
		ID:        uuid.New().String(),
		Type:      store.ConversationTypeDirect,
		CreatedBy: sess.Identity.ID,
		DirectKey: key,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateConversation(ctx, conv, participants); err != nil {
		// Another session may have created the pair's conversation between
		// our lookup and insert. The store's uniqueness makes us lose the
		// race cleanly: retry the lookup and hand back the winner.
		if errors.Is(err, store.ErrDuplicateConversation) {
			winner, lookupErr := s.store.GetDirectConversation(ctx, key)
			if lookupErr == nil {
				s.logger.Debug("found existing conversation after race", "conversation_id", winner.ID)
				return payloadFrom(winner, false), false, nil
			}
			s.logger.Error("retry lookup failed after duplicate error", "lookup_error", lookupErr)
		}
		return nil, false, fmt.Errorf("creating direct conversation: %w", err)
	}

	return s.admitAndBroadcast(ctx, conv.ID, participants)
}

// CreateGroup creates a group conversation. There is no dedup: every call
// creates a new conversation. The requester is always included in the
// participant set.
func (s *Service) CreateGroup(ctx context.Context, sess *session.Session, name, avatar string, participants []string) (*Payload, bool, error) {
	participants = ensureIncluded(dedupeIDs(participants), sess.Identity.ID)

	now := time.Now()
	conv := &store.Conversation{
		ID:        uuid.New().String(),
		Type:      store.ConversationTypeGroup,
		Name:      name,
		Avatar:    avatar,
		CreatedBy: sess.Identity.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateConversation(ctx, conv, participants); err != nil {
		return nil, false, fmt.Errorf("creating group conversation: %w", err)
	}

	return s.admitAndBroadcast(ctx, conv.ID, participants)
}

// admitAndBroadcast admits every online invited participant to the new room
// and broadcasts the populated conversation there. Participants who connect
// later pick the room up during their own connect-time sync.
func (s *Service) admitAndBroadcast(ctx context.Context, conversationID string, participants []string) (*Payload, bool, error) {
	for _, member := range s.registry.SessionsFor(participants) {
		s.rooms.Admit(member, conversationID)
	}

	populated, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, false, fmt.Errorf("populating conversation: %w", err)
	}

	payload := payloadFrom(populated, true)
	s.rooms.EmitToRoom(conversationID, events.OK(events.EventNewConversation, payload))

	s.logger.Info("conversation created",
		"conversation_id", conversationID,
		"type", populated.Type,
		"participants", len(participants))
	return payload, true, nil
}

// List returns the user's conversations ordered by updatedAt descending,
// each with participant profiles and a lastMessage summary. Read-only and
// safe to retry.
func (s *Service) List(ctx context.Context, userID string) ([]*Payload, error) {
	summaries, err := s.store.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	payloads := make([]*Payload, 0, len(summaries))
	for _, cs := range summaries {
		payloads = append(payloads, payloadFromSummary(cs))
	}
	return payloads, nil
}

func ensureIncluded(participants []string, userID string) []string {
	for _, id := range participants {
		if id == userID {
			return participants
		}
	}
	return append(participants, userID)
}

// dedupeIDs removes repeated IDs, keeping first-occurrence order. Repeats
// would violate the participant primary key on insert.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
