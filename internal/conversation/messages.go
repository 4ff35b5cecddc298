// ABOUTME: Message service: persist, broadcast, then update the lastMessage pointer
// ABOUTME: Broadcast follows persistence so no client ever sees an unsaved message

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
	"github.com/2389/ripple/internal/store"
)

// MessageService handles message send and history. Messages are immutable
// once persisted.
type MessageService struct {
	store  store.Store
	rooms  *room.Manager
	logger *slog.Logger
}

// NewMessageService creates a message service. Pass nil logger for default.
func NewMessageService(st store.Store, rooms *room.Manager, logger *slog.Logger) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{
		store:  st,
		rooms:  rooms,
		logger: logger.With("component", "messages"),
	}
}

// Send persists a message and broadcasts it to the conversation's room.
// The sequence is persist, broadcast, then update the conversation's
// lastMessage pointer. A pointer update failure is logged but does not fail
// the send: the message is already durable and broadcast, and the pointer
// heals on the next message.
func (s *MessageService) Send(ctx context.Context, payload *events.NewMessagePayload) (*MessagePayload, error) {
	if _, err := s.store.GetConversation(ctx, payload.ConversationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("conversation %s: %w", payload.ConversationID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("looking up conversation: %w", err)
	}

	msg := &store.Message{
		ID:             uuid.New().String(),
		ConversationID: payload.ConversationID,
		SenderID:       payload.Sender.ID,
		Content:        payload.Content,
		Attachment:     payload.Attachment,
		CreatedAt:      time.Now(),
	}

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}

	out := &MessagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		Attachment:     msg.Attachment,
		Sender: Sender{
			ID:     payload.Sender.ID,
			Name:   payload.Sender.Name,
			Avatar: payload.Sender.Avatar,
		},
		CreatedAt: msg.CreatedAt,
	}

	s.rooms.EmitToRoom(msg.ConversationID, events.OK(events.EventNewMessage, out))

	if err := s.store.SetLastMessage(ctx, msg.ConversationID, msg.ID, msg.CreatedAt); err != nil {
		// The message is saved and broadcast; a stale pointer only affects
		// listing previews and is overwritten by the next send.
		s.logger.Error("failed to update lastMessage pointer",
			"conversation_id", msg.ConversationID,
			"message_id", msg.ID,
			"error", err)
	}

	s.logger.Debug("message sent",
		"conversation_id", msg.ConversationID,
		"message_id", msg.ID,
		"sender_id", msg.SenderID)
	return out, nil
}

// History returns a conversation's messages newest first, each with the
// sender's display fields resolved.
func (s *MessageService) History(ctx context.Context, conversationID string) ([]*MessagePayload, error) {
	messages, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	payloads := make([]*MessagePayload, 0, len(messages))
	for _, m := range messages {
		payloads = append(payloads, &MessagePayload{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Content:        m.Content,
			Attachment:     m.Attachment,
			Sender: Sender{
				ID:     m.SenderID,
				Name:   m.SenderName,
				Avatar: m.SenderAvatar,
			},
			CreatedAt: m.CreatedAt,
		})
	}
	return payloads, nil
}
