// ABOUTME: Wires the six session events to the conversation and identity services
// ABOUTME: Maps service errors to failure envelopes without leaking internals

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/2389/ripple/internal/conversation"
	"github.com/2389/ripple/internal/events"
	"github.com/2389/ripple/internal/identity"
	"github.com/2389/ripple/internal/session"
	"github.com/2389/ripple/internal/store"
)

// Handlers binds session events to the services behind them.
type Handlers struct {
	conversations *conversation.Service
	messages      *conversation.MessageService
	identities    *identity.Service
	dispatcher    *events.Dispatcher
	logger        *slog.Logger
}

// RegisterHandlers wires every session event into the dispatcher.
func RegisterHandlers(d *events.Dispatcher, conversations *conversation.Service, messages *conversation.MessageService, identities *identity.Service, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		conversations: conversations,
		messages:      messages,
		identities:    identities,
		dispatcher:    d,
		logger:        logger.With("component", "handlers"),
	}

	d.Handle(events.EventNewConversation, h.newConversation)
	d.Handle(events.EventGetConversations, h.getConversations)
	d.Handle(events.EventNewMessage, h.newMessage)
	d.Handle(events.EventGetMessages, h.getMessages)
	d.Handle(events.EventUpdateProfile, h.updateProfile)
	d.Handle(events.EventGetContacts, h.getContacts)
}

func (h *Handlers) newConversation(ctx context.Context, sess *session.Session, data json.RawMessage) {
	var payload events.NewConversationPayload
	if err := events.Decode(data, &payload); err != nil {
		h.fail(sess, events.EventNewConversation, err)
		return
	}

	var (
		result *conversation.Payload
		isNew  bool
		err    error
	)
	switch payload.Type {
	case store.ConversationTypeDirect:
		if len(payload.Participants) != 2 {
			h.dispatcher.Reply(sess, events.Fail(events.EventNewConversation, "direct conversations require exactly 2 participants"))
			return
		}
		result, isNew, err = h.conversations.CreateOrGetDirect(ctx, sess, payload.Participants)
	case store.ConversationTypeGroup:
		result, isNew, err = h.conversations.CreateGroup(ctx, sess, payload.Name, payload.Avatar, payload.Participants)
	}
	if err != nil {
		h.fail(sess, events.EventNewConversation, err)
		return
	}

	// A new conversation was already broadcast to the room, which includes
	// the requester. Only the existing-conversation path needs a direct
	// reply.
	if !isNew {
		h.dispatcher.Reply(sess, events.OK(events.EventNewConversation, result))
	}
}

func (h *Handlers) getConversations(ctx context.Context, sess *session.Session, data json.RawMessage) {
	listed, err := h.conversations.List(ctx, sess.Identity.ID)
	if err != nil {
		h.fail(sess, events.EventGetConversations, err)
		return
	}
	h.dispatcher.Reply(sess, events.OK(events.EventGetConversations, listed))
}

func (h *Handlers) newMessage(ctx context.Context, sess *session.Session, data json.RawMessage) {
	var payload events.NewMessagePayload
	if err := events.Decode(data, &payload); err != nil {
		h.fail(sess, events.EventNewMessage, err)
		return
	}

	// The sender on the wire must be the session's user; clients cannot
	// impersonate.
	if payload.Sender.ID != sess.Identity.ID {
		h.dispatcher.Reply(sess, events.Fail(events.EventNewMessage, "sender must match the authenticated user"))
		return
	}

	if _, err := h.messages.Send(ctx, &payload); err != nil {
		h.fail(sess, events.EventNewMessage, err)
		return
	}
	// The broadcast to the room is the success signal; the sender receives
	// the persisted message there like every other member.
}

func (h *Handlers) getMessages(ctx context.Context, sess *session.Session, data json.RawMessage) {
	var payload events.GetMessagesPayload
	if err := events.Decode(data, &payload); err != nil {
		h.fail(sess, events.EventGetMessages, err)
		return
	}

	history, err := h.messages.History(ctx, payload.ConversationID)
	if err != nil {
		h.fail(sess, events.EventGetMessages, err)
		return
	}
	h.dispatcher.Reply(sess, events.OK(events.EventGetMessages, history))
}

func (h *Handlers) updateProfile(ctx context.Context, sess *session.Session, data json.RawMessage) {
	var payload events.UpdateProfilePayload
	if err := events.Decode(data, &payload); err != nil {
		h.fail(sess, events.EventUpdateProfile, err)
		return
	}

	profile, token, err := h.identities.UpdateProfile(ctx, sess.Identity.ID, payload.Name, payload.Avatar)
	if err != nil {
		h.fail(sess, events.EventUpdateProfile, err)
		return
	}

	h.dispatcher.Reply(sess, events.OK(events.EventUpdateProfile, map[string]any{
		"user":  profile,
		"token": token,
	}))
}

func (h *Handlers) getContacts(ctx context.Context, sess *session.Session, data json.RawMessage) {
	contacts, err := h.identities.Contacts(ctx, sess.Identity.ID)
	if err != nil {
		h.fail(sess, events.EventGetContacts, err)
		return
	}
	h.dispatcher.Reply(sess, events.OK(events.EventGetContacts, contacts))
}

// fail converts a service error into a failure envelope. Validation errors
// carry their message to the client; everything else is logged server-side
// and reported generically.
func (h *Handlers) fail(sess *session.Session, event string, err error) {
	switch {
	case errors.Is(err, events.ErrMalformedPayload), errors.Is(err, events.ErrInvalidPayload):
		h.dispatcher.Reply(sess, events.Fail(event, err.Error()))
	case errors.Is(err, store.ErrNotFound):
		h.dispatcher.Reply(sess, events.Fail(event, "not found"))
	case errors.Is(err, conversation.ErrNotParticipant):
		h.dispatcher.Reply(sess, events.Fail(event, "requester must be a participant"))
	case errors.Is(err, conversation.ErrSelfConversation):
		h.dispatcher.Reply(sess, events.Fail(event, "direct conversations require two distinct participants"))
	default:
		h.logger.Error("event handler failed",
			"event", event,
			"session_id", sess.ID,
			"error", err)
		h.dispatcher.Reply(sess, events.Fail(event, "internal error"))
	}
}
