// ABOUTME: Typed payload schemas per event name with validation tags
// ABOUTME: Malformed payloads are rejected at the dispatch boundary

package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Payload errors. Both are validation failures surfaced to the triggering
// session as a failure envelope before any business logic runs.
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrInvalidPayload   = errors.New("invalid payload")
)

var validate = validator.New()

// NewConversationPayload starts a conversation. Direct conversations must
// name exactly two participants; the handler enforces the count because it
// depends on Type.
type NewConversationPayload struct {
	Type         string   `json:"type" validate:"required,oneof=direct group"`
	Participants []string `json:"participants" validate:"required,min=1,dive,required"`
	Name         string   `json:"name"`
	Avatar       string   `json:"avatar"`
}

// GetConversationsPayload is empty; listing is scoped to the session's
// identity.
type GetConversationsPayload struct{}

// MessageSender carries the sender display fields the client already holds,
// echoed into the broadcast without a re-fetch.
type MessageSender struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// NewMessagePayload sends a message into a conversation. Content may be
// empty only when an attachment is present.
type NewMessagePayload struct {
	ConversationID string        `json:"conversationId" validate:"required"`
	Sender         MessageSender `json:"sender" validate:"required"`
	Content        string        `json:"content" validate:"required_without=Attachment"`
	Attachment     string        `json:"attachment"`
}

// GetMessagesPayload fetches a conversation's history.
type GetMessagesPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

// UpdateProfilePayload changes the session user's display fields. At least
// one of name or avatar must be present.
type UpdateProfilePayload struct {
	Name   string `json:"name" validate:"required_without=Avatar"`
	Avatar string `json:"avatar"`
}

// GetContactsPayload is empty; contacts are everyone but the caller.
type GetContactsPayload struct{}

// Decode unmarshals raw event data into the typed payload and validates it.
// Returns ErrMalformedPayload for JSON errors and ErrInvalidPayload for
// schema violations.
func Decode(raw json.RawMessage, payload any) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
