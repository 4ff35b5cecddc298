// ABOUTME: Wire payload projections for conversation and message events
// ABOUTME: These shapes are what clients receive inside the response envelope

package conversation

import (
	"time"

	"github.com/2389/ripple/internal/store"
)

// Payload is the conversation projection sent to clients: participant
// profiles resolved, lastMessage summarized, and the isNew flag that tells
// receivers whether this broadcast created the conversation.
type Payload struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	Name         string                `json:"name"`
	Avatar       string                `json:"avatar"`
	CreatedBy    string                `json:"createdBy"`
	Participants []*store.UserProfile  `json:"participants"`
	LastMessage  *store.MessageSummary `json:"lastMessage,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	IsNew        bool                  `json:"isNew"`
}

func payloadFrom(conv *store.Conversation, isNew bool) *Payload {
	return &Payload{
		ID:           conv.ID,
		Type:         conv.Type,
		Name:         conv.Name,
		Avatar:       conv.Avatar,
		CreatedBy:    conv.CreatedBy,
		Participants: conv.Participants,
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
		IsNew:        isNew,
	}
}

func payloadFromSummary(cs *store.ConversationSummary) *Payload {
	p := payloadFrom(&cs.Conversation, false)
	p.LastMessage = cs.LastMessage
	return p
}

// Sender carries the display fields broadcast alongside a message. They are
// supplied by the caller, not re-fetched from the store.
type Sender struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// MessagePayload is the message projection sent to clients.
type MessagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Content        string    `json:"content"`
	Attachment     string    `json:"attachment,omitempty"`
	Sender         Sender    `json:"sender"`
	CreatedAt      time.Time `json:"createdAt"`
}
