// ABOUTME: Store interface and data types for ripple persistence
// ABOUTME: Defines User, Conversation, Message structs and the Store interface

package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateConversation is returned when trying to create a direct
// conversation for a participant pair that already has one
var ErrDuplicateConversation = errors.New("conversation already exists")

// ErrDuplicateUser is returned when trying to create a user with an email
// that is already registered
var ErrDuplicateUser = errors.New("user already exists")

// Conversation type constants
const (
	ConversationTypeDirect = "direct"
	ConversationTypeGroup  = "group"
)

// User represents a registered account. Owned by the identity layer;
// the chat core only reads profile projections.
type User struct {
	ID           string
	Name         string
	Email        string
	Avatar       string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile returns the user's public projection.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
	}
}

// UserProfile is the public projection of a user exposed to other
// participants (no credentials, no timestamps).
type UserProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Conversation represents a chat conversation. Direct conversations carry a
// canonical DirectKey so the store can enforce at most one conversation per
// unordered participant pair.
type Conversation struct {
	ID            string
	Type          string // "direct" or "group"
	Name          string // empty allowed for direct
	Avatar        string // empty allowed for direct
	CreatedBy     string
	DirectKey     string // canonical "loID|hiID" pair, empty for groups
	LastMessageID string // empty until the first message is sent
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Participants holds resolved profile projections. Populated by reads
	// that perform the participant join; empty otherwise.
	Participants []*UserProfile
}

// MessageSummary is the lastMessage projection attached to conversation
// listings (content, sender, attachment, timestamp only).
type MessageSummary struct {
	Content    string    `json:"content"`
	SenderID   string    `json:"senderId"`
	Attachment string    `json:"attachment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ConversationSummary is a conversation enriched with its lastMessage
// summary for listing.
type ConversationSummary struct {
	Conversation
	LastMessage *MessageSummary
}

// Message represents a single chat message. Messages are immutable once
// created; there is no update or delete.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	Attachment     string
	CreatedAt      time.Time
}

// MessageWithSender is a message enriched with the sender's display fields
// for history listings.
type MessageWithSender struct {
	Message
	SenderName   string
	SenderAvatar string
}

// DirectKey canonicalizes an unordered participant pair into the key used
// for direct-conversation deduplication.
func DirectKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}

// Store defines the interface for ripple persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUserProfile(ctx context.Context, id, name, avatar string) (*User, error)
	ListContacts(ctx context.Context, excludeUserID string) ([]*UserProfile, error)

	// Conversations
	CreateConversation(ctx context.Context, conv *Conversation, participantIDs []string) error
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	GetDirectConversation(ctx context.Context, directKey string) (*Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]*ConversationSummary, error)
	ConversationIDsForUser(ctx context.Context, userID string) ([]string, error)
	SetLastMessage(ctx context.Context, conversationID, messageID string, at time.Time) error

	// Messages
	SaveMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*MessageWithSender, error)

	// Close releases any resources held by the store
	Close() error
}
