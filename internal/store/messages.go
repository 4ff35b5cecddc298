// ABOUTME: Message persistence operations for the SQLite store
// ABOUTME: Append-only message log with sender-enriched history reads

package store

import (
	"context"
	"fmt"
)

// SaveMessage inserts a message row. Messages are immutable; there is no
// update path. The conversation must exist (enforced by the foreign key).
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, attachment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.SenderID,
		msg.Content,
		msg.Attachment,
		formatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("saved message",
		"id", msg.ID,
		"conversation_id", msg.ConversationID,
		"sender_id", msg.SenderID)
	return nil
}

// ListMessages returns the messages of a conversation ordered by created_at
// descending, each enriched with the sender's display fields.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]*MessageWithSender, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.attachment, m.created_at,
		       u.name, u.avatar
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = ?
		ORDER BY m.created_at DESC, m.id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*MessageWithSender
	for rows.Next() {
		var m MessageWithSender
		var createdAtStr string

		err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.SenderID,
			&m.Content,
			&m.Attachment,
			&createdAtStr,
			&m.SenderName,
			&m.SenderAvatar,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		m.CreatedAt, err = parseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return messages, nil
}
