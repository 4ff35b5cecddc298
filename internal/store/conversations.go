// ABOUTME: Conversation persistence with direct-pair deduplication
// ABOUTME: Creation is transactional over the conversation row and its participants

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateConversation inserts a conversation and its participant rows in one
// transaction. For direct conversations the DirectKey must be set; if another
// conversation already holds the same key, ErrDuplicateConversation is
// returned and nothing is written.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *Conversation, participantIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO conversations (id, type, name, avatar, created_by, direct_key, last_message_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)
	`

	var directKey sql.NullString
	if conv.DirectKey != "" {
		directKey = sql.NullString{String: conv.DirectKey, Valid: true}
	}

	_, err = tx.ExecContext(ctx, query,
		conv.ID,
		conv.Type,
		conv.Name,
		conv.Avatar,
		conv.CreatedBy,
		directKey,
		formatTime(conv.CreatedAt),
		formatTime(conv.UpdatedAt),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateConversation
		}
		return fmt.Errorf("inserting conversation: %w", err)
	}

	for _, userID := range participantIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id) VALUES (?, ?)`,
			conv.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("inserting participant %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing conversation: %w", err)
	}

	s.logger.Debug("created conversation",
		"id", conv.ID,
		"type", conv.Type,
		"participants", len(participantIDs))
	return nil
}

// GetConversation retrieves a conversation by ID with participant profiles
// resolved. Returns ErrNotFound if the conversation doesn't exist.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	query := `
		SELECT id, type, name, avatar, created_by, direct_key, last_message_id, created_at, updated_at
		FROM conversations
		WHERE id = ?
	`
	return s.scanConversation(ctx, s.db.QueryRowContext(ctx, query, id))
}

// GetDirectConversation retrieves the direct conversation for a canonical
// participant-pair key. Returns ErrNotFound if no such conversation exists.
func (s *SQLiteStore) GetDirectConversation(ctx context.Context, directKey string) (*Conversation, error) {
	query := `
		SELECT id, type, name, avatar, created_by, direct_key, last_message_id, created_at, updated_at
		FROM conversations
		WHERE direct_key = ?
	`
	return s.scanConversation(ctx, s.db.QueryRowContext(ctx, query, directKey))
}

func (s *SQLiteStore) scanConversation(ctx context.Context, row *sql.Row) (*Conversation, error) {
	var conv Conversation
	var directKey, lastMessageID sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&conv.ID,
		&conv.Type,
		&conv.Name,
		&conv.Avatar,
		&conv.CreatedBy,
		&directKey,
		&lastMessageID,
		&createdAtStr,
		&updatedAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}

	conv.DirectKey = directKey.String
	conv.LastMessageID = lastMessageID.String

	conv.CreatedAt, err = parseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	conv.UpdatedAt, err = parseTime(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	conv.Participants, err = s.loadParticipants(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	return &conv, nil
}

// loadParticipants resolves the participant profile projections for a
// conversation. This is the explicit read-through join: callers get exactly
// id, name, email, avatar and nothing else.
func (s *SQLiteStore) loadParticipants(ctx context.Context, conversationID string) ([]*UserProfile, error) {
	query := `
		SELECT u.id, u.name, u.email, u.avatar
		FROM conversation_participants cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.conversation_id = ?
		ORDER BY u.id
	`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying participants: %w", err)
	}
	defer rows.Close()

	var participants []*UserProfile
	for rows.Next() {
		var p UserProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Avatar); err != nil {
			return nil, fmt.Errorf("scanning participant: %w", err)
		}
		participants = append(participants, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating participants: %w", err)
	}

	return participants, nil
}

// ListConversationsForUser returns every conversation the user participates
// in, ordered by updated_at descending, each with participant profiles and a
// lastMessage summary when one exists.
func (s *SQLiteStore) ListConversationsForUser(ctx context.Context, userID string) ([]*ConversationSummary, error) {
	query := `
		SELECT c.id, c.type, c.name, c.avatar, c.created_by, c.direct_key, c.last_message_id,
		       c.created_at, c.updated_at,
		       m.content, m.sender_id, m.attachment, m.created_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id AND cp.user_id = ?
		LEFT JOIN messages m ON m.id = c.last_message_id
		ORDER BY c.updated_at DESC, c.id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var summaries []*ConversationSummary
	for rows.Next() {
		var cs ConversationSummary
		var directKey, lastMessageID sql.NullString
		var createdAtStr, updatedAtStr string
		var msgContent, msgSenderID, msgAttachment, msgCreatedAtStr sql.NullString

		err := rows.Scan(
			&cs.ID,
			&cs.Type,
			&cs.Name,
			&cs.Avatar,
			&cs.CreatedBy,
			&directKey,
			&lastMessageID,
			&createdAtStr,
			&updatedAtStr,
			&msgContent,
			&msgSenderID,
			&msgAttachment,
			&msgCreatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}

		cs.DirectKey = directKey.String
		cs.LastMessageID = lastMessageID.String

		cs.CreatedAt, err = parseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		cs.UpdatedAt, err = parseTime(updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		if msgSenderID.Valid {
			createdAt, err := parseTime(msgCreatedAtStr.String)
			if err != nil {
				return nil, fmt.Errorf("parsing message created_at: %w", err)
			}
			cs.LastMessage = &MessageSummary{
				Content:    msgContent.String,
				SenderID:   msgSenderID.String,
				Attachment: msgAttachment.String,
				CreatedAt:  createdAt,
			}
		}

		summaries = append(summaries, &cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}

	for _, cs := range summaries {
		cs.Participants, err = s.loadParticipants(ctx, cs.ID)
		if err != nil {
			return nil, err
		}
	}

	return summaries, nil
}

// ConversationIDsForUser returns the IDs of every conversation the user
// participates in. Used to populate a session's rooms on connect.
func (s *SQLiteStore) ConversationIDsForUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT conversation_id
		FROM conversation_participants
		WHERE user_id = ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying conversation ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning conversation id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation ids: %w", err)
	}

	return ids, nil
}

// SetLastMessage points the conversation's lastMessage at the given message
// and bumps updated_at so listings sort the conversation first.
// Returns ErrNotFound if the conversation doesn't exist.
func (s *SQLiteStore) SetLastMessage(ctx context.Context, conversationID, messageID string, at time.Time) error {
	query := `
		UPDATE conversations
		SET last_message_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		messageID,
		formatTime(at),
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("updating last message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
