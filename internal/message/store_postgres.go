package message

import (
	"context"
	"database/sql"
	"fmt"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore persists direct messages in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, msg *Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, msg.SenderID, msg.RecipientID, msg.Body, msg.Read, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (s *PostgresStore) Between(ctx context.Context, userA, userB string, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, body, read, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC
		LIMIT $3
	`, userA, userB, limit)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return collectMessages(rows)
}

func (s *PostgresStore) LastPerCounterpart(ctx context.Context, userID string) ([]Message, error) {
	// DISTINCT ON keeps the newest row per counterpart; the outer sort
	// orders conversations by that newest message.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, body, read, created_at FROM (
			SELECT DISTINCT ON (counterpart) *
			FROM (
				SELECT *,
					CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS counterpart
				FROM messages
				WHERE sender_id = $1 OR recipient_id = $1
			) touching
			ORDER BY counterpart, created_at DESC
		) latest
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get recent conversations: %w", err)
	}
	return collectMessages(rows)
}

func (s *PostgresStore) MarkRead(ctx context.Context, owner, counterpart string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages
		SET read = TRUE
		WHERE sender_id = $1 AND recipient_id = $2 AND read = FALSE
	`, counterpart, owner)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return affected, nil
}

func (s *PostgresStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

func collectMessages(rows *sql.Rows) ([]Message, error) {
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}
