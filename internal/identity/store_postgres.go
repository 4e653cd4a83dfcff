package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore reads users from PostgreSQL. It is pure I/O; the rating
// arithmetic the ledger needs is pushed into SQL so append-and-recompute is
// one transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, name, location, photo, rating, is_public, is_banned, created_at
		FROM users
		WHERE id = $1
	`
	var u User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Location, &u.Photo, &u.Rating,
		&u.IsPublic, &u.IsBanned, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rater_id, rating, message, created_at
		FROM user_feedback
		WHERE user_id = $1
		ORDER BY created_at
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get user feedback: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entry FeedbackEntry
		if err := rows.Scan(&entry.RaterID, &entry.Rating, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback entry: %w", err)
		}
		u.Feedback = append(u.Feedback, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) Summaries(ctx context.Context, ids []string) (map[string]Summary, error) {
	if len(ids) == 0 {
		return map[string]Summary{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, location, photo, rating
		FROM users
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get summaries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Summary, len(ids))
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Location, &sum.Photo, &sum.Rating); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out[sum.ID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}

// AppendFeedback inserts the ledger entry and recomputes the displayed
// rating inside one transaction. The (user_id, rater_id) primary key turns a
// duplicate rater into a unique violation.
func (s *PostgresStore) AppendFeedback(ctx context.Context, userID string, entry FeedbackEntry) (float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append feedback: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_feedback (user_id, rater_id, rating, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, entry.RaterID, entry.Rating, entry.Message, entry.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return 0, sentinel.ErrConflict
			case "foreign_key_violation":
				return 0, sentinel.ErrNotFound
			}
		}
		return 0, fmt.Errorf("insert feedback: %w", err)
	}

	var rating float64
	err = tx.QueryRowContext(ctx, `
		UPDATE users
		SET rating = (
			SELECT ROUND(AVG(rating)::numeric, 1)
			FROM user_feedback
			WHERE user_id = $1
		)
		WHERE id = $1
		RETURNING rating
	`, userID).Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("recompute rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append feedback: %w", err)
	}
	return rating, nil
}
