package swap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore persists swap requests in PostgreSQL. Lifecycle transitions
// are single conditional statements so the status check and the write happen
// as one operation; the partial unique index on (sender, recipient) WHERE
// status = 'Pending' enforces the single-pending-pair rule under concurrent
// creates.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `
	id, sender_id, recipient_id, skill_offered, skill_wanted, message,
	status, feedback_rating, feedback_message, feedback_created_at, created_at
`

func (s *PostgresStore) Create(ctx context.Context, req *Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO swap_requests
			(id, sender_id, recipient_id, skill_offered, skill_wanted, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, req.ID, req.SenderID, req.RecipientID, req.SkillOffered, req.SkillWanted,
		req.Message, req.Status, req.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create swap request: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM swap_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get swap request: %w", err)
	}
	return req, nil
}

// UpdateStatus is the compare-and-set: the WHERE clause pins the expected
// current status, so a concurrent transition makes this update match zero
// rows and the loser gets ErrInvalidState.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, from, to Status) (*Request, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE swap_requests
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING `+requestColumns,
		id, from, to)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.missingOrInvalid(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update swap request status: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) DeletePending(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM swap_requests WHERE id = $1 AND status = $2`, id, StatusPending)
	if err != nil {
		return fmt.Errorf("delete swap request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete swap request: %w", err)
	}
	if affected == 0 {
		return s.missingOrInvalid(ctx, id)
	}
	return nil
}

func (s *PostgresStore) SetFeedback(ctx context.Context, id string, fb Feedback) (*Request, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE swap_requests
		SET feedback_rating = $2, feedback_message = $3, feedback_created_at = $4
		WHERE id = $1 AND status = $5 AND feedback_rating IS NULL
		RETURNING `+requestColumns,
		id, fb.Rating, fb.Message, fb.CreatedAt, StatusAccepted)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.feedbackFailure(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("set swap feedback: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, dir Direction, status Status) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM swap_requests WHERE `
	args := []any{userID}
	switch dir {
	case DirectionIncoming:
		query += `recipient_id = $1`
	case DirectionOutgoing:
		query += `sender_id = $1`
	default:
		query += `(sender_id = $1 OR recipient_id = $1)`
	}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list swap requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap requests: %w", err)
	}
	return out, nil
}

// missingOrInvalid distinguishes an unknown id from a lost transition race
// after a conditional statement matched nothing.
func (s *PostgresStore) missingOrInvalid(ctx context.Context, id string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM swap_requests WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check swap request: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// feedbackFailure classifies why the conditional feedback update matched
// nothing: unknown id, wrong status, or feedback already present.
func (s *PostgresStore) feedbackFailure(ctx context.Context, id string) error {
	var status Status
	var hasFeedback bool
	err := s.db.QueryRowContext(ctx, `
		SELECT status, feedback_rating IS NOT NULL
		FROM swap_requests
		WHERE id = $1
	`, id).Scan(&status, &hasFeedback)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check swap feedback: %w", err)
	}
	if hasFeedback {
		return sentinel.ErrConflict
	}
	return sentinel.ErrInvalidState
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var req Request
	var fbRating sql.NullInt64
	var fbMessage sql.NullString
	var fbCreatedAt sql.NullTime
	err := row.Scan(
		&req.ID, &req.SenderID, &req.RecipientID,
		&req.SkillOffered, &req.SkillWanted, &req.Message,
		&req.Status, &fbRating, &fbMessage, &fbCreatedAt, &req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fbRating.Valid {
		req.Feedback = &Feedback{
			Rating:    int(fbRating.Int64),
			Message:   fbMessage.String,
			CreatedAt: fbCreatedAt.Time,
		}
	}
	return &req, nil
}
