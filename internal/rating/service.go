// Package rating is the reputation aggregator: it appends entries to a
// user's feedback ledger and recomputes the displayed rating. This ledger is
// keyed per (target, rater) pair and is separate from the
// per-request feedback sub-record in internal/swap.
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/keshavpotewar/SkillSwap/internal/identity"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
)

// Service recomputes a user's displayed rating from their accumulated
// feedback. The recompute is deterministic and idempotent for a fixed
// ledger: mean of all ratings, rounded half-up to one decimal.
type Service struct {
	users  identity.Store
	logger *slog.Logger
}

func NewService(users identity.Store, logger *slog.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// Result reports the ledger write back to the boundary.
type Result struct {
	UserID   string                   `json:"userId"`
	Rating   float64                  `json:"rating"`
	Feedback []identity.FeedbackEntry `json:"feedback"`
}

// AddFeedback appends one ledger entry from rater to target and recomputes
// the target's rating. A rater gets at most one entry per target; the
// duplicate check is a keyed lookup in the store, never a scan.
func (s *Service) AddFeedback(ctx context.Context, targetID, raterID string, rating int, message string) (*Result, error) {
	if targetID == raterID {
		return nil, domerr.New(domerr.CodeInvalidOperation, "cannot give feedback to yourself")
	}

	entry := identity.FeedbackEntry{
		RaterID:   raterID,
		Rating:    rating,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	newRating, err := s.users.AppendFeedback(ctx, targetID, entry)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, domerr.New(domerr.CodeNotFound, "user not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, domerr.New(domerr.CodeConflict, "you have already given feedback to this user")
		}
		return nil, fmt.Errorf("append feedback: %w", err)
	}

	s.logger.InfoContext(ctx, "user feedback added",
		"target_id", targetID,
		"rater_id", raterID,
		"new_rating", newRating,
	)

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("reload target: %w", err)
	}
	return &Result{
		UserID:   target.ID,
		Rating:   target.Rating,
		Feedback: target.Feedback,
	}, nil
}
