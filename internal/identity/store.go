package identity

import "context"

// Store is the persistence boundary for users. GetByID and Summaries are
// read-only; AppendFeedback is the single write the core performs, appending
// a ledger entry and recomputing the displayed rating as one atomic
// operation.
//
// Sentinel contract: sentinel.ErrNotFound for an unknown user,
// sentinel.ErrConflict when the rater already has an entry in the target's
// ledger.
type Store interface {
	GetByID(ctx context.Context, id string) (*User, error)
	Summaries(ctx context.Context, ids []string) (map[string]Summary, error)
	AppendFeedback(ctx context.Context, userID string, entry FeedbackEntry) (newRating float64, err error)
}
