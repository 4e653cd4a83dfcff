package swap

import "context"

// Store is the persistence boundary for swap requests.
//
// Sentinel contract:
//   - Create: sentinel.ErrConflict when a Pending request already exists for
//     the same (sender, recipient) ordered pair.
//   - UpdateStatus / DeletePending / SetFeedback: sentinel.ErrNotFound for an
//     unknown id, sentinel.ErrInvalidState when the record is not in the
//     required state. SetFeedback returns sentinel.ErrConflict when feedback
//     is already set.
//
// UpdateStatus and DeletePending must be atomic check-and-act operations:
// when accept and reject race, exactly one caller wins and the loser
// observes ErrInvalidState.
type Store interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Request, error)
	DeletePending(ctx context.Context, id string) error
	SetFeedback(ctx context.Context, id string, fb Feedback) (*Request, error)
	ListByUser(ctx context.Context, userID string, dir Direction, status Status) ([]Request, error)
}
