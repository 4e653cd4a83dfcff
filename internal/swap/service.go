package swap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keshavpotewar/SkillSwap/internal/identity"
	"github.com/keshavpotewar/SkillSwap/internal/notify"
	"github.com/keshavpotewar/SkillSwap/internal/platform/metrics"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
)

// UserDirectory is the slice of the identity boundary this service reads.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*identity.User, error)
	Summaries(ctx context.Context, ids []string) (map[string]identity.Summary, error)
}

// Service drives the request lifecycle. Permission checks live here; the
// atomic state transitions live in the store so concurrent accept/reject
// calls cannot both succeed.
type Service struct {
	store      Store
	users      UserDirectory
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewService(store Store, users UserDirectory, dispatcher notify.Dispatcher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, users: users, dispatcher: dispatcher, logger: logger, metrics: m}
}

// CreateParams carries the boundary-validated fields for a new request.
type CreateParams struct {
	RecipientID  string
	SkillOffered string
	SkillWanted  string
	Message      string
}

// requestEvent is the payload for the lifecycle events that carry the full
// record.
type requestEvent struct {
	Request *Request `json:"swapRequest"`
	Message string   `json:"message"`
}

// deletedEvent carries only the id: the record no longer exists.
type deletedEvent struct {
	RequestID string `json:"swapRequestId"`
	Message   string `json:"message"`
}

// Create opens a new Pending request from sender to the recipient and
// notifies the recipient. The recipient must exist and not be banned. The
// public flag is not checked here; only direct messages require a public
// profile.
func (s *Service) Create(ctx context.Context, senderID string, p CreateParams) (*Request, error) {
	recipient, err := s.users.GetByID(ctx, p.RecipientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerr.New(domerr.CodeNotFound, "target user not found")
		}
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}
	if recipient.IsBanned {
		return nil, domerr.New(domerr.CodeForbidden, "cannot send request to banned user")
	}
	if senderID == p.RecipientID {
		return nil, domerr.New(domerr.CodeInvalidOperation, "cannot send request to yourself")
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("lookup sender: %w", err)
	}

	req := &Request{
		ID:           uuid.NewString(),
		SenderID:     senderID,
		RecipientID:  p.RecipientID,
		SkillOffered: p.SkillOffered,
		SkillWanted:  p.SkillWanted,
		Message:      p.Message,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, req); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, domerr.New(domerr.CodeConflict, "a pending request already exists with this user")
		}
		return nil, fmt.Errorf("create swap request: %w", err)
	}

	s.metrics.SwapRequestsCreated.Inc()
	s.logger.InfoContext(ctx, "swap request created",
		"request_id", req.ID,
		"sender_id", senderID,
		"recipient_id", p.RecipientID,
	)
	s.dispatcher.Publish(ctx, req.RecipientID, notify.EventNewSwapRequest, requestEvent{
		Request: req,
		Message: fmt.Sprintf("New swap request from %s", sender.Name),
	})
	return req, nil
}

// Accept transitions the request Pending→Accepted. Only the recipient may
// accept, and the transition is a compare-and-set: when accept and reject
// race, exactly one succeeds and the other observes a conflict.
func (s *Service) Accept(ctx context.Context, requestID, actorID string) (*Request, error) {
	return s.resolve(ctx, requestID, actorID, StatusAccepted)
}

// Reject transitions the request Pending→Rejected, symmetric to Accept.
func (s *Service) Reject(ctx context.Context, requestID, actorID string) (*Request, error) {
	return s.resolve(ctx, requestID, actorID, StatusRejected)
}

func (s *Service) resolve(ctx context.Context, requestID, actorID string, to Status) (*Request, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RecipientID != actorID {
		return nil, domerr.Newf(domerr.CodeForbidden, "you can only %s requests sent to you", verbFor(to))
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("lookup actor: %w", err)
	}

	updated, err := s.store.UpdateStatus(ctx, requestID, StatusPending, to)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, domerr.New(domerr.CodeConflict, "request has already been processed")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, domerr.New(domerr.CodeNotFound, "swap request not found")
		}
		return nil, fmt.Errorf("update swap request: %w", err)
	}

	event := notify.EventSwapRequestAccepted
	outcome := "accepted"
	if to == StatusRejected {
		event = notify.EventSwapRequestRejected
		outcome = "rejected"
	}
	s.metrics.SwapRequestsResolved.WithLabelValues(outcome).Inc()
	s.logger.InfoContext(ctx, "swap request resolved",
		"request_id", requestID,
		"outcome", outcome,
		"actor_id", actorID,
	)
	s.dispatcher.Publish(ctx, updated.SenderID, event, requestEvent{
		Request: updated,
		Message: fmt.Sprintf("%s %s your swap request", actor.Name, outcome),
	})
	return updated, nil
}

// Delete withdraws a Pending request. Only the sender may withdraw, and only
// while the request is still Pending; deletion is the sole way a record
// disappears.
func (s *Service) Delete(ctx context.Context, requestID, actorID string) error {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.SenderID != actorID {
		return domerr.New(domerr.CodeForbidden, "you can only delete requests you sent")
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("lookup actor: %w", err)
	}

	if err := s.store.DeletePending(ctx, requestID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return domerr.New(domerr.CodeConflict, "cannot delete processed request")
		case errors.Is(err, sentinel.ErrNotFound):
			return domerr.New(domerr.CodeNotFound, "swap request not found")
		}
		return fmt.Errorf("delete swap request: %w", err)
	}

	s.metrics.SwapRequestsResolved.WithLabelValues("deleted").Inc()
	s.logger.InfoContext(ctx, "swap request deleted",
		"request_id", requestID,
		"actor_id", actorID,
	)
	s.dispatcher.Publish(ctx, req.RecipientID, notify.EventSwapRequestDeleted, deletedEvent{
		RequestID: requestID,
		Message:   fmt.Sprintf("%s cancelled their swap request", actor.Name),
	})
	return nil
}

// AddFeedback attaches the one-shot feedback sub-record to an Accepted
// request. Either participant may leave it, exactly once per request. No
// event is published for feedback.
func (s *Service) AddFeedback(ctx context.Context, requestID, actorID string, rating int, message string) (*Request, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Participant(actorID) {
		return nil, domerr.New(domerr.CodeForbidden, "you can only add feedback to your swaps")
	}

	updated, err := s.store.SetFeedback(ctx, requestID, Feedback{
		Rating:    rating,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return nil, domerr.New(domerr.CodeConflict, "feedback already exists for this swap")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, domerr.New(domerr.CodeConflict, "can only add feedback to accepted swaps")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, domerr.New(domerr.CodeNotFound, "swap request not found")
		}
		return nil, fmt.Errorf("set swap feedback: %w", err)
	}
	return updated, nil
}

// Get returns one request; only its participants may see it.
func (s *Service) Get(ctx context.Context, requestID, actorID string) (*Request, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Participant(actorID) {
		return nil, domerr.New(domerr.CodeForbidden, "access denied")
	}
	return req, nil
}

// List returns the actor's requests for the given direction, optionally
// filtered by status, newest first, each joined with the counterpart's
// summary.
func (s *Service) List(ctx context.Context, actorID string, dir Direction, status Status) ([]WithCounterpart, error) {
	if status != "" && !status.Valid() {
		return nil, domerr.Newf(domerr.CodeValidation, "unknown status filter %q", status)
	}
	requests, err := s.store.ListByUser(ctx, actorID, dir, status)
	if err != nil {
		return nil, fmt.Errorf("list swap requests: %w", err)
	}

	ids := make([]string, 0, len(requests))
	seen := make(map[string]struct{}, len(requests))
	for i := range requests {
		id := requests[i].CounterpartID(actorID)
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("join counterparts: %w", err)
	}

	out := make([]WithCounterpart, 0, len(requests))
	for i := range requests {
		out = append(out, WithCounterpart{
			Request:     requests[i],
			Counterpart: summaries[requests[i].CounterpartID(actorID)],
		})
	}
	return out, nil
}

func (s *Service) getRequest(ctx context.Context, requestID string) (*Request, error) {
	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerr.New(domerr.CodeNotFound, "swap request not found")
		}
		return nil, fmt.Errorf("get swap request: %w", err)
	}
	return req, nil
}

func verbFor(to Status) string {
	if to == StatusRejected {
		return "reject"
	}
	return "accept"
}
