package swap

import (
	"context"
	"sort"
	"sync"

	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps swap requests in a mutex-guarded map. Holding the lock
// across check-and-write makes every transition a compare-and-set, so racing
// accept/reject calls serialize and exactly one wins.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*Request
	// pending indexes live Pending requests by (sender, recipient) ordered
	// pair to enforce the single-pending-pair rule.
	pending map[pairKey]string
}

type pairKey struct {
	sender    string
	recipient string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		requests: make(map[string]*Request),
		pending:  make(map[pairKey]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{sender: req.SenderID, recipient: req.RecipientID}
	if _, exists := s.pending[key]; exists {
		return sentinel.ErrConflict
	}
	stored := *req
	s.requests[stored.ID] = &stored
	s.pending[key] = stored.ID
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id string) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id string, from, to Status) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if req.Status != from {
		return nil, sentinel.ErrInvalidState
	}
	req.Status = to
	if from == StatusPending {
		delete(s.pending, pairKey{sender: req.SenderID, recipient: req.RecipientID})
	}
	return cloneRequest(req), nil
}

func (s *InMemoryStore) DeletePending(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if req.Status != StatusPending {
		return sentinel.ErrInvalidState
	}
	delete(s.requests, id)
	delete(s.pending, pairKey{sender: req.SenderID, recipient: req.RecipientID})
	return nil
}

func (s *InMemoryStore) SetFeedback(_ context.Context, id string, fb Feedback) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if req.Status != StatusAccepted {
		return nil, sentinel.ErrInvalidState
	}
	if req.Feedback != nil {
		return nil, sentinel.ErrConflict
	}
	stored := fb
	req.Feedback = &stored
	return cloneRequest(req), nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string, dir Direction, status Status) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Request
	for _, req := range s.requests {
		switch dir {
		case DirectionIncoming:
			if req.RecipientID != userID {
				continue
			}
		case DirectionOutgoing:
			if req.SenderID != userID {
				continue
			}
		default:
			if !req.Participant(userID) {
				continue
			}
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneRequest(req *Request) *Request {
	clone := *req
	if req.Feedback != nil {
		fb := *req.Feedback
		clone.Feedback = &fb
	}
	return &clone
}
