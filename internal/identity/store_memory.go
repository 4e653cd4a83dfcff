package identity

import (
	"context"
	"sync"

	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps users in a mutex-guarded map. It backs tests and the
// standalone (no Postgres) configuration.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User
	// raters indexes ledger entries by (target, rater) so the duplicate
	// check is a keyed lookup, not a scan of the ledger.
	raters map[string]map[string]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:  make(map[string]*User),
		raters: make(map[string]map[string]struct{}),
	}
}

// Seed inserts or replaces a user. Registration is owned by the excluded
// auth subsystem, so the memory store only offers seeding.
func (s *InMemoryStore) Seed(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.users[u.ID] = &u
	s.raters[u.ID] = make(map[string]struct{}, len(u.Feedback))
	for _, entry := range u.Feedback {
		s.raters[u.ID][entry.RaterID] = struct{}{}
	}
}

func (s *InMemoryStore) GetByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copy := *u
	copy.Feedback = append([]FeedbackEntry(nil), u.Feedback...)
	return &copy, nil
}

func (s *InMemoryStore) Summaries(_ context.Context, ids []string) (map[string]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Summary, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (s *InMemoryStore) AppendFeedback(_ context.Context, userID string, entry FeedbackEntry) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if _, dup := s.raters[userID][entry.RaterID]; dup {
		return 0, sentinel.ErrConflict
	}
	if s.raters[userID] == nil {
		s.raters[userID] = make(map[string]struct{})
	}
	s.raters[userID][entry.RaterID] = struct{}{}
	u.Feedback = append(u.Feedback, entry)
	u.Rating = AverageRating(u.Feedback)
	return u.Rating, nil
}
