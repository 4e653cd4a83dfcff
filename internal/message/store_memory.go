package message

import (
	"context"
	"sort"
	"sync"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps messages in an append-only slice behind a mutex. Query
// volume in tests and standalone mode doesn't justify an index.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []*Message
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *msg
	s.messages = append(s.messages, &stored)
	return nil
}

func (s *InMemoryStore) Between(_ context.Context, userA, userB string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, m := range s.messages {
		if (m.SenderID == userA && m.RecipientID == userB) ||
			(m.SenderID == userB && m.RecipientID == userA) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) LastPerCounterpart(_ context.Context, userID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Single pass keeping the max-timestamp message per counterpart.
	last := make(map[string]*Message)
	for _, m := range s.messages {
		if m.SenderID != userID && m.RecipientID != userID {
			continue
		}
		counterpart := m.CounterpartID(userID)
		if cur, ok := last[counterpart]; !ok || m.CreatedAt.After(cur.CreatedAt) {
			last[counterpart] = m
		}
	}
	out := make([]Message, 0, len(last))
	for _, m := range last {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, owner, counterpart string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.messages {
		if m.SenderID == counterpart && m.RecipientID == owner && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) UnreadCount(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, m := range s.messages {
		if m.RecipientID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}
