package notify

import "sync"

// Registry maps a user id to the set of channels it currently owns. It is
// ephemeral, process-local state: nothing here survives a restart, and a
// user with several tabs or devices owns several channels at once.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[Channel]struct{}
	owners   map[Channel]string
}

func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]map[Channel]struct{}),
		owners:   make(map[Channel]string),
	}
}

// Register adds ch to userID's set.
func (r *Registry) Register(userID string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.channels[userID]
	if !ok {
		set = make(map[Channel]struct{})
		r.channels[userID] = set
	}
	set[ch] = struct{}{}
	r.owners[ch] = userID
}

// Unregister removes ch from whichever user set holds it. No-op if the
// channel was never registered or is already gone.
func (r *Registry) Unregister(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.owners[ch]
	if !ok {
		return
	}
	delete(r.owners, ch)
	set := r.channels[userID]
	delete(set, ch)
	if len(set) == 0 {
		delete(r.channels, userID)
	}
}

// Channels returns a snapshot of userID's live channels.
func (r *Registry) Channels(userID string) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.channels[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Channel, 0, len(set))
	for ch := range set {
		out = append(out, ch)
	}
	return out
}

// All returns a snapshot of every live channel, for broadcasts.
func (r *Registry) All() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Channel, 0, len(r.owners))
	for ch := range r.owners {
		out = append(out, ch)
	}
	return out
}

// Len reports the number of live channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}
