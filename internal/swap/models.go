// Package swap owns the swap-request lifecycle: a Pending request either
// resolves to Accepted/Rejected by its recipient or is withdrawn by its
// sender. Transitions are one-way and contested transitions are settled by
// an atomic compare-and-set in the store.
package swap

import (
	"time"

	"github.com/keshavpotewar/SkillSwap/internal/identity"
)

// Status is the lifecycle state of a swap request. Deletion is the fourth,
// terminal outcome: the record is removed rather than marked.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

// Valid reports whether s is a known status. Used to screen the status query
// filter at the boundary.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Feedback is the optional per-request feedback sub-record. Once set it is
// immutable, and it may only exist on an Accepted request. Separate from
// the per-user reputation ledger in internal/rating; their duplicate keys
// differ.
type Feedback struct {
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Request is one proposed skill exchange.
type Request struct {
	ID           string    `json:"id"`
	SenderID     string    `json:"from"`
	RecipientID  string    `json:"to"`
	SkillOffered string    `json:"skillOffered"`
	SkillWanted  string    `json:"skillWanted"`
	Message      string    `json:"message"`
	Status       Status    `json:"status"`
	Feedback     *Feedback `json:"feedback,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Participant reports whether userID is the sender or recipient.
func (r *Request) Participant(userID string) bool {
	return r.SenderID == userID || r.RecipientID == userID
}

// CounterpartID returns the other participant relative to userID.
func (r *Request) CounterpartID(userID string) string {
	if r.SenderID == userID {
		return r.RecipientID
	}
	return r.SenderID
}

// Direction selects which side of a request the lister is on.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionAll      Direction = "all"
)

// WithCounterpart joins a request with the minimal summary of the other
// participant for list views.
type WithCounterpart struct {
	Request
	Counterpart identity.Summary `json:"counterpart"`
}
