// Package message persists direct messages, tracks read state, and computes
// the per-counterpart conversation summaries.
package message

import (
	"time"

	"github.com/keshavpotewar/SkillSwap/internal/identity"
)

// Message is one direct message. Immutable once created except for the read
// flag, which only ever transitions false→true. Messages are never deleted
// by this core.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"from"`
	RecipientID string    `json:"to"`
	Body        string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CounterpartID returns the other participant relative to userID.
func (m *Message) CounterpartID(userID string) string {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// Conversation is one entry in the recent-conversations view: the
// counterpart and the latest message exchanged with them.
type Conversation struct {
	Counterpart identity.Summary `json:"counterpart"`
	LastMessage Message          `json:"lastMessage"`
}
