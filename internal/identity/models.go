// Package identity is the read-only boundary to the user subsystem. The
// exchange core reads identity, banned, and public flags from here; the only
// writes it performs are the reputation fields owned by the rating
// aggregator.
package identity

import (
	"math"
	"time"
)

// User carries the identity fields the core reads plus the reputation fields
// it maintains. Credentials and profile editing live outside this service.
type User struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Photo     string          `json:"profilePhoto"`
	Rating    float64         `json:"rating"`
	Feedback  []FeedbackEntry `json:"feedback"`
	IsPublic  bool            `json:"isPublic"`
	IsBanned  bool            `json:"isBanned"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FeedbackEntry is one reputation ledger entry. At most one entry per
// distinct rater exists in a user's ledger.
type FeedbackEntry struct {
	RaterID   string    `json:"from"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the minimal counterpart projection joined onto swap requests
// and conversations.
type Summary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Photo    string  `json:"profilePhoto"`
	Rating   float64 `json:"rating"`
}

// Summary projects the user onto its counterpart summary.
func (u *User) Summary() Summary {
	return Summary{
		ID:       u.ID,
		Name:     u.Name,
		Location: u.Location,
		Photo:    u.Photo,
		Rating:   u.Rating,
	}
}

// AverageRating computes the displayed rating from a feedback ledger: the
// mean of all entry ratings rounded half-up to one decimal. An empty ledger
// rates 0.
func AverageRating(entries []FeedbackEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := 0
	for _, e := range entries {
		total += e.Rating
	}
	mean := float64(total) / float64(len(entries))
	return math.Floor(mean*10+0.5) / 10
}
