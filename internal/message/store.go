package message

import "context"

// Store is the persistence boundary for direct messages.
type Store interface {
	Create(ctx context.Context, msg *Message) error
	// Between returns up to limit most recent messages exchanged by the
	// pair, newest first. There is no cursor: a fixed recency window only.
	Between(ctx context.Context, userA, userB string, limit int) ([]Message, error)
	// LastPerCounterpart returns, for every counterpart of userID, the
	// single message with the maximum timestamp, ordered by that timestamp
	// descending.
	LastPerCounterpart(ctx context.Context, userID string) ([]Message, error)
	// MarkRead flips read=false to true on every message from counterpart to
	// owner and reports how many it touched. Idempotent.
	MarkRead(ctx context.Context, owner, counterpart string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}
