// Package redisdispatch is the broker-backed notify.Dispatcher for
// multi-instance deployments. Events go through a Redis pub/sub channel so
// the instance holding the recipient's websocket delivers them, whichever
// instance produced them. Semantics stay best effort: Redis pub/sub has no
// persistence, matching the single-process dispatcher.
package redisdispatch

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/keshavpotewar/SkillSwap/internal/notify"
)

const eventChannel = "skillswap:events"

// frame is the wire shape relayed through Redis. An empty UserID marks a
// broadcast.
type frame struct {
	UserID  string          `json:"userId,omitempty"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

var _ notify.Dispatcher = (*Dispatcher)(nil)

// Dispatcher publishes frames to Redis and relays subscribed frames into the
// local dispatcher of this instance.
type Dispatcher struct {
	client *redis.Client
	local  notify.Dispatcher
	logger *slog.Logger
}

func New(client *redis.Client, local notify.Dispatcher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{client: client, local: local, logger: logger}
}

func (d *Dispatcher) Publish(ctx context.Context, userID, event string, payload any) {
	d.publish(ctx, frame{UserID: userID, Event: event}, payload)
}

func (d *Dispatcher) Broadcast(ctx context.Context, event string, payload any) {
	d.publish(ctx, frame{Event: event}, payload)
}

func (d *Dispatcher) publish(ctx context.Context, f frame, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		d.logger.ErrorContext(ctx, "marshal event payload", "event", f.Event, "error", err)
		return
	}
	f.Payload = raw
	data, err := json.Marshal(f)
	if err != nil {
		d.logger.ErrorContext(ctx, "marshal event frame", "event", f.Event, "error", err)
		return
	}
	// Best effort end to end: a publish failure is logged, never surfaced.
	if err := d.client.Publish(ctx, eventChannel, data).Err(); err != nil {
		d.logger.WarnContext(ctx, "redis publish failed", "event", f.Event, "error", err)
	}
}

// Run subscribes to the event channel and relays frames into the local
// dispatcher until ctx is cancelled. Start it once per instance.
func (d *Dispatcher) Run(ctx context.Context) error {
	sub := d.client.Subscribe(ctx, eventChannel)
	defer func() { _ = sub.Close() }()

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var f frame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				d.logger.Warn("drop malformed event frame", "error", err)
				continue
			}
			if f.UserID == "" {
				d.local.Broadcast(ctx, f.Event, f.Payload)
				continue
			}
			d.local.Publish(ctx, f.UserID, f.Event, f.Payload)
		}
	}
}
