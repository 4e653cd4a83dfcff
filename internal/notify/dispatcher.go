package notify

import (
	"context"
	"log/slog"

	"github.com/keshavpotewar/SkillSwap/internal/platform/metrics"
)

// Dispatcher publishes named events to a user's live channels. Delivery is
// best effort: no queueing, no retry, no persistence. Callers never learn
// whether anyone was listening, so the methods return nothing.
//
// A multi-instance deployment swaps in a broker-backed implementation (see
// redisdispatch) without changing any caller.
type Dispatcher interface {
	Publish(ctx context.Context, userID, event string, payload any)
	Broadcast(ctx context.Context, event string, payload any)
}

var _ Dispatcher = (*LocalDispatcher)(nil)

// LocalDispatcher fans out to the in-process registry.
type LocalDispatcher struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewLocalDispatcher(registry *Registry, logger *slog.Logger, m *metrics.Metrics) *LocalDispatcher {
	return &LocalDispatcher{registry: registry, logger: logger, metrics: m}
}

// Publish delivers the event to every channel userID currently owns. Each
// channel is written independently; emission order is preserved per channel
// because Send queues in call order. An empty channel set drops the event
// silently.
func (d *LocalDispatcher) Publish(ctx context.Context, userID, event string, payload any) {
	channels := d.registry.Channels(userID)
	if len(channels) == 0 {
		d.metrics.EventsDropped.WithLabelValues(event).Inc()
		d.logger.DebugContext(ctx, "event dropped, no live channel",
			"event", event,
			"user_id", userID,
		)
		return
	}
	d.send(ctx, channels, Envelope{Event: event, Payload: payload})
	d.metrics.EventsPublished.WithLabelValues(event).Inc()
}

// Broadcast delivers the event to every connected user.
func (d *LocalDispatcher) Broadcast(ctx context.Context, event string, payload any) {
	channels := d.registry.All()
	if len(channels) == 0 {
		d.metrics.EventsDropped.WithLabelValues(event).Inc()
		return
	}
	d.send(ctx, channels, Envelope{Event: event, Payload: payload})
	d.metrics.EventsPublished.WithLabelValues(event).Inc()
}

func (d *LocalDispatcher) send(ctx context.Context, channels []Channel, env Envelope) {
	for _, ch := range channels {
		if err := ch.Send(env); err != nil {
			// A failed send means the channel is closing; the websocket
			// layer unregisters it. Best effort, so just note it.
			d.logger.DebugContext(ctx, "channel send failed",
				"event", env.Event,
				"error", err,
			)
		}
	}
}
