// Package notify owns the connection registry and the event dispatcher. It
// fans named events out to the live channels of a target user; delivery is
// best effort and an offline recipient is never an error.
package notify

// Event names pushed to connected clients. Names and payload shapes are part
// of the client contract, so they stay exactly as the web client expects.
const (
	EventNewSwapRequest      = "newSwapRequest"
	EventSwapRequestAccepted = "swapRequestAccepted"
	EventSwapRequestRejected = "swapRequestRejected"
	EventSwapRequestDeleted  = "swapRequestDeleted"
	EventNewMessage          = "newMessage"
	EventPlatformMessage     = "platformMessage"
)

// Envelope is the wire frame a channel delivers: the event name plus its
// payload, serialized as one JSON object.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Channel is one live client connection. Send must not block the publisher:
// implementations queue into a per-connection outbox so slow consumers
// cannot stall fan-out. Send after close returns an error, which the
// dispatcher treats as a drop.
type Channel interface {
	Send(env Envelope) error
}
