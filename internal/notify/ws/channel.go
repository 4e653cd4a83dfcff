// Package ws implements notify.Channel over a gorilla websocket connection.
package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/keshavpotewar/SkillSwap/internal/notify"
)

// ErrChannelClosed is returned by Send once the channel is shut down.
var ErrChannelClosed = errors.New("ws: channel closed")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	// outboxSize bounds how far a slow consumer may fall behind before the
	// connection is dropped. Delivery is best effort, so dropping beats
	// blocking the publisher.
	outboxSize = 32
)

var _ notify.Channel = (*Channel)(nil)

// Channel owns one websocket connection. A single write pump goroutine
// drains the outbox so envelope order is preserved per channel and Send
// never blocks the dispatcher.
type Channel struct {
	conn   *websocket.Conn
	outbox chan notify.Envelope
	done   chan struct{}
	once   sync.Once
}

func newChannel(conn *websocket.Conn) *Channel {
	return &Channel{
		conn:   conn,
		outbox: make(chan notify.Envelope, outboxSize),
		done:   make(chan struct{}),
	}
}

// Send queues the envelope for delivery. A full outbox closes the channel:
// the client is too far behind to be worth stalling everyone else for.
func (c *Channel) Send(env notify.Envelope) error {
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}
	select {
	case c.outbox <- env:
		return nil
	case <-c.done:
		return ErrChannelClosed
	default:
		c.close()
		return ErrChannelClosed
	}
}

func (c *Channel) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writePump serializes all writes to the connection: queued envelopes and
// keepalive pings. It exits when the channel closes or a write fails.
func (c *Channel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case env := <-c.outbox:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump consumes the connection until the peer goes away. Clients only
// receive on this socket; anything they send is discarded. The read loop
// exists to notice disconnects and keep pong handling alive.
func (c *Channel) readPump() {
	defer c.close()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
