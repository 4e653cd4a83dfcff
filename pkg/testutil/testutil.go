// Package testutil holds small helpers shared by the package test suites.
package testutil

import (
	"io"
	"log/slog"
	"sync"

	"github.com/keshavpotewar/SkillSwap/internal/notify"
)

// DiscardLogger returns a logger that drops everything. Suites pass it where
// a service demands one but the test asserts nothing about log output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ notify.Channel = (*CaptureChannel)(nil)

// CaptureChannel is an in-memory notify.Channel that records every envelope
// it receives. Safe for concurrent sends.
type CaptureChannel struct {
	mu   sync.Mutex
	got  []notify.Envelope
	fail error
}

func NewCaptureChannel() *CaptureChannel {
	return &CaptureChannel{}
}

// FailWith makes every subsequent Send return err, simulating a dead
// connection.
func (c *CaptureChannel) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

func (c *CaptureChannel) Send(env notify.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.got = append(c.got, env)
	return nil
}

// Drain returns everything received so far and resets the capture buffer.
func (c *CaptureChannel) Drain() []notify.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.got
	c.got = nil
	return out
}

// Len reports how many envelopes have been received and not drained.
func (c *CaptureChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}
