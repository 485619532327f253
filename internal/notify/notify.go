// Package notify delivers short user-facing messages from actions to the
// page that is rendered next.
package notify

import (
	"context"
	"sync"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func Success(message string) Notification {
	return Notification{Kind: KindSuccess, Message: message}
}

func Error(message string) Notification {
	return Notification{Kind: KindError, Message: message}
}

// Sink receives notifications. Components that emit notifications get one
// passed in explicitly.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification)

func (f SinkFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Discard drops every notification.
var Discard Sink = SinkFunc(func(context.Context, Notification) {})

// Collector buffers notifications in memory.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

func (c *Collector) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

// Drain returns the buffered notifications and empties the buffer.
func (c *Collector) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.items
	c.items = nil
	return items
}
