// Package notify delivers user-facing toasts raised by cart operations.
package notify

import (
	"context"
	"sync"

	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
)

const LevelError = "error"

// Notification is one toast as handed back to the UI.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notifier is fire-and-forget; callers never inspect a result.
type Notifier interface {
	NotifyError(ctx context.Context, message string)
}

// Dispatcher logs every toast and forwards it to the Collector attached to
// the context, if any.
type Dispatcher struct {
	logg *logger.Logger
}

func NewDispatcher(logg *logger.Logger) *Dispatcher {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Dispatcher{logg: logg}
}

func (d *Dispatcher) NotifyError(ctx context.Context, message string) {
	if ctx == nil {
		ctx = context.Background()
	}
	d.logg.Warn(d.logg.WithFields(ctx, map[string]any{
		"toast_level":   LevelError,
		"toast_message": message,
	}), "cart.notification")

	if c := CollectorFrom(ctx); c != nil {
		c.add(Notification{Level: LevelError, Message: message})
	}
}

// Collector gathers the toasts raised while serving one request.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

type collectorKey struct{}

// WithCollector attaches a fresh Collector to ctx.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func CollectorFrom(ctx context.Context) *Collector {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

func (c *Collector) add(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Notifications returns a copy of the collected toasts, never nil.
func (c *Collector) Notifications() []Notification {
	if c == nil {
		return []Notification{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}
