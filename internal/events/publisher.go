// Package events publishes committed carts to Pub/Sub as cart.updated events.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/rocketshoes-cart/internal/cart"
	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
)

const (
	defaultPublishTimeout = 15 * time.Second
	subscriptionBuffer    = 8
)

// Source is the cart store seen from the publisher.
type Source interface {
	Subscribe(buffer int) (<-chan []cart.LineItem, func())
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type Params struct {
	Source         Source
	Publisher      *gcppubsub.Publisher
	Logger         *logger.Logger
	StorageKey     string
	PublishTimeout time.Duration

	publisher publisher
	now       func() time.Time
	newID     func() string
}

// Publisher forwards store snapshots to a topic. Failed publishes are logged
// and skipped; the next commit carries the full cart again.
type Publisher struct {
	source  Source
	pub     publisher
	logg    *logger.Logger
	key     string
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

func NewPublisher(p Params) (*Publisher, error) {
	if p.Source == nil {
		return nil, errors.New("cart source is required")
	}
	pub := p.publisher
	if pub == nil && p.Publisher != nil {
		pub = &gcpPublisher{Publisher: p.Publisher}
	}
	if pub == nil {
		return nil, errors.New("pubsub publisher is required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	timeout := p.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	now := p.now
	if now == nil {
		now = time.Now
	}
	newID := p.newID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}

	return &Publisher{
		source:  p.Source,
		pub:     pub,
		logg:    p.Logger,
		key:     p.StorageKey,
		timeout: timeout,
		now:     now,
		newID:   newID,
	}, nil
}

// Run publishes until ctx is done or the subscription closes.
func (p *Publisher) Run(ctx context.Context) error {
	snapshots, cancel := p.source.Subscribe(subscriptionBuffer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			p.logg.Info(ctx, "cart events publisher stopped")
			return ctx.Err()
		case items, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err := p.publish(ctx, items); err != nil {
				p.logg.Error(p.logg.WithField(ctx, "event_type", EventTypeCartUpdated), "cart event publish failed", err)
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, items []cart.LineItem) error {
	msg, err := p.message(items)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	serverID, err := result.Get(publishCtx)
	if err != nil {
		return err
	}

	p.logg.Debug(p.logg.WithFields(ctx, map[string]any{
		"event_id":   msg.Attributes["event_id"],
		"message_id": serverID,
	}), "cart event published")
	return nil
}

func (p *Publisher) message(items []cart.LineItem) (*gcppubsub.Message, error) {
	if items == nil {
		items = []cart.LineItem{}
	}
	data, err := json.Marshal(CartUpdated{StorageKey: p.key, Items: items, ItemCount: len(items)})
	if err != nil {
		return nil, fmt.Errorf("encode cart event data: %w", err)
	}

	env := Envelope{
		Version:    EnvelopeVersion,
		EventID:    p.newID(),
		EventType:  EventTypeCartUpdated,
		OccurredAt: p.now().UTC(),
		Data:       data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode cart event: %w", err)
	}

	return &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_id":    env.EventID,
			"event_type":  env.EventType,
			"storage_key": p.key,
			"occurred_at": env.OccurredAt.Format(time.RFC3339Nano),
		},
	}, nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, msg)
}
