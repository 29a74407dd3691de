package catmux

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/catmux-radio/catmux/internal/pubsub"
)

// eventBusTopic is the single channel every MuxEvent is published on. The
// mux actor is the only publisher; observers (websocket clients, the
// traffic monitor) are subscribers.
const eventBusTopic = "catmux.events"

// EventBus fans MuxEvents out to subscribers. Delivery is best-effort per
// subscriber: a subscriber that falls behind may observe gaps but never
// reordering within a single source, since every subscriber channel is fed
// from the same ordered publish loop.
type EventBus struct {
	ps pubsub.PubSub
}

// EventSubscription is a single observer's view of the event bus.
type EventSubscription struct {
	sub pubsub.Subscription
	ch  chan MuxEvent
}

// NewEventBus constructs an EventBus backed by an in-process pubsub.
func NewEventBus() *EventBus {
	return &EventBus{ps: pubsub.New()}
}

// NewRedisEventBus constructs an EventBus backed by Redis pub/sub, for
// deployments where the Observer API runs as a separate process from the
// mux actor.
func NewRedisEventBus(ctx context.Context, opts pubsub.RedisOptions) (*EventBus, error) {
	ps, err := pubsub.NewRedis(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &EventBus{ps: ps}, nil
}

// Publish marshals event to JSON and fans it out to every subscriber.
func (b *EventBus) Publish(event MuxEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("catmux: failed to marshal event: %w", err)
	}
	if err := b.ps.Publish(eventBusTopic, payload); err != nil {
		return fmt.Errorf("catmux: failed to publish event: %w", err)
	}
	return nil
}

// Subscribe returns a new subscription to the event stream.
func (b *EventBus) Subscribe() *EventSubscription {
	sub := b.ps.Subscribe(eventBusTopic)
	ch := make(chan MuxEvent, eventBusSubscriberBuffer)
	go func() {
		defer close(ch)
		for payload := range sub.Channel() {
			var event MuxEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				continue
			}
			ch <- event
		}
	}()
	return &EventSubscription{sub: sub, ch: ch}
}

// Close shuts the bus down, closing every live subscription.
func (b *EventBus) Close() error {
	return b.ps.Close()
}

const eventBusSubscriberBuffer = 64

// Events returns the channel of events delivered to this subscription.
func (s *EventSubscription) Events() <-chan MuxEvent { return s.ch }

// Close ends the subscription.
func (s *EventSubscription) Close() {
	_ = s.sub.Close()
}
