// Package pubsub provides a small topic-based publish/subscribe
// abstraction used to fan the mux actor's event stream out to observers,
// either in-process or across processes via Redis.
package pubsub

import "context"

// PubSub publishes byte payloads to named topics and lets callers
// subscribe to receive them.
type PubSub interface {
	Publish(topic string, message []byte) error
	Subscribe(topic string) Subscription
	Close() error
}

// Subscription is a single subscriber's view of a topic.
type Subscription interface {
	Close() error
	Channel() <-chan []byte
}

// RedisOptions configures a Redis-backed PubSub.
type RedisOptions struct {
	Addr     string
	Password string
}

// New constructs an in-process PubSub. Use NewRedis instead when
// publishers and subscribers live in separate processes.
func New() PubSub {
	return newInMemoryPubSub()
}

// NewRedis constructs a Redis-backed PubSub.
func NewRedis(ctx context.Context, opts RedisOptions) (PubSub, error) {
	return makePubSubFromRedis(ctx, opts)
}
