package pubsub

import (
	"context"
	"fmt"
	"runtime"

	"github.com/redis/go-redis/v9"
)

const connsPerCPU = 10

func makePubSubFromRedis(ctx context.Context, opts RedisOptions) (PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		PoolFIFO:     true,
		PoolSize:     runtime.GOMAXPROCS(0) * connsPerCPU,
		MinIdleConns: runtime.GOMAXPROCS(0),
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &redisPubSub{client: client}, nil
}

type redisPubSub struct {
	client *redis.Client
}

func (ps *redisPubSub) Publish(topic string, message []byte) error {
	ctx := context.Background()
	if err := ps.client.Publish(ctx, topic, message).Err(); err != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return nil
}

func (ps *redisPubSub) Subscribe(topic string) Subscription {
	ctx := context.Background()
	sub := ps.client.Subscribe(ctx, topic)
	return &redisSubscription{ch: sub.Channel(), sub: sub}
}

func (ps *redisPubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}

type redisSubscription struct {
	ch  <-chan *redis.Message
	sub *redis.PubSub
}

func (s *redisSubscription) Close() error {
	if err := s.sub.Close(); err != nil {
		return fmt.Errorf("failed to close redis subscription: %w", err)
	}
	return nil
}

func (s *redisSubscription) Channel() <-chan []byte {
	ch := make(chan []byte)
	go func() {
		defer close(ch)
		for msg := range s.ch {
			ch <- []byte(msg.Payload)
		}
	}()
	return ch
}
