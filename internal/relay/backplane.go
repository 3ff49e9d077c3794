package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Backplane carries deliveries between server instances so a user connected
// to another instance still receives them.
type Backplane interface {
	Publish(ctx context.Context, d Delivery) error
	Subscribe(ctx context.Context) (<-chan Delivery, error)
	Close() error
}

const DefaultChannel = "relay:deliveries"

// RedisBackplane publishes deliveries on a redis pub/sub channel.
type RedisBackplane struct {
	client  *redis.Client
	channel string
}

// NewRedisBackplane connects to redisURL and checks the connection.
func NewRedisBackplane(ctx context.Context, redisURL, channel string) (*RedisBackplane, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if channel == "" {
		channel = DefaultChannel
	}
	logrus.WithField("channel", channel).Info("Relay redis backplane connected")
	return &RedisBackplane{client: client, channel: channel}, nil
}

func (b *RedisBackplane) Publish(ctx context.Context, d Delivery) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe returns once the subscription is confirmed by the server. The
// channel is closed when ctx is cancelled.
func (b *RedisBackplane) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	out := make(chan Delivery, 64)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var d Delivery
				if err := json.Unmarshal([]byte(msg.Payload), &d); err != nil {
					logrus.WithError(err).Warn("Dropping malformed relay delivery")
					continue
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RedisBackplane) Close() error {
	return b.client.Close()
}
