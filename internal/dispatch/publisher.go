package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/swiftbasket/swiftbasket-backend/pkg/redis"
)

// Publisher fans dispatch events out to channels. Delivery is best-effort:
// a courier who is not listening simply misses the message.
type Publisher interface {
	PublishToChannel(ctx context.Context, channel, event string, payload any) error
}

type redisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher returns a Publisher backed by Redis pub/sub.
func NewRedisPublisher(client *redis.Client) (Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisPublisher{client: client}, nil
}

func (p *redisPublisher) PublishToChannel(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(Envelope{
		Event:     event,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal dispatch envelope: %w", err)
	}
	if err := p.client.Publish(ctx, channel, body); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
