package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans alerts out on a Redis pub/sub channel for local
// consumers (e.g. an operator dashboard subscribed to the channel).
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on the given channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the alert as a JSON payload on the channel.
func (p *RedisPublisher) Publish(ctx context.Context, subject, message string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"subject":      subject,
		"message":      message,
		"triggered_at": time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}
