package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"grievance/internal/domain/entity"
	"grievance/pkg/logger"
)

const NotificationChannel = "grievance:notifications"

// LocalDeliverer pushes a notification to connections held by this process.
type LocalDeliverer interface {
	Deliver(n *entity.Notification) error
}

// RedisRelay fans notifications out to every API instance. Publish goes to
// Redis; each instance's Listen loop hands received notifications to its own
// websocket manager.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   LocalDeliverer
}

func NewRedisRelay(ctx context.Context, url string, local LocalDeliverer) (*RedisRelay, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRelay{
		client:  client,
		channel: NotificationChannel,
		local:   local,
	}, nil
}

func (r *RedisRelay) Publish(ctx context.Context, n *entity.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Listen blocks until ctx is cancelled.
func (r *RedisRelay) Listen(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	logger.Info("Listening for notifications on Redis channel %s", r.channel)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var n entity.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				logger.Warn("Dropping malformed notification from Redis: %v", err)
				continue
			}
			if err := r.local.Deliver(&n); err != nil {
				logger.Warn("Failed to deliver notification %s: %v", n.ID, err)
			}
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}
