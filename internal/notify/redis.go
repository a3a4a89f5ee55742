package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/redis/go-redis/v9"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes events on a pub/sub channel and on a per-party
// channel (<channel>:<account id>) for socket gateways that subscribe per user.
type RedisNotifier struct {
	client  publisher
	channel string
}

// ConnectRedis accepts a redis:// URL or a bare host:port.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func NewRedisNotifier(client publisher, channel string) *RedisNotifier {
	if channel == "" {
		channel = "booking-events"
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, ev models.TransitionEvent) error {
	payload, err := encode(ev)
	if err != nil {
		return err
	}
	for _, ch := range []string{
		n.channel,
		n.channel + ":" + ev.RequesterID.String(),
		n.channel + ":" + ev.WorkerID.String(),
	} {
		if err := n.client.Publish(ctx, ch, payload).Err(); err != nil {
			return fmt.Errorf("publish %s: %w", ch, err)
		}
	}
	return nil
}
