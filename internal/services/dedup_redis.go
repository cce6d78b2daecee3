package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ananth-NQI/orderbot/internal/log"
)

const dedupKeyPrefix = "orderbot:dedup:"

// RedisDeduplicator shares the dedup window between replicas through
// SET NX with a TTL.
type RedisDeduplicator struct {
	client *redis.Client
	window time.Duration
	logger zerolog.Logger
}

// NewRedisDeduplicator connects to the Redis server at url (redis://...).
func NewRedisDeduplicator(url string, window time.Duration) (*RedisDeduplicator, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	d := newRedisDeduplicator(client, window)
	d.logger.Info().Str("addr", opts.Addr).Dur("window", window).Msg("using redis deduplicator")
	return d, nil
}

func newRedisDeduplicator(client *redis.Client, window time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{
		client: client,
		window: window,
		logger: log.WithComponent("dedup"),
	}
}

// ShouldProcess fails open: when Redis is unreachable the message is
// processed, since losing a customer message is worse than a duplicate reply.
func (d *RedisDeduplicator) ShouldProcess(ctx context.Context, messageID string) bool {
	ok, err := d.client.SetNX(ctx, dedupKeyPrefix+messageID, 1, d.window).Result()
	if err != nil {
		d.logger.Warn().Err(err).Str("message_id", messageID).Msg("redis dedup failed, processing message")
		return true
	}
	return ok
}

// Close closes the Redis client.
func (d *RedisDeduplicator) Close() error {
	return d.client.Close()
}
