package cache

import (
	"context"
	"fmt"
	"time"

	"writer_digest_bot/internal/domain/digest"

	"github.com/redis/go-redis/v9"
)

const claimTTL = 48 * time.Hour

// RedisRunLedger claims digest days with SETNX under key "<prefix><YYYY-MM-DD>".
type RedisRunLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisRunLedger creates a Redis-based run ledger. Prefix may be empty.
func NewRedisRunLedger(client *redis.Client, prefix string) *RedisRunLedger {
	if prefix == "" {
		prefix = "digest:run:"
	}
	return &RedisRunLedger{client: client, prefix: prefix}
}

func (l *RedisRunLedger) Claim(ctx context.Context, day time.Time, runID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+digest.DayKey(day), runID, claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("error claiming digest run: %w", err)
	}
	return ok, nil
}

// NewClient builds a client and checks connectivity.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
