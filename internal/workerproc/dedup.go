package workerproc

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupTTL is how long a processed email id is remembered.
const DedupTTL = 48 * time.Hour

// RedisDedup records processed email ids in Redis.
type RedisDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisDedup connects using a redis:// URL.
func NewRedisDedup(url string) (*RedisDedup, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisDedupClient(redis.NewClient(opts)), nil
}

// NewRedisDedupClient wraps an existing client.
func NewRedisDedupClient(rdb *redis.Client) *RedisDedup {
	return &RedisDedup{rdb: rdb, ttl: DedupTTL}
}

func dedupKey(emailID int64) string {
	return fmt.Sprintf("mailsplit:assigned:%d", emailID)
}

// Seen reports whether the email was already processed.
func (d *RedisDedup) Seen(ctx context.Context, emailID int64) (bool, error) {
	n, err := d.rdb.Exists(ctx, dedupKey(emailID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark records the email as processed.
func (d *RedisDedup) Mark(ctx context.Context, emailID int64) error {
	return d.rdb.Set(ctx, dedupKey(emailID), "1", d.ttl).Err()
}

// Close releases the client.
func (d *RedisDedup) Close() error {
	return d.rdb.Close()
}

// Ping checks the Redis connection.
func (d *RedisDedup) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}
