package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NonceLedger records single use nonces. Consume reports true only for the
// first call with a given nonce within ttl.
type NonceLedger interface {
	Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}

type RedisNonceLedger struct {
	rdb     redis.Cmdable
	timeout time.Duration
}

func NewRedisNonceLedger(rdb redis.Cmdable, timeout time.Duration) *RedisNonceLedger {
	return &RedisNonceLedger{rdb: rdb, timeout: timeout}
}

func (l *RedisNonceLedger) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	return l.rdb.SetNX(ctx, "role_selection_"+nonce, 1, ttl).Result()
}
