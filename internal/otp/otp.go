package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMismatch = errors.New("OTP incorrect or expired")

// Store keeps signup codes and the verified flag in Redis. Expiry is left to
// key TTLs.
type Store struct {
	rdb         redis.Cmdable
	timeout     time.Duration
	ttl         time.Duration
	verifiedTTL time.Duration
}

func NewStore(rdb redis.Cmdable, timeout, ttl, verifiedTTL time.Duration) *Store {
	return &Store{rdb: rdb, timeout: timeout, ttl: ttl, verifiedTTL: verifiedTTL}
}

func codeKey(email string) string {
	return fmt.Sprintf("otp_%s_signup", email)
}

func verifiedKey(email string) string {
	return fmt.Sprintf("otp_%s_signup_verified", email)
}

// Issue replaces any previous code for email.
func (s *Store) Issue(ctx context.Context, email, code string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, verifiedKey(email))
	pipe.Set(ctx, codeKey(email), code, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Verify checks code and, on a match, swaps it for the verified flag.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stored, err := s.rdb.Get(ctx, codeKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMismatch
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrMismatch
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, codeKey(email))
	pipe.Set(ctx, verifiedKey(email), "1", s.verifiedTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) IsVerified(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.rdb.Exists(ctx, verifiedKey(email)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Consume clears every OTP key for email once signup completes.
func (s *Store) Consume(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.rdb.Del(ctx, codeKey(email), verifiedKey(email)).Err()
}
