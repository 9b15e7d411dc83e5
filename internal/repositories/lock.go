package repositories

import (
	"context"
	"fmt"
	"time"

	"lexpay/internal/errors"

	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

// SettlementLock serializes mutations on one lawyer's payout record.
// Acquire is SET NX with a TTL so a crashed holder cannot deadlock the
// lawyer; Release verifies the token before deleting so an expired
// holder cannot drop someone else's lock.
type SettlementLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

func NewSettlementLock(client *redis.Client, key, token string, ttl time.Duration) *SettlementLock {
	return &SettlementLock{client: client, key: key, token: token, ttl: ttl}
}

// NewPayoutLock builds the per-lawyer payout lock.
func NewPayoutLock(client *redis.Client, lawyerID uint, token string) *SettlementLock {
	key := fmt.Sprintf("payout:lock:lawyer:%d", lawyerID)
	return NewSettlementLock(client, key, token, 30*time.Second)
}

// TryAcquire attempts to take the lock without blocking.
func (l *SettlementLock) TryAcquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
}

// Acquire retries TryAcquire until it succeeds, the retries run out or
// the context is cancelled.
func (l *SettlementLock) Acquire(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		ok, err := l.TryAcquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockNotAcquired
}

// Release deletes the lock only if this holder's token still owns it.
func (l *SettlementLock) Release(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	return l.client.Eval(ctx, script, []string{l.key}, l.token).Err()
}
