package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunLock is the single-leader guard around the migration batches.
// The batch runners themselves provide no mutual exclusion (collision
// resolution is a strictly ordered single-writer scan), so two
// concurrent runs against the same data set would corrupt uniqueness;
// the CLI takes this lock before starting one.
//
// SET NX with a TTL plus a per-holder token: only the process that
// acquired the lock can release it, and a crashed run frees itself
// when the TTL expires.
type RunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

// releaseScript deletes the key only when it still holds our token,
// so an expired-and-reacquired lock is never released by the old
// holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRunLock(r *RedisClient, key string, ttl time.Duration) *RunLock {
	return &RunLock{
		client: r.Client,
		key:    key,
		ttl:    ttl,
		token:  uuid.New().String(),
	}
}

// Acquire takes the lock. Returns false when another run holds it.
func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("run lock acquire failed: %w", err)
	}
	return ok, nil
}

// Release frees the lock if this holder still owns it.
func (l *RunLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("run lock release failed: %w", err)
	}
	return nil
}
