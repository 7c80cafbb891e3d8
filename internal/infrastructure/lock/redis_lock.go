package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// DefaultKey is the Redis key guarding the usage registry.
const DefaultKey = "articlepublisher:registry-lock"

const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLock holds the registry lock as a Redis key with a TTL.
type RedisLock struct {
	client   redis.Cmdable
	key      string
	ttl      time.Duration
	newToken func() string

	mu    sync.Mutex
	token string
}

var _ ports.RegistryLock = (*RedisLock)(nil)

// NewRedisClient connects to addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewRedisLock builds a lock on key; ttl bounds how long a crashed run can hold it.
func NewRedisLock(client redis.Cmdable, key string, ttl time.Duration) *RedisLock {
	if key == "" {
		key = DefaultKey
	}
	return &RedisLock{client: client, key: key, ttl: ttl, newToken: uuid.NewString}
}

// Acquire sets the key if absent or fails with domain.ErrRegistryLocked.
func (l *RedisLock) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	token := l.newToken()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: redis setnx failure: %v", domain.ErrTransientIO, err)
	}
	if !ok {
		return fmt.Errorf("%w: key %s is held", domain.ErrRegistryLocked, l.key)
	}
	l.token = token
	return nil
}

// Release deletes the key only while it still carries this holder's token.
func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""

	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, token).Err(); err != nil {
		return fmt.Errorf("redis release failure: %w", err)
	}
	return nil
}
