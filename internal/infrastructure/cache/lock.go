package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockNotHeld is returned when releasing a lock owned by someone else
var ErrLockNotHeld = errors.New("lock is not held")

// Locker hands out expiring exclusive locks by key. Acquire returns the
// owner token needed to release, or ok=false when the key is taken.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

func newLockToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX
type RedisLocker struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisLocker creates a locker sharing an existing client
func NewRedisLocker(client redis.Cmdable, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "shop:lock:"
	}
	return &RedisLocker{client: client, keyPrefix: keyPrefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := newLockToken()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

var _ Locker = (*RedisLocker)(nil)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryLocker implements Locker for a single process
type InMemoryLocker struct {
	mu    sync.Mutex
	locks map[string]lockEntry
	now   func() time.Time
}

// NewInMemoryLocker creates an empty in-memory locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		locks: make(map[string]lockEntry),
		now:   time.Now,
	}
}

func (l *InMemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.locks[key]; ok && now.Before(e.expiresAt) {
		return "", false, nil
	}
	token := newLockToken()
	l.locks[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *InMemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok || e.token != token {
		return ErrLockNotHeld
	}
	delete(l.locks, key)
	if !l.now().Before(e.expiresAt) {
		return ErrLockNotHeld
	}
	return nil
}

// Held reports whether key is currently locked
func (l *InMemoryLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	return ok && l.now().Before(e.expiresAt)
}

var _ Locker = (*InMemoryLocker)(nil)
