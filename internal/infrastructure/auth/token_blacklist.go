package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs before they expire.
// Single tokens are revoked by JTI (logout); a whole account is revoked by
// recording a cut-off time, and every token issued at or before it is rejected
// (password reset, deactivation).
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

const defaultBlacklistPrefix = "shop:auth:revoked:"

// RedisTokenBlacklist keeps revocations in Redis so every API instance sees them
type RedisTokenBlacklist struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisTokenBlacklist creates a blacklist on top of a shared Redis client
func NewRedisTokenBlacklist(client redis.Cmdable) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: defaultBlacklistPrefix,
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) userKey(userID string) string {
	return b.keyPrefix + "user:" + userID
}

// Revoke blacklists a single token until its natural expiry
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeUser rejects every token of the user issued up to now.
// ttl should cover the longest token lifetime.
func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsRevoked checks both the token JTI and the user cut-off in one round trip
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	pipe := b.client.Pipeline()
	exists := pipe.Exists(ctx, b.jtiKey(claims.ID))
	cutoff := pipe.Get(ctx, b.userKey(claims.UserID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	if exists.Val() > 0 {
		return true, nil
	}

	raw, err := cutoff.Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAtOrBefore(claims, ts), nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is used when Redis is disabled.
// Revocations are local to the process.
type InMemoryTokenBlacklist struct {
	mu      sync.Mutex
	tokens  map[string]time.Time // jti -> expiry
	cutoffs map[string]int64     // user id -> unix seconds
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:  make(map[string]time.Time),
		cutoffs: make(map[string]int64),
	}
}

func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cutoffs[userID] = time.Now().Unix()
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, claims *Claims) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if expiry, ok := b.tokens[claims.ID]; ok {
		if time.Now().Before(expiry) {
			return true, nil
		}
		delete(b.tokens, claims.ID)
	}
	if ts, ok := b.cutoffs[claims.UserID]; ok {
		return issuedAtOrBefore(claims, ts), nil
	}
	return false, nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)

func issuedAtOrBefore(claims *Claims, cutoff int64) bool {
	return claims.GetIssuedAtTime().Unix() <= cutoff
}
