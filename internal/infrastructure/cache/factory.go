package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backends bundles the Redis client, when one is configured, with the
// components built on top of it
type Backends struct {
	Client *redis.Client
	Locker Locker
}

// Close releases the Redis connection pool
func (b *Backends) Close() error {
	if b.Client == nil {
		return nil
	}
	return b.Client.Close()
}

// Distributed reports whether state is shared through Redis
func (b *Backends) Distributed() bool {
	return b.Client != nil
}

// NewBackends connects to Redis when enabled. When Redis is disabled or
// unreachable it falls back to in-process implementations, which do not
// share state across instances.
func NewBackends(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Backends {
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory locks and token blacklist")
		return &Backends{Locker: NewInMemoryLocker()}
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory locks and token blacklist",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return &Backends{Locker: NewInMemoryLocker()}
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()))
	return &Backends{
		Client: client,
		Locker: NewRedisLocker(client, ""),
	}
}

// Ping checks the Redis connection. In-memory backends are always up.
func (b *Backends) Ping(ctx context.Context) error {
	if b.Client == nil {
		return nil
	}
	return b.Client.Ping(ctx).Err()
}
