package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/application/ports"
	"github.com/inventra/backend/internal/infrastructure/config"
)

// Redis is a TTL cache backed by a shared Redis instance, for deployments
// running more than one backend replica. Cache failures degrade to misses;
// the callers re-read from their source of truth.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client, logger: logger.Named("cache")}, nil
}

// NewRedisWithClient wraps an existing client, for tests and shared clients
func NewRedisWithClient(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{client: client, logger: logger.Named("cache")}
}

// Get implements ports.Cache
func (r *Redis) Get(ctx context.Context, namespace, tenantID, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, cacheKey(namespace, tenantID, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("redis get failed", zap.Error(err))
		}
		return nil, false
	}
	return value, true
}

// Set implements ports.Cache
func (r *Redis) Set(ctx context.Context, namespace, tenantID, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, cacheKey(namespace, tenantID, key), value, ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", zap.Error(err))
	}
}

// Delete implements ports.Cache
func (r *Redis) Delete(ctx context.Context, namespace, tenantID, key string) {
	if err := r.client.Del(ctx, cacheKey(namespace, tenantID, key)).Err(); err != nil {
		r.logger.Warn("redis delete failed", zap.Error(err))
	}
}

// Close closes the Redis client
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ ports.Cache = (*Redis)(nil)
