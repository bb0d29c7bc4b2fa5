package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"votedesk/pkg/redis"
)

// CacheService is a JSON cache-aside layer over Redis. A nil *CacheService
// is valid and caches nothing.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// Keys returns the environment-aware key builder
func (c *CacheService) Keys() *redis.KeyBuilder {
	return c.redis.KeyBuilder
}

// GetWithCache returns the cached value of key or, on a miss, loads it with
// fallback and caches it asynchronously. Cache errors never fail the call.
func GetWithCache[T any](ctx context.Context, c *CacheService, key string, ttl time.Duration, fallback func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return fallback(ctx)
	}

	cached, err := c.redis.Get(ctx, key)
	switch {
	case err == nil && cached != "":
		var v T
		jsonErr := json.Unmarshal([]byte(cached), &v)
		if jsonErr == nil {
			c.logger.Debug("Cache hit", zap.String("key", key))
			return v, nil
		}
		c.logger.Warn("Cache entry corrupted, falling back to API",
			zap.String("key", key),
			zap.Error(jsonErr))
	case err != nil && !errors.Is(err, redis.ErrNil):
		c.logger.Warn("Cache error, falling back to API",
			zap.String("key", key),
			zap.Error(err))
	}

	c.logger.Debug("Cache miss", zap.String("key", key))
	v, err := fallback(ctx)
	if err != nil {
		return v, err
	}
	// Encode before returning so the caller may modify v
	if data, jsonErr := json.Marshal(v); jsonErr == nil {
		go c.cacheAsync(key, data, ttl)
	}
	return v, nil
}

// Put stores v under key synchronously
func (c *CacheService) Put(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, key, string(data), ttl)
}

// Invalidate deletes keys
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.Error("Failed to invalidate cache keys",
			zap.Strings("keys", keys),
			zap.Error(err))
		return err
	}
	return nil
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if c == nil {
		return nil
	}
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}

func (c *CacheService) cacheAsync(key string, data []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.redis.Set(ctx, key, string(data), ttl); err != nil {
		c.logger.Error("Failed to cache value",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	c.logger.Debug("Value cached", zap.String("key", key))
}
