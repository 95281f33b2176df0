package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nmelnikov/authcove/internal/config"
	"github.com/nmelnikov/authcove/internal/observability"
	"github.com/nmelnikov/authcove/internal/retry"
)

// redisRetryConfig bounds retries for Redis operations. Backoff stays short
// so a degraded backend cannot stall request handling.
func redisRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:    3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isRetryableRedisError reports whether the error is worth retrying.
// Misses and context cancellation are not.
func isRetryableRedisError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// redisStore implements Store on a Redis backend.
type redisStore struct {
	logger    observability.Logger
	metrics   *observability.Metrics
	client    *redis.Client
	keyPrefix string
}

// NewRedis connects to Redis using the given configuration and returns a
// Store. The connection is verified with a ping before use.
func NewRedis(cfg *config.RedisConfig, logger observability.Logger, metrics *observability.Metrics) (Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.ConnectTimeout > 0 {
		opts.DialTimeout = cfg.ConnectTimeout.Duration()
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout.Duration()
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout.Duration()
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	s := &redisStore{
		logger:    logger,
		metrics:   metrics,
		client:    client,
		keyPrefix: cfg.KeyPrefix,
	}

	logger.Info("redis store initialized",
		observability.String("keyPrefix", s.keyPrefix))

	return s, nil
}

func (s *redisStore) fullKey(key string) string {
	return s.keyPrefix + key
}

// Get retrieves a value, retrying transient backend faults.
func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte

	err := retry.Do(ctx, redisRetryConfig(), isRetryableRedisError, func() error {
		val, getErr := s.client.Get(ctx, s.fullKey(key)).Bytes()
		if getErr != nil {
			return getErr
		}
		result = val
		return nil
	})

	if err == nil {
		s.metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
		return result, nil
	}
	if errors.Is(err, redis.Nil) {
		s.metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, ErrCacheMiss
	}

	s.metrics.CacheOperations.WithLabelValues("get", "error").Inc()
	s.logger.Error("redis get failed",
		observability.String("key", key),
		observability.Error(err))
	return nil, err
}

// Set stores a value with the given TTL, retrying transient backend faults.
func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := retry.Do(ctx, redisRetryConfig(), isRetryableRedisError, func() error {
		return s.client.Set(ctx, s.fullKey(key), value, ttl).Err()
	})

	if err != nil {
		s.metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		s.logger.Error("redis set failed",
			observability.String("key", key),
			observability.Error(err))
		return err
	}

	s.metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
	return nil
}

// Delete removes a value, retrying transient backend faults.
func (s *redisStore) Delete(ctx context.Context, key string) error {
	err := retry.Do(ctx, redisRetryConfig(), isRetryableRedisError, func() error {
		return s.client.Del(ctx, s.fullKey(key)).Err()
	})

	if err != nil {
		s.metrics.CacheOperations.WithLabelValues("delete", "error").Inc()
		s.logger.Error("redis delete failed",
			observability.String("key", key),
			observability.Error(err))
		return err
	}

	s.metrics.CacheOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}

// Exists reports whether a key exists, retrying transient backend faults.
func (s *redisStore) Exists(ctx context.Context, key string) (bool, error) {
	var count int64

	err := retry.Do(ctx, redisRetryConfig(), isRetryableRedisError, func() error {
		var existsErr error
		count, existsErr = s.client.Exists(ctx, s.fullKey(key)).Result()
		return existsErr
	})

	if err != nil {
		s.metrics.CacheOperations.WithLabelValues("exists", "error").Inc()
		s.logger.Error("redis exists failed",
			observability.String("key", key),
			observability.Error(err))
		return false, err
	}

	return count > 0, nil
}

// Close closes the Redis connection.
func (s *redisStore) Close() error {
	s.logger.Info("redis store closing")
	return s.client.Close()
}
