package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/resolvd/backend/internal/domain/shared"
)

// RedisStore implements CacheStore on Redis. Values are stored JSON-encoded.
// Suitable for distributed deployments where multiple gateway instances
// should share cached resolver results.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStore creates a Redis-backed cache store and verifies the
// connection.
func NewRedisStore(cfg RedisConfig, keyPrefix string, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStoreWithClient(client, keyPrefix, logger), nil
}

// NewRedisStoreWithClient creates a store with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisStore {
	return newRedisStoreWithClient(client, keyPrefix, logger)
}

func newRedisStoreWithClient(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "resolver:cache:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Get returns the cached value for key. Backend failures and decode failures
// are logged and reported as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (interface{}, bool) {
	payload, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var value interface{}
	if err := json.Unmarshal(payload, &value); err != nil {
		s.logger.Warn("cache entry undecodable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return value, true
}

// Set stores value under key with the given TTL. Failures are logged and
// reported as false, never propagated.
func (s *RedisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache value unencodable", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, payload, ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements CacheStore
var _ shared.CacheStore = (*RedisStore)(nil)
