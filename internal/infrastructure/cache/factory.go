package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/resolvd/backend/internal/domain/shared"
	"github.com/resolvd/backend/internal/infrastructure/config"
)

// StoreFactory creates resolver cache stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	keyPrefix             string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory and the stores it creates
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithKeyPrefix sets the key prefix for Redis stores
func WithKeyPrefix(prefix string) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.keyPrefix = prefix
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-backed cache store
func (f *StoreFactory) CreateRedisStore() (shared.CacheStore, error) {
	store, err := NewRedisStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.keyPrefix, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cache store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory cache store. Suitable for
// single-instance deployments and testing.
func (f *StoreFactory) CreateInMemoryStore() shared.CacheStore {
	return NewInMemoryStore()
}

// CreateStore tries to create a Redis store first and falls back to an
// in-memory store if Redis is unavailable and fallback is allowed.
func (f *StoreFactory) CreateStore() (shared.CacheStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis resolver cache")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for resolver cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory resolver cache. "+
		"Cached results will not be shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
