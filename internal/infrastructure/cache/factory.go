package cache

import (
	"fmt"

	"github.com/agriconnect/backend/internal/application/ai"
	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/infrastructure/auth"
	"github.com/agriconnect/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory creates cache-backed components based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	client *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory
// components when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new cache factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// connect returns a shared Redis client, dialing on first use
func (f *Factory) connect() (*redis.Client, error) {
	if f.client != nil {
		return f.client, nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		return nil, err
	}

	f.client = client
	return client, nil
}

// CreateThrottle creates an OTP request throttle. It tries Redis first
// and falls back to an in-memory throttle when Redis is not available
// and fallback is allowed.
func (f *Factory) CreateThrottle() (commsapp.Throttle, error) {
	client, err := f.connect()
	if err == nil {
		f.logger.Info("using Redis throttle")
		return NewRedisThrottle(client, "otp:throttle:"), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for throttling but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory throttle. "+
		"Rate limits will not be shared across instances.",
		zap.Error(err),
	)
	return NewInMemoryThrottle(), nil
}

// CreateTranslationCache creates a translation cache. It tries Redis
// first and falls back to an in-memory cache when Redis is not
// available and fallback is allowed.
func (f *Factory) CreateTranslationCache() (ai.TranslationCache, error) {
	client, err := f.connect()
	if err == nil {
		f.logger.Info("using Redis translation cache")
		return NewRedisTranslationCache(client), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for translation cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory translation cache. "+
		"Translations will be re-requested after restarts.",
		zap.Error(err),
	)
	return NewInMemoryTranslationCache(), nil
}

// CreateTokenBlacklist creates a JWT token blacklist. It tries Redis
// first and falls back to an in-memory blacklist when Redis is not
// available and fallback is allowed.
func (f *Factory) CreateTokenBlacklist() (auth.TokenBlacklist, error) {
	client, err := f.connect()
	if err == nil {
		f.logger.Info("using Redis token blacklist")
		return auth.NewRedisTokenBlacklist(client), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for token blacklist but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory token blacklist. "+
		"Revoked tokens will not be shared across instances.",
		zap.Error(err),
	)
	return auth.NewInMemoryTokenBlacklist(), nil
}

// Close releases the shared Redis client if one was created
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
