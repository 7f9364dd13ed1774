package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
)

// RateLimitConfig configures rate limiting behavior
type RateLimitConfig struct {
	// MaxRequests is the maximum number of requests allowed per window
	MaxRequests int

	Window time.Duration

	// KeyFunc extracts the rate limit key; an empty key skips the limit
	KeyFunc func(*core.InteractionContext) string

	// Message shown when rate limited
	Message string

	// Store tracks counters, in-memory when nil
	Store RateLimitStore

	Logger *zap.Logger
}

// RateLimitStore tracks rate limit data
type RateLimitStore interface {
	// Increment increments the counter for a key and returns the new count
	Increment(ctx context.Context, key string, window time.Duration) (int, error)

	// Reset resets the counter for a key
	Reset(ctx context.Context, key string) error
}

// defaultKeyFunc uses user ID as the rate limit key
func defaultKeyFunc(ctx *core.InteractionContext) string {
	return ctx.UserID
}

// RateLimitMiddleware applies rate limiting. Store failures let the request through.
func RateLimitMiddleware(config *RateLimitConfig) core.Middleware {
	cfg := *config
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = defaultKeyFunc
	}
	if cfg.Message == "" {
		cfg.Message = fmt.Sprintf("You're doing that too fast! Please wait %v before trying again.", cfg.Window)
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryRateLimitStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			key := cfg.KeyFunc(ctx)
			if key == "" {
				return next.Handle(ctx)
			}

			count, err := cfg.Store.Increment(ctx.Context, key, cfg.Window)
			if err != nil {
				cfg.Logger.Warn("rate limit store failed", zap.String("key", key), zap.Error(err))
				return next.Handle(ctx)
			}

			if count > cfg.MaxRequests {
				return &core.HandlerResult{
					Response: core.NewEphemeralResponse("⏱️ " + cfg.Message),
				}, nil
			}

			return next.Handle(ctx)
		})
	}
}

// UserRateLimitMiddleware applies per-user rate limiting
func UserRateLimitMiddleware(maxRequests int, window time.Duration, store RateLimitStore) core.Middleware {
	return RateLimitMiddleware(&RateLimitConfig{
		MaxRequests: maxRequests,
		Window:      window,
		Store:       store,
	})
}

// ActionRateLimitMiddleware limits each user per command or component action,
// so spamming publish does not lock someone out of /cast list.
func ActionRateLimitMiddleware(maxRequests int, window time.Duration, store RateLimitStore) core.Middleware {
	return RateLimitMiddleware(&RateLimitConfig{
		MaxRequests: maxRequests,
		Window:      window,
		Store:       store,
		KeyFunc: func(ctx *core.InteractionContext) string {
			if ctx.UserID == "" {
				return ""
			}
			return fmt.Sprintf("%s:%s", ctx.UserID, ctx.Describe())
		},
	})
}

// MemoryRateLimitStore is an in-memory fixed window store
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// NewMemoryRateLimitStore creates a new in-memory store
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Increment increments the counter for a key
func (s *MemoryRateLimitStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, exists := s.buckets[key]
	if !exists || now.After(b.resetAt) {
		s.prune(now)
		b = &bucket{resetAt: now.Add(window)}
		s.buckets[key] = b
	}

	b.count++
	return b.count, nil
}

// Reset resets the counter for a key
func (s *MemoryRateLimitStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buckets, key)
	return nil
}

// prune drops expired buckets; callers hold the lock
func (s *MemoryRateLimitStore) prune(now time.Time) {
	for key, b := range s.buckets {
		if now.After(b.resetAt) {
			delete(s.buckets, key)
		}
	}
}

// RedisRateLimitStore shares fixed window counters across bot replicas
type RedisRateLimitStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRateLimitStore creates a store keyed under prefix, e.g. "ratelimit"
func NewRedisRateLimitStore(client redis.UniversalClient, prefix string) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client, prefix: prefix}
}

func (s *RedisRateLimitStore) key(key string) string {
	return s.prefix + ":" + key
}

// Increment bumps the counter and starts the window on the first hit
func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	k := s.key(key)

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return int(count), nil
}

// Reset resets the counter for a key
func (s *RedisRateLimitStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
