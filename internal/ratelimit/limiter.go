// ABOUTME: Per-client login rate limiting backed by redis
// ABOUTME: Wraps redis_rate's GCRA limiter; the login handler consults it before authenticating

package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
)

// keyPrefix namespaces limiter keys in a shared redis.
const keyPrefix = "nubarmory:login:"

// RequestRateLimiter is the subset of *redis_rate.Limiter used here.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// LoginLimiter limits login attempts per key, typically a client IP.
type LoginLimiter struct {
	limiter RequestRateLimiter
	limit   redis_rate.Limit
	logger  *slog.Logger
}

// New returns a LoginLimiter allowing perMinute attempts per key.
func New(limiter RequestRateLimiter, perMinute int, logger *slog.Logger) *LoginLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginLimiter{
		limiter: limiter,
		limit:   redis_rate.PerMinute(perMinute),
		logger:  logger.With("component", "ratelimit"),
	}
}

// Allow records an attempt for key and reports whether it may proceed.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := l.limiter.Allow(ctx, keyPrefix+key, l.limit)
	if err != nil {
		return Decision{}, fmt.Errorf("checking rate limit: %w", err)
	}
	if res.Allowed > 0 {
		return Decision{Allowed: true}, nil
	}

	l.logger.Info("login rate limited", "key", key, "retry_after", res.RetryAfter)
	return Decision{Allowed: false, RetryAfter: res.RetryAfter}, nil
}

// Client owns the redis connection behind a LoginLimiter.
type Client struct {
	rdb *redis.Client
}

// Dial connects to redis at addr and verifies it with a ping.
func Dial(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	return &Client{rdb: rdb}, nil
}

// Limiter builds a LoginLimiter on this connection.
func (c *Client) Limiter(perMinute int, logger *slog.Logger) *LoginLimiter {
	return New(redis_rate.NewLimiter(c.rdb), perMinute, logger)
}

// Close closes the redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
