// ABOUTME: Tests for the login rate limiter
// ABOUTME: Uses an in-memory RequestRateLimiter so no redis is needed

package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRateLimiter struct {
	counts map[string]int
	err    error
}

func (l *countingRateLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.counts[key]++
	res := &redis_rate.Result{Limit: limit}
	if l.counts[key] <= limit.Rate {
		res.Allowed = 1
		res.Remaining = limit.Rate - l.counts[key]
		return res, nil
	}
	res.RetryAfter = 30 * time.Second
	return res, nil
}

func TestLoginLimiter_AllowsUpToLimit(t *testing.T) {
	backend := &countingRateLimiter{counts: map[string]int{}}
	l := New(backend, 2, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are limited independently")
	assert.Equal(t, 3, backend.counts[keyPrefix+"10.0.0.1"])
}

func TestLoginLimiter_BackendError(t *testing.T) {
	backend := &countingRateLimiter{counts: map[string]int{}, err: errors.New("connection refused")}
	l := New(backend, 5, nil)

	_, err := l.Allow(context.Background(), "10.0.0.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
