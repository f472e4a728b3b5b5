package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed login attempts per email in redis under a TTL
// key. With no redis client configured the limiter is inert and every
// attempt is allowed.
type LoginLimiter struct {
	redis  *redis.Client
	max    int
	window time.Duration
}

func NewLoginLimiter(client *redis.Client, max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{redis: client, max: max, window: window}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.redis != nil && l.max > 0
}

func attemptsKey(email string) string {
	return "login_attempts:" + email
}

// Allow reports whether a login attempt for email may proceed. Redis
// unavailability fails open: authentication still works without the limiter.
func (l *LoginLimiter) Allow(ctx context.Context, email string) bool {
	if !l.Enabled() {
		return true
	}
	value, err := l.redis.Get(ctx, attemptsKey(email)).Result()
	if err != nil {
		return true
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return true
	}
	return count < l.max
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) {
	if !l.Enabled() {
		return
	}
	key := attemptsKey(email)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if count == 1 {
		_ = l.redis.Expire(ctx, key, l.window).Err()
	}
}

func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if !l.Enabled() {
		return
	}
	_ = l.redis.Del(ctx, attemptsKey(email)).Err()
}
