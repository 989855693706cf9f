package security

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration

	// OnReject is called with the scope of every rejected request.
	OnReject func(scope string)
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

// Limit guards write endpoints: suspicious user agents are refused and each
// user (or IP for anonymous requests) gets limit requests per window and scope.
// A nil limiter or one without Redis lets everything through.
func (r *RateLimiter) Limit(scope string) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if r == nil || r.redis == nil {
			return e.Next()
		}

		if r.isSuspiciousUserAgent(e.Request.UserAgent()) {
			r.reject(scope)
			return apis.NewForbiddenError("Access denied", nil)
		}

		allowed, err := r.Allow(e.Request.Context(), r.key(e, scope))
		if err != nil {
			slog.Warn("rate limiter unavailable", "scope", scope, "error", err)
			return e.Next()
		}
		if !allowed {
			r.reject(scope)
			return apis.NewTooManyRequestsError("Too many requests. Please try again later.", nil)
		}

		return e.Next()
	}
}

// Allow counts one request against key and reports whether it is within the limit.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := r.redis.Expire(ctx, key, r.window).Err(); err != nil {
			slog.Warn("rate limiter expire failed", "key", key, "error", err)
		}
	}
	return count <= int64(r.limit), nil
}

func (r *RateLimiter) key(e *core.RequestEvent, scope string) string {
	if e.Auth != nil {
		return fmt.Sprintf("ratelimit:%s:user:%s", scope, e.Auth.Id)
	}
	return fmt.Sprintf("ratelimit:%s:ip:%s", scope, e.RealIP())
}

func (r *RateLimiter) reject(scope string) {
	if r.OnReject != nil {
		r.OnReject(scope)
	}
}

func (r *RateLimiter) isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
