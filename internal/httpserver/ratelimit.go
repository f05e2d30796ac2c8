package httpserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

// RateCounter is the subset of the Redis client the limiter needs.
type RateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RateLimiter caps requests per client IP in fixed one-minute windows.
// Counter failures let the request through.
type RateLimiter struct {
	counter RateCounter
	limit   int
	logger  *slog.Logger
}

// NewRateLimiter constructs a limiter allowing limit requests per window.
func NewRateLimiter(counter RateCounter, limit int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{counter: counter, limit: limit, logger: logger}
}

// Middleware wraps next with the limit check.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := "rate_limit:" + clientIP(r)

		count, err := l.counter.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn("rate limiter unavailable", "err", err, "request_id", RequestIDFromContext(ctx))
			next.ServeHTTP(w, r)
			return
		}
		l.ensureExpiry(ctx, key, count)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max(int64(l.limit)-count, 0), 10))
		if count > int64(l.limit) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			writeProblem(w, r, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ensureExpiry starts the window on the first hit. A blocked key whose expire
// was lost is given one again so the client is not locked out for good.
func (l *RateLimiter) ensureExpiry(ctx context.Context, key string, count int64) {
	if count > 1 && count <= int64(l.limit) {
		return
	}
	if count > 1 {
		ttl, err := l.counter.TTL(ctx, key).Result()
		if err != nil || ttl >= 0 {
			return
		}
	}
	if err := l.counter.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
		l.logger.Warn("rate limiter expire failed", "err", err, "key", key)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
