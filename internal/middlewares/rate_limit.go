package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sbilibin2017/chat-forum/internal/logger"
)

//go:generate mockgen -source=rate_limit.go -destination=rate_limit_mock.go -package=middlewares

// RateCounter increments a fixed-window counter and reports the hits in the
// current window and the time until it resets.
type RateCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitConfig defines rate limiting parameters.
type RateLimitConfig struct {
	Requests int64
	Window   time.Duration
}

// RateLimitMiddleware allows cfg.Requests per client IP and scope in each
// window and answers 429 beyond that. When the counter fails the request is
// let through.
func RateLimitMiddleware(counter RateCounter, scope string, cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := scope + ":" + clientIP(r)

			count, resetIn, err := counter.Increment(ctx, key, cfg.Window)
			if err != nil {
				logger.FromContext(ctx).Warnw("rate limiter unavailable, allowing request", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.Requests - count
			if remaining < 0 {
				remaining = 0
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(cfg.Requests, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10))

			if count > cfg.Requests {
				retryAfter := int64((resetIn + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				rateLimitedTotal.WithLabelValues(scope).Inc()
				logger.FromContext(ctx).Infow("rate limit exceeded", "key", key, "count", count)
				writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. Proxy headers are resolved
// earlier by chi's RealIP middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
