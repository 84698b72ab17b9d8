package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

// Limiter is the swappable counter behind the rate-limit middleware. Keys
// identify a client (IP plus route group). Implementations may be
// approximate; the limiter is a hardening layer, not part of auth
// correctness.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is an in-process Limiter keeping one token bucket per key.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates a limiter allowing roughly perWindow requests in
// each window per key, with stale entries cleaned up in the background.
func NewMemoryLimiter(perWindow int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(float64(perWindow) / window.Seconds()),
		burst:   perWindow,
	}
	go l.cleanup()
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow(), nil
}

func (l *MemoryLimiter) cleanup() {
	for {
		time.Sleep(10 * time.Minute)
		l.mu.Lock()
		for key, b := range l.buckets {
			if time.Since(b.lastSeen) > 10*time.Minute {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

// RedisLimiter is a fixed-window counter suitable for multi-instance
// deployments. The window is approximate by design.
type RedisLimiter struct {
	client    *redis.Client
	perWindow int
	window    time.Duration
}

// NewRedisLimiter creates a Redis-backed Limiter.
func NewRedisLimiter(client *redis.Client, perWindow int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, perWindow: perWindow, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, "ratelimit:"+key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.perWindow), nil
}

// RateLimit returns middleware that throttles requests per client IP using
// the given Limiter. Limiter failures fail open: throttling must never take
// down working endpoints.
func RateLimit(limiter Limiter, group string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			allowed, err := limiter.Allow(r.Context(), ip+":"+group)
			if err != nil {
				slog.Warn("rate limiter unavailable, allowing request", "error", err)
				allowed = true
			}
			if !allowed {
				writeJSONError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
