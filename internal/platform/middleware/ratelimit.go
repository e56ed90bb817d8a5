package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig bounds request rates per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 100, BurstSize: 200}
}

// bucket is a token bucket refilled lazily on each take.
type bucket struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// take consumes one token. When the bucket is empty it reports the whole
// seconds to wait before a token becomes available again.
func (b *bucket) take(rate, burst float64) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * rate
	if b.tokens > burst {
		b.tokens = burst
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if rate <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/rate) + 1
}

// RateLimit applies a per-client-IP token bucket; rejections answer 429
// with a Retry-After hint.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*bucket)
	)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			mu.Lock()
			bkt, found := clients[ip]
			if !found {
				bkt = &bucket{tokens: float64(cfg.BurstSize), last: time.Now()}
				clients[ip] = bkt
			}
			mu.Unlock()

			allowed, retryAfter := bkt.take(cfg.RequestsPerSecond, float64(cfg.BurstSize))
			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
