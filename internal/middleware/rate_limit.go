package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client IP may stay silent before its bucket is
// dropped. It is well past the refill time of any sane import limit.
const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter hands out one token bucket per client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter allows perMinute requests per IP with the given burst.
// A non-positive perMinute disables limiting.
func NewIPRateLimiter(perMinute float64, burst int) *IPRateLimiter {
	return newIPRateLimiter(perMinute, burst, limiterIdleTTL)
}

func newIPRateLimiter(perMinute float64, burst int, idle time.Duration) *IPRateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(perMinute / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: cache.New(idle, idle),
		limit:    limit,
		burst:    burst,
	}
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters.Get(ip)
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-set on every hit so the idle timer restarts.
	l.limiters.SetDefault(ip, limiter)
	return limiter.(*rate.Limiter)
}

// Middleware rejects requests over the limit with 429
func (l *IPRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.limiter(c.RealIP()).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many import requests, try again later")
			}
			return next(c)
		}
	}
}
