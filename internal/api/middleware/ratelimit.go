package middleware

import (
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kopinusa/storefront/internal/api/metrics"
)

const (
	maxTrackedClients = 10000
	limiterIdleTTL    = 10 * time.Minute
)

// RateLimiter throttles requests per client IP with a token bucket each.
// Idle buckets are dropped after limiterIdleTTL.
type RateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
	log      zerolog.Logger
}

// NewRateLimiter allows perMinute requests per client, with bursts of up to
// perMinute/3 (at least 1).
func NewRateLimiter(perMinute int, log zerolog.Logger) *RateLimiter {
	burst := perMinute / 3
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, limiterIdleTTL),
		rate:     rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		log:      log,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.Add(key, l)
	return l
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if !rl.limiter(key).Allow() {
				rl.log.Warn().
					Str("client_ip", key).
					Str("path", c.Request().URL.Path).
					Msg("rate limit exceeded")
				if c.Request().URL.Path == "/auth/login" {
					metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
				}
				c.Response().Header().Set("Retry-After", "60")
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
			}
			return next(c)
		}
	}
}
