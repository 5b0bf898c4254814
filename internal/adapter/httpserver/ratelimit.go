package httpserver

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/salvadorquinn/studynet/internal/adapter/metrics"
	"github.com/salvadorquinn/studynet/internal/platform/ratelimit"
)

const rateLimiterExpiry = 5 * time.Minute

// newRateLimiter is the per-IP token bucket applied to all traffic. It keeps
// a single client from flooding the server regardless of endpoint.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitDecisions.WithLabelValues("ip", "rejected").Inc()
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		},
	})
}

// slidingWindowLimit guards an abuse-prone action with an exact
// per-IP sliding window. Rejections carry a Retry-After header so
// well-behaved clients can back off precisely.
func slidingWindowLimit(scope string, limiter *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			allowed := limiter.Allow(key)
			metrics.RateLimiterTrackedKeys.WithLabelValues(scope).Set(float64(limiter.Keys()))
			if allowed {
				metrics.RateLimitDecisions.WithLabelValues(scope, "allowed").Inc()
				return next(c)
			}

			metrics.RateLimitDecisions.WithLabelValues(scope, "rejected").Inc()
			wait := limiter.RemainingWait(key)
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
			return c.JSON(http.StatusTooManyRequests, map[string]any{
				"error":       "too many requests",
				"retry_after": seconds,
			})
		}
	}
}
