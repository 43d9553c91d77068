package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/vicuna-trace/ledger/internal/api/shared/errors"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/ratelimit"
)

const (
	RATE_LIMIT_REMAINING_HEADER = "X-RateLimit-Remaining"
	RETRY_AFTER_HEADER          = "Retry-After"
)

// RateLimit budgets requests per route and caller. It must run after Auth so the
// authenticated subject is preferred over the client IP. A nil limiter disables limiting.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		caller := c.ClientIP()
		if subject, ok := c.Get(AUTH_SUBJECT_KEY); ok {
			if s, ok := subject.(string); ok && s != "" {
				caller = s
			}
		}
		key := c.FullPath() + ":" + caller

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				apierrors.New(apierrors.ErrCodeServiceUnavailable, "Rate limiter unavailable"))
			return
		}

		c.Header(RATE_LIMIT_REMAINING_HEADER, strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header(RETRY_AFTER_HEADER, strconv.Itoa(max(seconds, 1)))

			logger.WarnCtx(c.Request.Context(), "Rate limit exceeded",
				zap.String("path", c.Request.URL.Path),
				zap.String("caller", caller),
				zap.Duration("retry_after", decision.RetryAfter),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierrors.NewRateLimitedError("Too many requests"))
			return
		}

		c.Next()
	}
}
