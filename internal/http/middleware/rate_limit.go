package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ataurwd/vps-backend-server/internal/logger"
)

// RateLimit throttles by client IP using an in-memory store. The format
// is ulule's "count-period", e.g. "100-M".
func RateLimit(format string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		logger.Log.WithError(err).Warn("invalid rate limit format, limiting disabled")
		return func(c *gin.Context) { c.Next() }
	}

	instance := limiter.New(memory.NewStore(), rate)

	return func(c *gin.Context) {
		limiterCtx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if limiterCtx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
