package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status.
// It also places the component logger on the request context so that
// service code logging through logger.Info(ctx, ...) shares its fields.
func Logger(log *logger.Logger) gin.HandlerFunc {
	httpLog := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), httpLog))

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		entry := httpLog.WithContext(c.Request.Context())
		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			kv = append(kv, "error", errs)
		}

		switch {
		case status >= 500:
			entry.Errorw("http request", kv...)
		case status >= 400:
			entry.Warnw("http request", kv...)
		default:
			entry.Infow("http request", kv...)
		}
	}
}
