package authority

import (
	"time"

	"github.com/dmitrijs2005/corral/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id, carried by the request
// context into handler logs, and logs its outcome.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "request_id", id))

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error(c.Request.Context(), "http request", args...)
		case c.Writer.Status() >= 400 && c.Writer.Status() != 403:
			logger.Warn(c.Request.Context(), "http request", args...)
		default:
			logger.Debug(c.Request.Context(), "http request", args...)
		}
	}
}
