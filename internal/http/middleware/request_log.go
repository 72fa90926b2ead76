package middleware

import (
	"time"

	"todo_api/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestLogger tags every request with an id, stores a request scoped
// logger in the request context and writes one access log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		c.Set(RequestIDKey, reqID)
		c.Header(RequestIDHeader, reqID)

		l := logger.With(RequestIDKey, reqID)
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), l))

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", routeLabel(c),
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			l.Error("http request", args...)
		case status >= 400:
			l.Warn("http request", args...)
		default:
			l.Info("http request", args...)
		}
	}
}
