package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealradar/dealradar-backend/pkg/logger"
)

const (
	ContextRequestID = "request_id"
	ContextLogger    = "logger"
)

// RequestLogger tags every request with an ID, stores a scoped logger in
// the context, and logs completion with latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		reqLogger := logger.WithContext(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Set(ContextLogger, reqLogger)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		}

		switch {
		case status >= 500:
			reqLogger.Error("Request failed", nil, fields)
		case status >= 400:
			reqLogger.Warn("Request rejected", fields)
		default:
			reqLogger.Info("Request completed", fields)
		}
	}
}

// GetLoggerFromContext returns the request-scoped logger, falling back to
// the global one.
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if value, exists := c.Get(ContextLogger); exists {
		if l, ok := value.(*logger.Logger); ok {
			return l
		}
	}
	return logger.Get()
}
