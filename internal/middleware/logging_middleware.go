package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brokerage-api/internal/monitoring"
)

type LoggingMiddleware struct {
	logger  *logrus.Logger
	metrics monitoring.MetricsService
}

func NewLoggingMiddleware(logger *logrus.Logger, metrics monitoring.MetricsService) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger:  logger,
		metrics: metrics,
	}
}

// StructuredLogging logs every request with latency and status, and feeds
// the HTTP metrics.
func (m *LoggingMiddleware) StructuredLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		m.metrics.RecordHTTPRequest(c.Request.Method, path, status, latency)

		entry := m.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
		} else if status >= 500 {
			entry.Error("Request failed")
		} else if status >= 400 {
			entry.Warn("Request rejected")
		} else {
			entry.Info("Request completed")
		}
	}
}

// Recovery converts panics into 500 responses with a structured log entry
func (m *LoggingMiddleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				m.logger.WithFields(logrus.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
					"panic":  err,
				}).Error("Panic recovered")
				c.AbortWithStatusJSON(500, gin.H{
					"error":   "internal error",
					"code":    "INTERNAL_ERROR",
					"message": "An unexpected error occurred",
				})
			}
		}()
		c.Next()
	}
}
