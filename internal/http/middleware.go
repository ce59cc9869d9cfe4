// Package http provides the API HTTP server, its middleware, and the
// standalone metrics server.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// LoggerMiddleware logs each request with method, path, status, duration and
// the request id assigned by the requestid middleware.
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if logger != nil {
			logger.Info("http request",
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.Int("status", c.Writer.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", c.ClientIP()),
				slog.String("request_id", requestid.Get(c)),
			)
		}
	}
}

// RecoveryMiddleware recovers from panics and returns a JSON 500 response.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		if logger != nil {
			logger.Error("panic recovered",
				slog.Any("error", err),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
			)
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
	})
}
