package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/logger"
	"github.com/zfogg/postcheck/internal/util"
	"go.uber.org/zap"
)

// GinLoggerMiddleware replaces gin.Logger with structured zap logging. 5xx
// responses log at error, 4xx at warn.
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		statusCode := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", statusCode),
			zap.Int("response_size", c.Writer.Size()),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if requestID := util.GetRequestIDFromContext(c); requestID != "" {
			fields = append(fields, logger.WithRequestID(requestID))
		}
		if callerID := c.GetString(util.CallerIDKey); callerID != "" {
			fields = append(fields, logger.WithCallerID(callerID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case statusCode >= 500:
			logger.Log.Error("HTTP request", fields...)
		case statusCode >= 400:
			logger.Log.Warn("HTTP request", fields...)
		default:
			logger.Log.Info("HTTP request", fields...)
		}
	}
}
