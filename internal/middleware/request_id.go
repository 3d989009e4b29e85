package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zfogg/postcheck/internal/logger"
	"github.com/zfogg/postcheck/internal/util"
	"go.uber.org/zap"
)

// RequestIDMiddleware reuses an incoming X-Request-ID or generates one, and
// echoes it on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(util.RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		logger.Log.Debug("request started",
			logger.WithRequestID(requestID),
			logger.WithIP(c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}
