package util

import (
	"github.com/gin-gonic/gin"
)

// Context keys set by middleware
const (
	CallerIDKey  = "caller_id"
	RequestIDKey = "request_id"
)

// GetCallerIDFromContext returns the caller identity set by the identity
// middleware, falling back to the client IP when it never ran.
func GetCallerIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(CallerIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "ip:" + c.ClientIP()
}

// GetRequestIDFromContext returns the request id or an empty string
func GetRequestIDFromContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
