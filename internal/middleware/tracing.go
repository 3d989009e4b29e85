package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/util"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware wraps otelgin and tags the server span with the request
// id, caller and any gin errors.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := util.GetRequestIDFromContext(c); requestID != "" {
			span.SetAttributes(attribute.String("request.id", requestID))
		}
		if callerID := c.GetString(util.CallerIDKey); callerID != "" {
			span.SetAttributes(attribute.String("caller.id", callerID))
		}
		if country := c.GetString(JurisdictionKey); country != "" {
			span.SetAttributes(attribute.String("analysis.jurisdiction", country))
		}
		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err)
				span.SetStatus(codes.Error, ginErr.Error())
			}
		}
	}
}
