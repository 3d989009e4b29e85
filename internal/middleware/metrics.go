package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus. Paths are labelled
// with the route template so /jurisdictions/:code stays one series.
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPActiveConnections.WithLabelValues(method, path).Inc()
		defer m.HTTPActiveConnections.WithLabelValues(method, path).Dec()

		if c.Request.ContentLength > 0 {
			m.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(c.Request.ContentLength))
		}

		writer := &metricsResponseWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		startTime := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(startTime).Seconds())
		if writer.written > 0 {
			m.HTTPResponseSize.WithLabelValues(method, path, status).Observe(float64(writer.written))
		}
		if c.Writer.Status() >= 500 {
			RecordError("server_error", path)
		}
	}
}

// RecordError counts an error against an endpoint
func RecordError(errorType, endpoint string) {
	metrics.Get().ErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// metricsResponseWriter counts bytes written
type metricsResponseWriter struct {
	gin.ResponseWriter
	written int
}

func (w *metricsResponseWriter) Write(data []byte) (int, error) {
	n, err := w.ResponseWriter.Write(data)
	w.written += n
	return n, err
}

func (w *metricsResponseWriter) WriteString(s string) (int, error) {
	n, err := w.ResponseWriter.WriteString(s)
	w.written += n
	return n, err
}
