package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// TimingMiddleware adds X-Response-Time and Server-Timing headers. Headers
// must be set before the body is flushed, so it hooks the first write.
func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: start}
		c.Next()
	}
}

type timingWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	elapsed := time.Since(w.start)
	h := w.ResponseWriter.Header()
	h.Set("X-Response-Time", elapsed.String())
	h.Set("Server-Timing", fmt.Sprintf("app;dur=%.2f", float64(elapsed.Microseconds())/1000))
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(data []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(data)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}
