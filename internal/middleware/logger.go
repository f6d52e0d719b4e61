package middleware

import (
	"log/slog"
	"time"

	"attendance/console/foundation/web"
)

// Logger writes one line per request and exposes the trace id to the client.
func Logger(log *slog.Logger) web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(c *web.Context) error {
			start := time.Now()
			c.Header("X-Trace-Id", c.TraceID)

			err := handler(c)

			log.Info("request",
				"trace_id", c.TraceID,
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", c.Writer.Status(),
				"latency", time.Since(start),
				"remote", c.ClientIP(),
			)

			return err
		}
	}
}
