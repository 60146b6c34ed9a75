package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phaseline/phaseline/internal/platform/logging"
)

// Logging returns middleware that emits request started/completed events.
// It derives a child logger carrying the request and correlation IDs,
// stores it in the context via logging.WithLogger for handlers to pick up,
// and records method, path, status, and duration on completion. Request
// headers are logged at debug level after redaction.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			child := logger.With(
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("correlation_id", CorrelationIDFromContext(ctx)),
			)
			ctx = logging.WithLogger(ctx, child)

			child.InfoContext(ctx, "request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			logHeadersAtDebug(ctx, child, r.Header)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			child.InfoContext(ctx, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

func logHeadersAtDebug(ctx context.Context, logger *slog.Logger, headers http.Header) {
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := RedactHeaders(headers)
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	logger.DebugContext(ctx, "request headers", args...)
}
