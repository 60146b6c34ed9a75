// Package middleware provides HTTP middleware for the inbound request pipeline.
//
// The chain processes requests in this order:
//
//	Recovery, RequestID, CorrelationID, OpenTelemetry, Logging, Timeout, Handler
//
// Each middleware is a func(http.Handler) http.Handler composable with Chain.
package middleware

import "net/http"

// responseWriter wraps http.ResponseWriter so the recovery, otel, and
// logging layers can observe the status code and body size after the
// handler ran.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader records the status code. Only the first call reaches the
// underlying writer.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.headerWritten = true
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write counts body bytes. Writing without an explicit WriteHeader marks the
// header as sent with the implicit 200.
func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap exposes the wrapped writer for http.ResponseController and
// interface assertions such as http.Flusher.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
