package server

import (
	"net"
	"net/http"
	"time"

	"github.com/mfairley/apiguard/internal/logging"
	"github.com/mfairley/apiguard/internal/metrics"
)

// LoggingMiddleware logs each request at receipt and, via an explicit
// completion hook on the wrapped writer, again at completion with status and
// duration. Completed requests are also counted in the metrics registry.
// Either collaborator may be nil; the other still runs.
func LoggingMiddleware(reqLog *logging.RequestLogger, reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			client := ClientIP(r)
			requestID := GetRequestID(r.Context())

			if reqLog != nil {
				reqLog.LogReceipt(requestID, r.Method, r.URL.Path, client)
			}

			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			if reqLog != nil {
				reqLog.LogCompletion(logging.AccessRecord{
					Timestamp:  start,
					RequestID:  requestID,
					Method:     r.Method,
					Path:       r.URL.Path,
					Client:     client,
					Status:     wrapped.status,
					DurationMs: duration.Milliseconds(),
				})
			}

			if reg != nil {
				reg.Record(r.Method, r.URL.Path, wrapped.status)
			}
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush forwards Flush to the underlying ResponseWriter if it supports
// http.Flusher, preserving streaming responses.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// ClientIP derives the client identity from RemoteAddr. Mount chi's RealIP
// middleware ahead of this to honor X-Forwarded-For; clients behind a shared
// address share an identity, which is a deployment decision.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
