// Package logging implements request/response logging: a structured receipt
// line, a completion record with timing written to a colored console line and
// a daily NDJSON access log, a separate daily error log for pipeline
// failures, and a slow-request warning.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// DefaultSlowThreshold is the elapsed time beyond which a request is flagged
// as slow.
const DefaultSlowThreshold = time.Second

// AccessRecord is one completed request. Write-once, append-only.
type AccessRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"requestId,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Client     string    `json:"client"`
	Status     int       `json:"status"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}

// ErrorRecord is one pipeline failure, written to the error stream with full
// detail; the caller sends only a sanitized message to the client.
type ErrorRecord struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Client    string    `json:"client"`
	Error     string    `json:"error"`
	Stack     string    `json:"stack,omitempty"`
	Principal string    `json:"principal,omitempty"`
}

// Options configures a RequestLogger. Zero values get defaults; a nil Access
// or Errors sink disables file persistence for that stream.
type Options struct {
	Logger        *slog.Logger
	Access        io.Writer
	Errors        io.Writer
	Console       io.Writer
	SlowThreshold time.Duration
}

// RequestLogger writes the access and error streams. Safe for concurrent use
// as long as its sinks are.
type RequestLogger struct {
	logger        *slog.Logger
	access        io.Writer
	errors        io.Writer
	console       io.Writer
	slowThreshold time.Duration
}

// New builds a RequestLogger from opts.
func New(opts Options) *RequestLogger {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = DefaultSlowThreshold
	}
	return &RequestLogger{
		logger:        opts.Logger,
		access:        opts.Access,
		errors:        opts.Errors,
		console:       opts.Console,
		slowThreshold: opts.SlowThreshold,
	}
}

// LogReceipt emits the basic one-line-per-request entry at receipt time.
func (l *RequestLogger) LogReceipt(requestID, method, path, client string) {
	l.logger.Info("request received",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("client", client),
	)
}

// LogCompletion writes the detailed completion record: a colored console
// line and one NDJSON line appended to the access stream. File write
// failures are logged, never surfaced to the request.
func (l *RequestLogger) LogCompletion(rec AccessRecord) {
	fmt.Fprintf(l.console, "%s[%s] %s %s %d %dms%s\n",
		statusColor(rec.Status),
		rec.Timestamp.Format(time.RFC3339),
		rec.Method, rec.Path, rec.Status, rec.DurationMs,
		colorReset,
	)

	l.appendJSON(l.access, rec)

	if time.Duration(rec.DurationMs)*time.Millisecond > l.slowThreshold {
		l.logger.Warn("slow request",
			slog.String("request_id", rec.RequestID),
			slog.String("method", rec.Method),
			slog.String("path", rec.Path),
			slog.Int64("duration_ms", rec.DurationMs),
			slog.Duration("threshold", l.slowThreshold),
		)
	}
}

// LogError writes a pipeline failure to the error stream.
func (l *RequestLogger) LogError(rec ErrorRecord) {
	l.logger.Error("request failed",
		slog.String("request_id", rec.RequestID),
		slog.String("method", rec.Method),
		slog.String("path", rec.Path),
		slog.String("error", rec.Error),
	)
	l.appendJSON(l.errors, rec)
}

func (l *RequestLogger) appendJSON(sink io.Writer, rec any) {
	if sink == nil {
		return
	}
	line, err := json.Marshal(rec)
	if err != nil {
		l.logger.Error("marshal log record", slog.String("error", err.Error()))
		return
	}
	if _, err := sink.Write(append(line, '\n')); err != nil {
		l.logger.Error("append log record", slog.String("error", err.Error()))
	}
}

const (
	colorReset  = "\x1b[0m"
	colorGreen  = "\x1b[32m"
	colorCyan   = "\x1b[36m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
)

func statusColor(status int) string {
	switch {
	case status >= 500:
		return colorRed
	case status >= 400:
		return colorYellow
	case status >= 300:
		return colorCyan
	default:
		return colorGreen
	}
}
