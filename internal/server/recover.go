package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/mfairley/apiguard/internal/logging"
)

// RecoverMiddleware is the terminal error stage. A panic anywhere downstream
// is recorded in full (message, stack, authenticated principal) to the error
// log and answered with a sanitized 500 envelope. The 500 is counted once by
// the enclosing metrics recording, not here. A nil reqLog disables the error
// record but still recovers.
func RecoverMiddleware(reqLog *logging.RequestLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Per-route auth runs on a derived context downstream; the
			// holder lets it surface the principal back to this stage.
			ctx, track := trackPrincipal(r.Context())
			r = r.WithContext(ctx)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				principal := ""
				if track.set {
					principal = track.principal.Username
				}

				if reqLog != nil {
					reqLog.LogError(logging.ErrorRecord{
						Timestamp: time.Now(),
						RequestID: GetRequestID(r.Context()),
						Method:    r.Method,
						Path:      r.URL.Path,
						Client:    ClientIP(r),
						Error:     fmt.Sprintf("%v", rec),
						Stack:     string(debug.Stack()),
						Principal: principal,
					})
				}

				WriteError(w, http.StatusInternalServerError,
					"internal server error", "เกิดข้อผิดพลาดภายในเซิร์ฟเวอร์")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
