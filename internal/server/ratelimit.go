package server

import (
	"net/http"
	"strconv"

	"github.com/mfairley/apiguard/internal/ratelimit"
)

// KeyFunc derives the rate-limit key from a request. The default keys on
// client IP; deployments behind NAT or proxies can substitute an API-key or
// session-based extractor.
type KeyFunc func(r *http.Request) string

// RateLimitMiddleware enforces a fixed-window limit per key. Rate headers are
// emitted on every response, allowed or not; rejections get a 429 envelope
// with the retry-after duration in seconds.
func RateLimitMiddleware(limiter *ratelimit.Limiter, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = func(r *http.Request) string { return ClientIP(r) }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Check(key(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

			if !res.Allowed {
				retryAfter := int64(res.RetryAfter.Seconds())
				h.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				WriteJSON(w, http.StatusTooManyRequests, Envelope{
					Success:    false,
					Message:    res.Message,
					MessageTH:  "มีคำขอมากเกินไป กรุณาลองใหม่ภายหลัง",
					RetryAfter: retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
