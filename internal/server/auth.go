package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mfairley/apiguard/internal/auth"
)

// ExtractToken pulls the bearer token from the Authorization header, falling
// back to the token query parameter.
func ExtractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// RequireAuth authenticates the bearer token and attaches the principal,
// session and token to the request context. Failures short-circuit with a
// 401 envelope and never reach downstream handlers.
func RequireAuth(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			p, sess, err := a.Authenticate(token)
			if err != nil {
				msg, msgTH := authMessage(err)
				WriteError(w, http.StatusUnauthorized, msg, msgTH)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, principalKey{}, p)
			ctx = context.WithValue(ctx, sessionKey{}, sess)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			observePrincipal(ctx, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole authorizes the already-authenticated principal against the
// required role set. Mount after RequireAuth; an unauthenticated request
// fails with 401, a role mismatch with a 403 that names both the required
// roles and the caller's actual role.
func RequireRole(a *auth.Authenticator, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := GetPrincipal(r.Context())

			err := a.Authorize(p, roles)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			var forbidden *auth.ForbiddenError
			if errors.As(err, &forbidden) {
				WriteJSON(w, http.StatusForbidden, Envelope{
					Success:   false,
					Message:   "insufficient permissions",
					MessageTH: "สิทธิ์ไม่เพียงพอ",
					Data: map[string]any{
						"requiredRoles": forbidden.Required,
						"yourRole":      forbidden.Actual,
					},
				})
				return
			}

			msg, msgTH := authMessage(err)
			WriteError(w, http.StatusUnauthorized, msg, msgTH)
		})
	}
}

func authMessage(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "missing authentication token", "ไม่พบโทเค็นสำหรับยืนยันตัวตน"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid authentication token", "โทเค็นไม่ถูกต้อง"
	case errors.Is(err, auth.ErrSessionExpired):
		return "session expired, please log in again", "เซสชันหมดอายุ กรุณาเข้าสู่ระบบใหม่"
	case errors.Is(err, auth.ErrUnauthenticated):
		return "authentication required", "กรุณาเข้าสู่ระบบ"
	default:
		return fmt.Sprintf("authentication failed: %v", err), ""
	}
}
