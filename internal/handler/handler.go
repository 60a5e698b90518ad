// Package handler exposes the pipeline's logical endpoints: login, logout,
// the authenticated principal, and the status/metrics surface.
package handler

import (
	"net/http"

	"github.com/mfairley/apiguard/internal/auth"
	"github.com/mfairley/apiguard/internal/metrics"
	"github.com/mfairley/apiguard/internal/server"
	"github.com/mfairley/apiguard/internal/validate"
)

// LoginSchema validates the login payload. Mounted as validation middleware
// ahead of Login.
func LoginSchema() *validate.Schema {
	return validate.NewSchema(
		validate.Field{Name: "username", Required: true},
		validate.Field{Name: "password", Required: true},
	)
}

type Handler struct {
	auth    *auth.Authenticator
	metrics *metrics.Registry
}

func New(a *auth.Authenticator, reg *metrics.Registry) *Handler {
	return &Handler{auth: a, metrics: reg}
}

// Login exchanges credentials for a session token. The validation middleware
// has already guaranteed both fields are present.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	record := server.GetValidated(r.Context())
	username, _ := record["username"].(string)
	password, _ := record["password"].(string)

	sess, p, err := h.auth.Login(username, password)
	if err != nil {
		server.WriteError(w, http.StatusUnauthorized,
			"invalid username or password", "ชื่อผู้ใช้หรือรหัสผ่านไม่ถูกต้อง")
		return
	}

	server.WriteOK(w, map[string]any{
		"token": sess.Token,
		"user":  p,
	})
}

// Logout revokes the presented token. Revoking an absent or already revoked
// token succeeds; logout is idempotent.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(server.ExtractToken(r))
	server.WriteJSON(w, http.StatusOK, server.Envelope{
		Success:   true,
		Message:   "logged out",
		MessageTH: "ออกจากระบบแล้ว",
	})
}

// Me returns the authenticated principal and session attached by the auth
// middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := server.GetPrincipal(r.Context())
	sess, _ := server.GetSession(r.Context())

	server.WriteOK(w, map[string]any{
		"user":    p,
		"session": map[string]any{"createdAt": sess.CreatedAt},
	})
}

// Dashboard is the admin-only demonstration route behind RequireRole.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, _ := server.GetPrincipal(r.Context())
	server.WriteOK(w, map[string]any{
		"message": "welcome to the admin dashboard",
		"admin":   p.Username,
	})
}

// Status reports the process-lifetime request counters.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	server.WriteOK(w, h.metrics.Snapshot())
}
