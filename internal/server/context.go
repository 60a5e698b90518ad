package server

import (
	"context"

	"github.com/mfairley/apiguard/internal/auth"
)

// Request-scoped context keys. Each middleware attaches derived data here for
// later stages; the values are discarded with the request.
type (
	requestIDKey      struct{}
	principalKey      struct{}
	sessionKey        struct{}
	tokenKey          struct{}
	validatedKey      struct{}
	principalTrackKey struct{}
)

// principalTrack is a mutable holder installed by the recover stage before
// per-route auth runs. Auth middleware attaches the principal to a derived
// context that outer stages never see; writing it into this shared holder
// lets the recover stage name the authenticated principal in error records.
type principalTrack struct {
	principal auth.Principal
	set       bool
}

// trackPrincipal installs a fresh holder and returns it with the derived
// context.
func trackPrincipal(ctx context.Context) (context.Context, *principalTrack) {
	track := &principalTrack{}
	return context.WithValue(ctx, principalTrackKey{}, track), track
}

// observePrincipal records p in the holder, if one is installed upstream.
func observePrincipal(ctx context.Context, p auth.Principal) {
	if track, ok := ctx.Value(principalTrackKey{}).(*principalTrack); ok {
		track.principal = p
		track.set = true
	}
}

// GetRequestID retrieves the request ID from context, or "" if the request
// ID middleware is not mounted.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// GetPrincipal retrieves the authenticated principal attached by RequireAuth.
// The second return is false on unauthenticated requests.
func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(auth.Principal)
	return p, ok
}

// GetSession retrieves the session attached by RequireAuth.
func GetSession(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok
}

// GetToken retrieves the raw bearer token attached by RequireAuth.
func GetToken(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// GetValidated retrieves the merged, validated record attached by
// ValidateMiddleware on success. Nil if validation did not run.
func GetValidated(ctx context.Context) map[string]any {
	rec, _ := ctx.Value(validatedKey{}).(map[string]any)
	return rec
}
