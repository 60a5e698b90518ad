package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDMiddleware tags each request with a unique ID, stored in context
// and echoed in the X-Request-ID response header so log records and client
// reports can be correlated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
