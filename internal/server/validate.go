package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfairley/apiguard/internal/validate"
)

// maxBodyBytes bounds the JSON body a validated route will parse.
const maxBodyBytes = 1 << 20

// ValidateMiddleware merges body, query and path-parameter fields (later
// sources overwrite earlier ones), validates the record against schema, and
// either short-circuits with a 400 envelope carrying the field errors or
// attaches the merged record to the request context.
func ValidateMiddleware(schema *validate.Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			record := validate.Merge(bodyFields(r), queryFields(r), pathFields(r))

			res := schema.Validate(record)
			if !res.Valid {
				WriteJSON(w, http.StatusBadRequest, Envelope{
					Success:   false,
					Message:   "validation failed",
					MessageTH: "ข้อมูลไม่ถูกต้อง",
					Errors:    res.Errors,
				})
				return
			}

			ctx := context.WithValue(r.Context(), validatedKey{}, record)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bodyFields(r *http.Request) map[string]any {
	fields := make(map[string]any)
	if r.Body == nil {
		return fields
	}
	// A malformed or absent body simply contributes no fields; required
	// checks report the resulting gaps.
	_ = json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(&fields)
	return fields
}

func queryFields(r *http.Request) map[string]any {
	fields := make(map[string]any)
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			fields[k] = vs[len(vs)-1]
		}
	}
	return fields
}

func pathFields(r *http.Request) map[string]any {
	fields := make(map[string]any)
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if k != "" && k != "*" {
				fields[k] = rctx.URLParams.Values[i]
			}
		}
	}
	return fields
}
