package server

import (
	"encoding/json"
	"net/http"

	"github.com/mfairley/apiguard/internal/validate"
)

// Envelope is the JSON body shape shared by every pipeline response.
type Envelope struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message,omitempty"`
	MessageTH string                `json:"messageTH,omitempty"`
	Errors    []validate.FieldError `json:"errors,omitempty"`
	Data      any                   `json:"data,omitempty"`
	// RetryAfter is seconds until the rate window resets, on 429 only.
	RetryAfter int64 `json:"retryAfter,omitempty"`
}

// WriteJSON serializes env with the given status. Serialization failures are
// unrecoverable at this point; the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteOK writes a 200 success envelope around data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteError writes a failure envelope with the given status and messages.
func WriteError(w http.ResponseWriter, status int, message, messageTH string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message, MessageTH: messageTH})
}
