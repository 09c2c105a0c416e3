package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-puzzle-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ValidationEnvelope lists every rule a submitted record violated.
type ValidationEnvelope struct {
	Errors []string `json:"errors"`
}

// AuthEnvelope wraps login/register responses.
type AuthEnvelope struct {
	Bearer string       `json:"Bearer"`
	User   *domain.User `json:"user"`
}

// CreatedEnvelope is returned when a new record was stored.
type CreatedEnvelope struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
