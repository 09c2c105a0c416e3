package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-puzzle-api/internal/application/user"
	"github.com/go-puzzle-api/internal/domain"
)

// SessionHandler issues bearer tokens for existing users.
type SessionHandler struct {
	svc user.Service
}

func NewSessionHandler(svc user.Service) *SessionHandler { return &SessionHandler{svc: svc} }

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: token, User: u})
}
