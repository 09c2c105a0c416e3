package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-puzzle-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogin_OK(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Login", mock.Anything, domain.CredentialsRequest{Username: "kari", Password: "correct horse battery"}).
		Return(&domain.User{UserID: "u1", Username: "kari"}, "tok", nil)
	h := NewSessionHandler(svc)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login",
		strings.NewReader(`{"username":"kari","password":"correct horse battery"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "tok", resp.Bearer)
	assert.Equal(t, "u1", resp.User.UserID)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized))
	h := NewSessionHandler(svc)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login",
		strings.NewReader(`{"username":"kari","password":"wrong password"}`)))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin_MalformedBody(t *testing.T) {
	h := NewSessionHandler(&mockUserSvc{})

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login", strings.NewReader("username=kari")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
