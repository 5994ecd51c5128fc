package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/session"
)

// SessionService is the session gate as seen by the API.
type SessionService interface {
	State() (session.State, string)
	Setup(ctx context.Context, email string, password, confirm []byte) (string, error)
	Login(ctx context.Context, password []byte) (string, error)
}

type TokenIssuer interface {
	Issue(email string) (string, error)
}

type SessionHandler struct {
	Session SessionService
	Tokens  TokenIssuer
}

type sessionResponse struct {
	State string `json:"state"`
	Email string `json:"email,omitempty"`
}

type setupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// State reports whether the device needs setup, needs login or is unlocked.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	state, email := h.Session.State()
	writeJSON(w, http.StatusOK, sessionResponse{State: state.String(), Email: email})
}

// Setup creates the device identity and returns a token for it.
func (h *SessionHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.ErrMissingFields)
		return
	}

	password, confirm := []byte(req.Password), []byte(req.ConfirmPassword)
	defer common.WipeByteArray(password)
	defer common.WipeByteArray(confirm)

	email, err := h.Session.Setup(r.Context(), req.Email, password, confirm)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondToken(w, email)
}

// Login verifies the password and returns a token.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.ErrMissingFields)
		return
	}

	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	email, err := h.Session.Login(r.Context(), password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondToken(w, email)
}

func (h *SessionHandler) respondToken(w http.ResponseWriter, email string) {
	token, err := h.Tokens.Issue(email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, Email: email})
}
