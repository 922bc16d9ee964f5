package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/services"
)

// AuthHandler handles authentication-related endpoints
type AuthHandler struct {
	authService *services.AuthService
	identity    *services.IdentityStore
	log         *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, identity *services.IdentityStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, identity: identity, log: log}
}

type loginResponse struct {
	Token string    `json:"token"`
	User  *api.User `json:"user"`
}

// Login signs in against the backend and hands out a dashboard token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.Credentials
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") || req.Password == "" {
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "Invalid email or password")
		return
	}

	user, err := h.authService.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeError(w, api.ErrNotAuthenticated)
		return
	}

	token, err := h.authService.CreateJWT(user.Email, user.Role)
	if err != nil {
		h.log.Error("failed to create JWT", zap.Error(err))
		writeErrorStatus(w, http.StatusInternalServerError, "internal", "Authentication error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.Registration
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "Name, email and password are required")
		return
	}
	if req.Password != req.PasswordConfirmation {
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "Passwords do not match")
		return
	}

	if err := h.authService.Register(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context()); err != nil {
		// the local session is gone either way
		h.log.Warn("logout finished with an error", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current user, fetching it when the store is empty.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.identity.Current()
	if user == nil {
		var err error
		if user, err = h.identity.Refresh(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	}
	if user == nil {
		writeError(w, api.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
