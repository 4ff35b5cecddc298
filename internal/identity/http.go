// ABOUTME: HTTP handlers for the /auth endpoints (register, login)
// ABOUTME: Responses use the same {success, data?, msg?} envelope as the socket

package identity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/2389/ripple/internal/store"
)

// Handler serves the REST authentication endpoints. Everything after login
// happens over the websocket; these two endpoints are the only unauthenticated
// surface.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates the auth HTTP handler. Pass nil logger for default.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger.With("component", "auth-http"),
	}
}

// Register mounts the auth routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool               `json:"success"`
	Token   string             `json:"token,omitempty"`
	User    *store.UserProfile `json:"user,omitempty"`
	Msg     string             `json:"msg,omitempty"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "name, email, and password are required")
		return
	}

	profile, token, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			h.writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("registration failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.writeJSON(w, http.StatusCreated, authResponse{Success: true, Token: token, User: profile})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.writeJSON(w, http.StatusOK, authResponse{Success: true, Token: token, User: profile})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body authResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, authResponse{Success: false, Msg: msg})
}
