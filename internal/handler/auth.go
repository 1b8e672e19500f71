package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/geodata-manager/internal/auth"
	"github.com/sakif/geodata-manager/internal/model"
	"github.com/sakif/geodata-manager/internal/service"
)

// AuthHandler serves registration, login, and the account endpoint.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	envelope
	User *model.User `json:"user"`
}

type loginResponse struct {
	envelope
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// HandleRegister creates a new account.
//
// POST /api/users/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid JSON body"})
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		envelope: envelope{Success: true, Message: "user registered successfully"},
		User:     user,
	})
}

// HandleLogin checks credentials and returns a signed token.
//
// POST /api/users/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid JSON body"})
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		envelope: envelope{Success: true, Message: "login successful"},
		Token:    token,
		User:     user,
	})
}

// HandleAccount returns the authenticated user's profile.
//
// GET /api/users/account
func (h *AuthHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "token is required"})
		return
	}

	user, err := h.auth.Account(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		envelope: envelope{Success: true, Message: "account fetched successfully"},
		User:     user,
	})
}
