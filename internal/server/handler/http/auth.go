// Package http provides the HydroPal REST API: routing and the handlers for
// authentication, tracking entries and water statistics.
package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/atinyakov/HydroPal/internal/middleware"
	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/atinyakov/HydroPal/internal/service"
)

// AuthService defines the authentication operations required by the
// AuthHandler.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.PublicUser, error)
}

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	AuthService AuthService
	Responder
}

// RegisterRequest is the JSON payload of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

// LoginRequest is the JSON payload of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (req *RegisterRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
}

func (req *LoginRequest) normalize() {
	req.Email = strings.TrimSpace(req.Email)
}

// Register creates an account and answers 201 with a token and the user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, r, err, failure{})
		return
	}

	res, err := h.AuthService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to register user"})
		return
	}
	ok(w, http.StatusCreated, map[string]any{"token": res.Token, "user": res.User})
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, r, err, failure{})
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.Error(w, r, err, failure{Internal: "Failed to authenticate user"})
		return
	}
	ok(w, http.StatusOK, map[string]any{"token": res.Token, "user": res.User})
}

// Profile returns the authenticated user's public profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	user, err := h.AuthService.Profile(r.Context(), id.UserID)
	if err != nil {
		h.Error(w, r, err, failure{NotFound: "User not found", Internal: "Failed to fetch user profile"})
		return
	}
	ok(w, http.StatusOK, map[string]any{"user": user})
}
