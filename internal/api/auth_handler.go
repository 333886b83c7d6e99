package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/realtorist/realtorist-api/internal/api/shared"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/realtorist/realtorist-api/internal/service/auth"
)

// AuthService is the part of auth.Service the handlers use.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.Token, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}

// AuthHandler handles admin authentication requests.
type AuthHandler struct {
	authService AuthService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
		logger:      logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /api/admin/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		// Malformed credentials get the same answer as wrong ones.
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Wrong email/password")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// ChangePassword handles POST /api/admin/auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ChangePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), req.OldPassword, req.Password); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}

	log.Info("admin password changed via API")
	w.WriteHeader(http.StatusNoContent)
}
