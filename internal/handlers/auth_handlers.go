package handlers

import (
	"chatbox-backend/internal/auth"
	"chatbox-backend/internal/logging"
	api_models "chatbox-backend/internal/models"
	db_models "chatbox-backend/internal/models"
	"chatbox-backend/internal/services"
	"chatbox-backend/pkg/httputil"
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// AuthService defines the interface expected from the auth service.
// This promotes loose coupling and testability.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, *db_models.User, error)
	Login(ctx context.Context, email, password string) (string, *db_models.User, error)
	Me(ctx context.Context, userID string) (*db_models.User, error)
	Logout(ctx context.Context, p auth.Principal) error
}

type AuthHandler struct {
	authService AuthService
	log         *slog.Logger
}

func NewAuthHandler(authSvc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authSvc,
		log:         logging.Component(logger, "auth_handler"),
	}
}

// respondAuthError maps auth service errors to HTTP status codes.
// Credential failures are all 400 so clients see one error class for bad input.
func (h *AuthHandler) respondAuthError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, services.ErrValidation.Error())
	case errors.Is(err, services.ErrUserAlreadyExists),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrInvalidCredentials):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		requestLogger(h.log, r).ErrorContext(r.Context(), op+" failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Server error")
	}
}

// HandleRegister handles the POST /api/auth/register request.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req api_models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondAuthError(w, r, "register", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.AuthResponse{
		Token: token,
		User:  api_models.NewUserResponse(user),
	})
}

// HandleLogin handles the POST /api/auth/login request.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req api_models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(w, r, "login", err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.AuthResponse{
		Token: token,
		User:  api_models.NewUserResponse(user),
	})
}

// HandleMe handles GET /api/auth/me.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Me(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.respondAuthError(w, r, "me", err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api_models.NewUserResponse(user))
}

// HandleLogout handles POST /api/auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.authService.Logout(r.Context(), p); err != nil {
		h.respondAuthError(w, r, "logout", err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
