package handlers

import (
	"chatbox-backend/internal/auth"
	"chatbox-backend/internal/logging"
	db_models "chatbox-backend/internal/models"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// GoogleLoginService runs the federated credential path.
type GoogleLoginService interface {
	LoginWithGoogle(ctx context.Context, profile *auth.GoogleProfile) (string, *db_models.User, error)
}

type GoogleAuthHandler struct {
	provider    auth.GoogleProvider
	authService GoogleLoginService
	frontendURL string
	log         *slog.Logger
}

func NewGoogleAuthHandler(provider auth.GoogleProvider, svc GoogleLoginService, frontendURL string, logger *slog.Logger) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		provider:    provider,
		authService: svc,
		frontendURL: frontendURL,
		log:         logging.Component(logger, "google_auth_handler"),
	}
}

// HandleGoogleLogin handles GET /api/auth/google by redirecting to the consent screen.
func (h *GoogleAuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// HandleGoogleCallback handles GET /api/auth/google/callback and sends the
// browser back to the frontend with either a token or an error marker.
func (h *GoogleAuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r)

	// the state cookie is single use
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/api/auth/google", MaxAge: -1, HttpOnly: true})

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		log.WarnContext(r.Context(), "google consent denied", "error", e)
		h.redirectFailure(w, r)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		log.WarnContext(r.Context(), "oauth state mismatch")
		h.redirectFailure(w, r)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.redirectFailure(w, r)
		return
	}

	profile, err := h.provider.FetchProfile(r.Context(), code)
	if err != nil {
		log.ErrorContext(r.Context(), "fetching google profile failed", "error", err)
		h.redirectFailure(w, r)
		return
	}

	token, user, err := h.authService.LoginWithGoogle(r.Context(), profile)
	if err != nil {
		log.ErrorContext(r.Context(), "google login failed", "error", err)
		h.redirectFailure(w, r)
		return
	}

	log.InfoContext(r.Context(), "google login succeeded", "user_id", user.ID)
	http.Redirect(w, r, h.frontendURL+"/?token="+url.QueryEscape(token), http.StatusFound)
}

func (h *GoogleAuthHandler) redirectFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.frontendURL+"/?error=oauth_failed", http.StatusFound)
}
