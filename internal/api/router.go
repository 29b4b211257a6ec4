package api

import (
	"chatbox-backend/internal/handlers"
	"chatbox-backend/internal/logging"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler       *handlers.AuthHandler
	GoogleAuthHandler *handlers.GoogleAuthHandler
	ChatHandler       *handlers.ChatHandlers
	AIHandler         *handlers.AIHandler

	Tokens  TokenValidator
	Revoked RevocationChecker

	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	log := logging.Component(deps.Logger, "router")
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 90 * time.Second
	}

	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)                    // Inject request ID into context
	r.Use(middleware.RealIP)                       // Use X-Forwarded-For or X-Real-IP
	r.Use(middleware.Logger)                       // Access log per request
	r.Use(middleware.Recoverer)                    // Recover from panics, return 500
	r.Use(middleware.Timeout(deps.RequestTimeout)) // Set a request timeout

	// --- CORS Configuration ---
	// Credentialed requests are only honoured for the configured origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	requireAuth := JwtAuthMiddleware(deps.Tokens, deps.Revoked, logging.Component(deps.Logger, "auth_middleware"))

	r.Route("/api/auth", func(r chi.Router) {
		if deps.AuthHandler == nil {
			panic("AuthHandler dependency is nil in router setup")
		}
		r.Post("/register", deps.AuthHandler.HandleRegister)
		r.Post("/login", deps.AuthHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", deps.AuthHandler.HandleMe)
			r.Post("/logout", deps.AuthHandler.HandleLogout)
		})

		if deps.GoogleAuthHandler != nil {
			r.Get("/google", deps.GoogleAuthHandler.HandleGoogleLogin)
			r.Get("/google/callback", deps.GoogleAuthHandler.HandleGoogleCallback)
		} else {
			log.Warn("GoogleAuthHandler dependency is nil, skipping /api/auth/google routes")
		}
	})

	// --- Completion proxy (public) ---
	if deps.AIHandler != nil {
		r.Post("/api/ai/chat", deps.AIHandler.HandleChat)
	} else {
		log.Warn("AIHandler dependency is nil, skipping /api/ai routes")
	}

	// --- Chat persistence (JWT required) ---
	if deps.ChatHandler != nil {
		r.Route("/api/chat", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/save", deps.ChatHandler.HandleSaveChat)
			r.Get("/my", deps.ChatHandler.HandleListMyChats)
			r.Get("/{chatID}", deps.ChatHandler.HandleGetChat)
			r.Delete("/{chatID}", deps.ChatHandler.HandleDeleteChat)
			r.Patch("/{chatID}/rename", deps.ChatHandler.HandleRenameChat)
			r.Patch("/{chatID}/pin", deps.ChatHandler.HandleTogglePin)
			r.Patch("/{chatID}/archive", deps.ChatHandler.HandleToggleArchive)
		})
	} else {
		log.Warn("ChatHandler dependency is nil, skipping /api/chat routes")
	}

	return r
}
