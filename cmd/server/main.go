package main

import (
	"chatbox-backend/internal/api"
	"chatbox-backend/internal/auth"
	"chatbox-backend/internal/cache"
	"chatbox-backend/internal/completion"
	"chatbox-backend/internal/config"
	"chatbox-backend/internal/handlers"
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/services"
	"chatbox-backend/internal/store"
	"chatbox-backend/internal/store/memory"
	"chatbox-backend/internal/store/postgres"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting chatbox backend", "store", cfg.StoreDriver, "port", cfg.HTTPPort)

	// 2. Initialize the chat/user store
	dataStore, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 3. Optional Redis for token revocation
	redisClient := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if redisClient != nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, logout will not revoke tokens until it recovers", "error", err)
		}
		cancel()
		defer redisClient.Close()
	} else {
		logger.Info("REDIS_ADDR not set, token revocation disabled")
	}

	// 4. Initialize Services
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenExpiration)
	revoked := auth.NewRevocationList(redisClient)
	authService := services.NewAuthService(dataStore, issuer, revoked, logger)
	chatService := services.NewChatService(dataStore, logger)
	gateway := completion.NewGateway(completion.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.OpenRouterModel,
		Referer: cfg.OpenRouterReferer,
		Title:   cfg.OpenRouterTitle,
		Timeout: cfg.AITimeout,
	}, logger)

	// 5. Initialize Handlers
	routerDeps := api.RouterDependencies{
		AuthHandler:    handlers.NewAuthHandler(authService, logger),
		ChatHandler:    handlers.NewChatHandlers(chatService, logger),
		AIHandler:      handlers.NewAIHandler(gateway, logger),
		Tokens:         issuer,
		Revoked:        revoked,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.AITimeout + 10*time.Second,
		Logger:         logger,
	}
	if cfg.GoogleEnabled() {
		provider := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		routerDeps.GoogleAuthHandler = handlers.NewGoogleAuthHandler(provider, authService, cfg.FrontendURL, logger)
	}
	router := api.NewRouter(routerDeps)

	// 6. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// The write timeout must outlast the slowest completion call.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("could not listen", "addr", server.Addr, "error", err)
			os.Exit(1)
		}
	}()

	<-stopChan
	logger.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server graceful shutdown failed", "error", err)
		return
	}
	logger.Info("server shutdown complete")
}

// openStore builds the configured store.Store and returns its cleanup func.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbpool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, nil, err
	}
	if err := postgres.RunMigrations(ctx, dbpool); err != nil {
		dbpool.Close()
		return nil, nil, err
	}
	logger.Info("database connection pool established and migrated")

	return postgres.NewPostgresStore(dbpool, logger), dbpool.Close, nil
}
