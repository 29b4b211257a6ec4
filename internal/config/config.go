package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort        string
	DatabaseURL     string
	StoreDriver     string
	JWTSecret       string
	TokenExpiration time.Duration

	LogFormat string
	LogLevel  string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	OpenRouterReferer string
	OpenRouterTitle   string
	AITimeout         time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	FrontendURL        string

	AllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"https://chatbox-ai-c6q1.onrender.com",
	"https://chatbox-ai-five.vercel.app",
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
	}

	port := getEnv("HTTP_PORT", "")
	if port == "" {
		port = getEnv("PORT", "5000")
	}

	cfg := &Config{
		HTTPPort:    port,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		JWTSecret:   getEnv("JWT_SECRET", "default-super-secret-key"), // CHANGE THIS IN PRODUCTION!

		TokenExpiration: time.Hour * time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)),

		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		OpenRouterAPIKey:  getSecretEnv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: strings.TrimRight(getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterReferer: getEnv("OPENROUTER_REFERER", "http://localhost:5000"),
		OpenRouterTitle:   getEnv("OPENROUTER_TITLE", "ai-project"),
		AITimeout:         clampTimeout(getEnvInt("AI_TIMEOUT_SECONDS", 30)),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getSecretEnv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/auth/google/callback"),
		FrontendURL:        strings.TrimRight(getEnv("FRONTEND_URL", "https://chatbox-ai-five.vercel.app"), "/"),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", strings.Join(defaultOrigins, ","))),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getSecretEnv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Loaded config: Port=%s, Store=%s, DB_URL=***, TokenExp=%s, Model=%s, AITimeout=%s, GoogleOAuth=%t, Redis=%t",
		cfg.HTTPPort, cfg.StoreDriver, cfg.TokenExpiration, cfg.OpenRouterModel, cfg.AITimeout, cfg.GoogleEnabled(), cfg.RedisAddr != "")

	return cfg, nil
}

// Validate reports configuration that cannot start a server.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is not set")
		}
	case StoreDriverMemory:
	default:
		return errors.New("STORE_DRIVER must be 'postgres' or 'memory'")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.TokenExpiration <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	return nil
}

// GoogleEnabled reports whether the OAuth routes should be mounted.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// clampTimeout keeps the provider timeout within 1..60 seconds.
func clampTimeout(seconds int) time.Duration {
	if seconds < 1 {
		seconds = 1
	}
	if seconds > 60 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getSecretEnv is getEnv for values that must never be echoed.
func getSecretEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		log.Printf("Env variable %s is MISSING", key)
		return ""
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := getEnv(key, strconv.Itoa(fallback))
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return v
}
