// Package config loads settings for the terminal client.
//
// Values come from the environment, optionally seeded from a .env file in the
// working directory:
//
//	CHATBOX_API_URL        base URL of the backend (default http://localhost:5000)
//	CHATBOX_SESSION_FILE   where the signed-in session is kept
//	                       (default $HOME/.chatbox/session.json)
//	CHATBOX_REVEAL_MS      per-character reply animation delay in ms (default 12)
//	CHATBOX_LOG_LEVEL      debug, info, warn or error (default warn)
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL   = "http://localhost:5000"
	defaultRevealMS = 12
)

type Config struct {
	APIURL      string
	SessionFile string
	RevealDelay time.Duration
	LogLevel    string
}

// LoadDefaults populates c with values used when nothing is configured.
func (c *Config) LoadDefaults() {
	c.APIURL = defaultAPIURL
	c.SessionFile = defaultSessionFile()
	c.RevealDelay = defaultRevealMS * time.Millisecond
	c.LogLevel = "warn"
}

// LoadConfig applies defaults and overlays the environment. A missing .env
// file is not an error.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LoadDefaults()

	if v := strings.TrimSpace(os.Getenv("CHATBOX_API_URL")); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("CHATBOX_SESSION_FILE")); v != "" {
		cfg.SessionFile = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATBOX_REVEAL_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.RevealDelay = time.Duration(ms) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHATBOX_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".chatbox", "session.json")
	}
	return filepath.Join(home, ".chatbox", "session.json")
}
