package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:5000", c.APIURL)
	assert.Equal(t, filepath.Join("/home/tester", ".chatbox", "session.json"), c.SessionFile)
	assert.Equal(t, 12*time.Millisecond, c.RevealDelay)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CHATBOX_API_URL", "https://chat.example.com/")
	t.Setenv("CHATBOX_SESSION_FILE", "/tmp/s.json")
	t.Setenv("CHATBOX_REVEAL_MS", "0")
	t.Setenv("CHATBOX_LOG_LEVEL", "debug")

	cfg := LoadConfig()

	assert.Equal(t, "https://chat.example.com", cfg.APIURL)
	assert.Equal(t, "/tmp/s.json", cfg.SessionFile)
	assert.Zero(t, cfg.RevealDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_IgnoresBadRevealDelay(t *testing.T) {
	t.Setenv("CHATBOX_REVEAL_MS", "fast")

	assert.Equal(t, 12*time.Millisecond, LoadConfig().RevealDelay)
}
