// Package completion proxies single-turn prompts to the OpenRouter chat
// completions API.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"chatbox-backend/internal/logging"
)

const (
	systemInstruction = "You are a helpful assistant."
	maxTokens         = 1000
	temperature       = 0.7

	unknownErrorMessage = "Unknown AI service error"
)

var (
	ErrInvalidPrompt   = errors.New("prompt is required")
	ErrUpstream        = errors.New("ai service failed")
	ErrUpstreamTimeout = errors.New("ai service timed out")
)

// UpstreamError carries the normalized, human-readable provider failure.
// errors.Is matches ErrUpstreamTimeout or ErrUpstream depending on Timeout.
type UpstreamError struct {
	Message    string
	StatusCode int
	Timeout    bool
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error {
	if e.Timeout {
		return ErrUpstreamTimeout
	}
	return ErrUpstream
}

// Config describes the provider endpoint and request shaping.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Referer string
	Title   string
	Timeout time.Duration
}

// Gateway issues one provider call per Complete. It never retries.
type Gateway struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

func NewGateway(cfg Config, logger *slog.Logger) *Gateway {
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logging.Component(logger, "completion"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as the sole user turn and returns the first choice's text.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidPrompt
	}
	if g.cfg.APIKey == "" {
		g.log.ErrorContext(ctx, "completion requested without an API key")
		return "", &UpstreamError{Message: "OPENROUTER_API_KEY is missing"}
	}

	body, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", g.cfg.Referer)
	req.Header.Set("X-Title", g.cfg.Title)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		upErr := &UpstreamError{Message: normalizeMessage(nil, err.Error()), Timeout: isTimeout(err)}
		g.log.ErrorContext(ctx, "completion request failed", "error", err, "timeout", upErr.Timeout, "elapsed", time.Since(start))
		return "", upErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		upErr := &UpstreamError{Message: normalizeMessage(nil, err.Error()), StatusCode: resp.StatusCode, Timeout: isTimeout(err)}
		g.log.ErrorContext(ctx, "reading completion response failed", "error", err)
		return "", upErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		transport := fmt.Sprintf("request failed with status code %d", resp.StatusCode)
		upErr := &UpstreamError{Message: normalizeMessage(raw, transport), StatusCode: resp.StatusCode}
		g.log.ErrorContext(ctx, "completion provider returned error", "status", resp.StatusCode, "message", upErr.Message)
		return "", upErr
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &UpstreamError{Message: normalizeMessage(nil, "decoding completion response: "+err.Error()), StatusCode: resp.StatusCode}
	}
	if len(out.Choices) == 0 {
		return "", &UpstreamError{Message: "AI service returned no completions", StatusCode: resp.StatusCode}
	}

	g.log.DebugContext(ctx, "completion succeeded", "elapsed", time.Since(start), "model", g.cfg.Model)
	return out.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
