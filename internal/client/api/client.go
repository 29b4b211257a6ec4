// Package api is the HTTP client the terminal app uses to reach the backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chatbox-backend/internal/models"
)

// DefaultTimeout outlasts the server's longest completion call.
const DefaultTimeout = 70 * time.Second

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client calls the chat backend. token is consulted on every authenticated
// request so that sign-in and sign-out take effect immediately.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      func() string
}

func New(baseURL string, token func() string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		token:      token,
	}
}

func (c *Client) do(ctx context.Context, method, path string, authenticated bool, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if authenticated && c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env models.ErrorResponse
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message, apiErr.Detail = env.Message, env.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// --- Auth ---

func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", false,
		models.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", false,
		models.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.UserResponse, error) {
	var out models.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", true, nil, nil)
}

// GoogleLoginURL is the page a browser opens to start Google sign-in.
func (c *Client) GoogleLoginURL() string {
	return c.baseURL + "/api/auth/google"
}

// --- Completion ---

// Complete asks the backend for a reply to prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var out models.CompletionResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/chat", false, models.CompletionRequest{Prompt: prompt}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// --- Chats ---

func (c *Client) SaveChat(ctx context.Context, req models.SaveChatRequest) (*models.ChatResponse, error) {
	var out models.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/save", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListChats(ctx context.Context) ([]models.ChatSummary, error) {
	var out []models.ChatSummary
	if err := c.do(ctx, http.MethodGet, "/api/chat/my", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetChat(ctx context.Context, id string) (*models.ChatSummary, error) {
	var out models.ChatSummary
	if err := c.do(ctx, http.MethodGet, "/api/chat/"+url.PathEscape(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameChat(ctx context.Context, id, title string) (*models.ChatResponse, error) {
	return c.patchChat(ctx, id, "rename", models.RenameChatRequest{Title: title})
}

func (c *Client) TogglePin(ctx context.Context, id string) (*models.ChatResponse, error) {
	return c.patchChat(ctx, id, "pin", nil)
}

func (c *Client) ToggleArchive(ctx context.Context, id string) (*models.ChatResponse, error) {
	return c.patchChat(ctx, id, "archive", nil)
}

func (c *Client) patchChat(ctx context.Context, id, action string, in interface{}) (*models.ChatResponse, error) {
	var out models.ChatResponse
	if err := c.do(ctx, http.MethodPatch, "/api/chat/"+url.PathEscape(id)+"/"+action, true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteChat(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/chat/"+url.PathEscape(id), true, nil, nil)
}
