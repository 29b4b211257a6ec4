package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"chatbox-backend/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, h http.HandlerFunc, timeout time.Duration) (*Gateway, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	g := NewGateway(Config{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		Model:   "openai/gpt-4o-mini",
		Referer: "http://localhost:5000",
		Title:   "ai-project",
		Timeout: timeout,
	}, logging.Discard())
	return g, &calls
}

func TestComplete_Success(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "http://localhost:5000", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "ai-project", r.Header.Get("X-Title"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "openai/gpt-4o-mini", req.Model)
		assert.Equal(t, 1000, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, chatMessage{Role: "system", Content: "You are a helpful assistant."}, req.Messages[0])
		assert.Equal(t, chatMessage{Role: "user", Content: "Hello"}, req.Messages[1])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hi there"}},{"message":{"content":"ignored"}}]}`))
	}, 5*time.Second)

	out, err := g.Complete(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", out)
}

func TestComplete_EmptyPromptNeverCallsOut(t *testing.T) {
	g, calls := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {}, time.Second)

	for _, p := range []string{"", "   ", "\n\t"} {
		_, err := g.Complete(context.Background(), p)
		assert.ErrorIs(t, err, ErrInvalidPrompt)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestComplete_MissingAPIKeyNeverCallsOut(t *testing.T) {
	g, calls := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {}, time.Second)
	g.cfg.APIKey = ""

	_, err := g.Complete(context.Background(), "Hello")
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "OPENROUTER_API_KEY is missing", upErr.Message)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrUpstreamTimeout)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestComplete_NoChoices(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, time.Second)

	_, err := g.Complete(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrUpstreamTimeout)
}

func TestComplete_ErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"structured error", http.StatusUnauthorized, `{"error":{"message":"No auth credentials found","code":401},"message":"outer"}`, "No auth credentials found"},
		{"string error", http.StatusBadRequest, `{"error":"model not found","message":"outer"}`, "model not found"},
		{"top level message", http.StatusTooManyRequests, `{"message":"rate limited"}`, "rate limited"},
		{"transport fallback", http.StatusBadGateway, `<html>bad gateway</html>`, "request failed with status code 502"},
		{"empty object", http.StatusInternalServerError, `{}`, "request failed with status code 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, calls := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, time.Second)

			_, err := g.Complete(context.Background(), "Hello")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUpstream)

			var upErr *UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, tc.want, upErr.Message)
			assert.Equal(t, tc.status, upErr.StatusCode)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "no retries")
		})
	}
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := g.Complete(context.Background(), "Hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamTimeout)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.True(t, upErr.Timeout)
	assert.NotEmpty(t, upErr.Message)
}

func TestNormalizeMessage_Fallback(t *testing.T) {
	assert.Equal(t, "Unknown AI service error", normalizeMessage(nil, ""))
	assert.Equal(t, "Unknown AI service error", normalizeMessage([]byte(`{"error":{}}`), " "))
	assert.Equal(t, "dial tcp: refused", normalizeMessage([]byte(`not json`), "dial tcp: refused"))
}
