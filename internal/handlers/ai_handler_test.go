package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatbox-backend/internal/completion"
	"chatbox-backend/internal/logging"

	"github.com/stretchr/testify/assert"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

func postChat(h *AIHandler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.HandleChat(rec, httptest.NewRequest(http.MethodPost, "/api/ai/chat", strings.NewReader(body)))
	return rec
}

func TestHandleChat_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"invalid prompt", completion.ErrInvalidPrompt, http.StatusBadRequest, `{"message":"Prompt is required"}`},
		{"timeout", &completion.UpstreamError{Message: "context deadline exceeded", Timeout: true}, http.StatusInternalServerError,
			`{"message":"AI service timed out","error":"context deadline exceeded"}`},
		{"upstream", &completion.UpstreamError{Message: "No auth credentials found", StatusCode: 401}, http.StatusInternalServerError,
			`{"message":"AI service failed","error":"No auth credentials found"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAIHandler(completerFunc(func(context.Context, string) (string, error) { return "", tc.err }), logging.Discard())
			rec := postChat(h, `{"prompt":"hi"}`)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestHandleChat_BadJSON(t *testing.T) {
	called := false
	h := NewAIHandler(completerFunc(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	}), logging.Discard())

	rec := postChat(h, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}
