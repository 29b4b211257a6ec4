package handlers

import (
	"chatbox-backend/internal/completion"
	"chatbox-backend/internal/logging"
	api_models "chatbox-backend/internal/models"
	"chatbox-backend/pkg/httputil"
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// Completer produces a single reply for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type AIHandler struct {
	completer Completer
	log       *slog.Logger
}

func NewAIHandler(c Completer, logger *slog.Logger) *AIHandler {
	return &AIHandler{completer: c, log: logging.Component(logger, "ai_handler")}
}

// HandleChat handles POST /api/ai/chat. It needs no authentication.
func (h *AIHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req api_models.CompletionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.completer.Complete(r.Context(), req.Prompt)
	if err != nil {
		detail := err.Error()
		var upErr *completion.UpstreamError
		if errors.As(err, &upErr) {
			detail = upErr.Message
		}

		switch {
		case errors.Is(err, completion.ErrInvalidPrompt):
			httputil.RespondError(w, http.StatusBadRequest, "Prompt is required")
		case errors.Is(err, completion.ErrUpstreamTimeout):
			requestLogger(h.log, r).WarnContext(r.Context(), "completion timed out", "error", detail)
			httputil.RespondErrorDetail(w, http.StatusInternalServerError, "AI service timed out", detail)
		default:
			requestLogger(h.log, r).ErrorContext(r.Context(), "completion failed", "error", detail)
			httputil.RespondErrorDetail(w, http.StatusInternalServerError, "AI service failed", detail)
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.CompletionResponse{Message: reply})
}
