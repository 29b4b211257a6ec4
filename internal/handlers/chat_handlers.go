package handlers

import (
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/models"
	"chatbox-backend/internal/services"
	"chatbox-backend/pkg/httputil"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ChatService is the chat persistence surface the handlers need.
type ChatService interface {
	Save(ctx context.Context, userID string, req models.SaveChatRequest) (*models.Chat, error)
	List(ctx context.Context, userID string) ([]models.Chat, error)
	Get(ctx context.Context, userID, chatID string) (*models.Chat, error)
	Rename(ctx context.Context, userID, chatID, title string) (*models.Chat, error)
	TogglePin(ctx context.Context, userID, chatID string) (*models.Chat, error)
	ToggleArchive(ctx context.Context, userID, chatID string) (*models.Chat, error)
	Delete(ctx context.Context, userID, chatID string) error
}

// ChatHandlers handles HTTP requests related to chats.
type ChatHandlers struct {
	chatService ChatService
	log         *slog.Logger
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService ChatService, logger *slog.Logger) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		log:         logging.Component(logger, "chat_handler"),
	}
}

// respondChatError maps chat service errors to HTTP status codes.
// failMessage is the generic text used for unexpected failures.
func (h *ChatHandlers) respondChatError(w http.ResponseWriter, r *http.Request, failMessage string, err error) {
	switch {
	case errors.Is(err, services.ErrMessagesMissing),
		errors.Is(err, services.ErrInvalidMessage),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidChatID):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrChatNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		requestLogger(h.log, r).ErrorContext(r.Context(), failMessage, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, failMessage)
	}
}

// HandleSaveChat handles POST /api/chat/save.
func (h *ChatHandlers) HandleSaveChat(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req models.SaveChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	chat, err := h.chatService.Save(r.Context(), p.UserID, req)
	if err != nil {
		h.respondChatError(w, r, "Failed to save chat", err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.NewChatResponse(chat))
}

// HandleListMyChats handles GET /api/chat/my.
func (h *ChatHandlers) HandleListMyChats(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	chats, err := h.chatService.List(r.Context(), p.UserID)
	if err != nil {
		h.respondChatError(w, r, "Failed to fetch chats", err)
		return
	}

	resp := make([]models.ChatSummary, 0, len(chats))
	for i := range chats {
		resp = append(resp, models.NewChatSummary(&chats[i]))
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleGetChat handles GET /api/chat/{chatID}.
func (h *ChatHandlers) HandleGetChat(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	chat, err := h.chatService.Get(r.Context(), p.UserID, chi.URLParam(r, "chatID"))
	if err != nil {
		h.respondChatError(w, r, "Failed to load chat", err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.NewChatSummary(chat))
}

// HandleDeleteChat handles DELETE /api/chat/{chatID}.
func (h *ChatHandlers) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.chatService.Delete(r.Context(), p.UserID, chi.URLParam(r, "chatID")); err != nil {
		h.respondChatError(w, r, "Server error", err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.DeleteChatResponse{
		Success: true,
		Message: "Chat deleted successfully",
	})
}

// HandleRenameChat handles PATCH /api/chat/{chatID}/rename.
func (h *ChatHandlers) HandleRenameChat(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req models.RenameChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	chat, err := h.chatService.Rename(r.Context(), p.UserID, chi.URLParam(r, "chatID"), req.Title)
	if err != nil {
		h.respondChatError(w, r, "Rename failed", err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.NewChatResponse(chat))
}

// HandleTogglePin handles PATCH /api/chat/{chatID}/pin.
func (h *ChatHandlers) HandleTogglePin(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	chat, err := h.chatService.TogglePin(r.Context(), p.UserID, chi.URLParam(r, "chatID"))
	if err != nil {
		h.respondChatError(w, r, "Pin failed", err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.NewChatResponse(chat))
}

// HandleToggleArchive handles PATCH /api/chat/{chatID}/archive.
func (h *ChatHandlers) HandleToggleArchive(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	chat, err := h.chatService.ToggleArchive(r.Context(), p.UserID, chi.URLParam(r, "chatID"))
	if err != nil {
		h.respondChatError(w, r, "Archive failed", err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.NewChatResponse(chat))
}
