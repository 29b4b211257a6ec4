package services

import (
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/models"
	"chatbox-backend/internal/store"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// maxDerivedTitleRunes bounds the title taken from the first user message.
const maxDerivedTitleRunes = 40

var (
	ErrChatNotFound    = errors.New("Chat not found")
	ErrForbidden       = errors.New("Not authorized")
	ErrInvalidChatID   = errors.New("Invalid chat ID")
	ErrMessagesMissing = errors.New("Messages array required")
	ErrInvalidMessage  = errors.New("Invalid message")
	ErrTitleRequired   = errors.New("Title required")
)

// ChatService handles chat-related business logic. Every operation is scoped
// to the authenticated user id.
type ChatService struct {
	store store.Store
	log   *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(s store.Store, logger *slog.Logger) *ChatService {
	return &ChatService{
		store: s,
		log:   logging.Component(logger, "chat_service"),
	}
}

// DeriveTitle returns the first 40 characters of the first user message,
// or the placeholder title when there is none.
func DeriveTitle(messages []models.Message) string {
	for _, m := range messages {
		if m.Type != models.RoleUser {
			continue
		}
		text := m.Text
		if r := []rune(text); len(r) > maxDerivedTitleRunes {
			text = string(r[:maxDerivedTitleRunes])
		}
		if strings.TrimSpace(text) == "" {
			break
		}
		return text
	}
	return models.DefaultChatTitle
}

func validateMessages(messages *[]models.Message) error {
	if messages == nil {
		return ErrMessagesMissing
	}
	for i, m := range *messages {
		if m.Type != models.RoleUser && m.Type != models.RoleAI {
			return fmt.Errorf("%w: message %d has type %q", ErrInvalidMessage, i, m.Type)
		}
		if m.Text == "" {
			return fmt.Errorf("%w: message %d has no text", ErrInvalidMessage, i)
		}
	}
	return nil
}

func parseChatID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidChatID
	}
	return id, nil
}

// mapStoreErr turns store.ErrNotFound into ErrChatNotFound and wraps everything else.
func mapStoreErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrChatNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Save creates a chat when req.ChatID is empty; otherwise it replaces the
// messages of the caller's chat with that id, creating it if missing.
// A chat id held by another user yields ErrChatNotFound and changes nothing.
func (s *ChatService) Save(ctx context.Context, userID string, req models.SaveChatRequest) (*models.Chat, error) {
	if err := validateMessages(req.Messages); err != nil {
		return nil, err
	}
	messages := *req.Messages

	title := strings.TrimSpace(req.Title)
	titleGiven := title != ""
	if !titleGiven {
		title = DeriveTitle(messages)
	}

	if strings.TrimSpace(req.ChatID) == "" {
		chat, err := s.store.CreateChat(ctx, store.CreateChatParams{
			ID:       uuid.New(),
			UserID:   userID,
			Title:    title,
			Messages: messages,
		})
		if err != nil {
			s.log.ErrorContext(ctx, "creating chat failed", "user_id", userID, "error", err)
			return nil, fmt.Errorf("failed to save chat: %w", err)
		}
		return chat, nil
	}

	id, err := parseChatID(req.ChatID)
	if err != nil {
		return nil, err
	}
	chat, err := s.store.UpsertChat(ctx, store.UpsertChatParams{
		ID:       id,
		UserID:   userID,
		Title:    title,
		SetTitle: titleGiven,
		Messages: messages,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.WarnContext(ctx, "save rejected for chat owned by another user", "user_id", userID, "chat_id", id)
		}
		return nil, mapStoreErr("failed to save chat", err)
	}
	return chat, nil
}

// List returns the caller's chats, most recently updated first.
func (s *ChatService) List(ctx context.Context, userID string) ([]models.Chat, error) {
	chats, err := s.store.ListChatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}
	return chats, nil
}

// Get returns one of the caller's chats. Another user's chat is reported as not found.
func (s *ChatService) Get(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}
	chat, err := s.store.GetChatByID(ctx, id, userID)
	if err != nil {
		return nil, mapStoreErr("failed to load chat", err)
	}
	return chat, nil
}

// Rename sets the title of one of the caller's chats.
func (s *ChatService) Rename(ctx context.Context, userID, chatID, title string) (*models.Chat, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	id, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}
	chat, err := s.store.UpdateChatTitle(ctx, id, userID, title)
	if err != nil {
		return nil, mapStoreErr("rename failed", err)
	}
	return chat, nil
}

func (s *ChatService) TogglePin(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}
	chat, err := s.store.ToggleChatPinned(ctx, id, userID)
	if err != nil {
		return nil, mapStoreErr("pin failed", err)
	}
	return chat, nil
}

func (s *ChatService) ToggleArchive(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}
	chat, err := s.store.ToggleChatArchived(ctx, id, userID)
	if err != nil {
		return nil, mapStoreErr("archive failed", err)
	}
	return chat, nil
}

// Delete looks the chat up by id alone and then checks ownership, unlike the
// other operations which look up by id and owner together.
func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	chat, err := s.store.GetChatByIDAnyOwner(ctx, id)
	if err != nil {
		return mapStoreErr("failed to load chat", err)
	}

	// Legacy rows written before ownership was recorded have no owner; any
	// authenticated user may delete them. Unify only after backfilling user_id.
	if chat.UserID != "" && chat.UserID != userID {
		s.log.WarnContext(ctx, "unauthorized delete attempt", "user_id", userID, "chat_id", id)
		return ErrForbidden
	}

	if err := s.store.DeleteChat(ctx, id); err != nil {
		return mapStoreErr("failed to delete chat", err)
	}
	s.log.InfoContext(ctx, "chat deleted", "user_id", userID, "chat_id", id, "legacy", chat.UserID == "")
	return nil
}
