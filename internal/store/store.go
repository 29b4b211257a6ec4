package store

import (
	db_models "chatbox-backend/internal/models"
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("record already exists")

// CreateChatParams contains parameters for creating a chat.
type CreateChatParams struct {
	ID       uuid.UUID
	UserID   string
	Title    string
	Messages []db_models.Message
}

// UpsertChatParams contains parameters for the save-by-id path.
// Title is only written to an existing row when SetTitle is true;
// a newly inserted row always receives Title.
type UpsertChatParams struct {
	ID       uuid.UUID
	UserID   string
	Title    string
	SetTitle bool
	Messages []db_models.Message
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*db_models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*db_models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*db_models.User, error)
	CreateUser(ctx context.Context, user *db_models.User) error
	LinkGoogleAccount(ctx context.Context, userID uuid.UUID, googleID string) (*db_models.User, error)

	// Chat operations. Every lookup except GetChatByIDAnyOwner is scoped by owner.
	CreateChat(ctx context.Context, arg CreateChatParams) (*db_models.Chat, error)
	// UpsertChat returns ErrNotFound when the id is already taken by another owner.
	UpsertChat(ctx context.Context, arg UpsertChatParams) (*db_models.Chat, error)
	ListChatsByUser(ctx context.Context, userID string) ([]db_models.Chat, error)
	GetChatByID(ctx context.Context, id uuid.UUID, userID string) (*db_models.Chat, error)
	GetChatByIDAnyOwner(ctx context.Context, id uuid.UUID) (*db_models.Chat, error)
	UpdateChatTitle(ctx context.Context, id uuid.UUID, userID, title string) (*db_models.Chat, error)
	ToggleChatPinned(ctx context.Context, id uuid.UUID, userID string) (*db_models.Chat, error)
	ToggleChatArchived(ctx context.Context, id uuid.UUID, userID string) (*db_models.Chat, error)
	DeleteChat(ctx context.Context, id uuid.UUID) error
}
