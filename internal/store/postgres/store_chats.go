package postgres

import (
	db_models "chatbox-backend/internal/models"
	"chatbox-backend/internal/store"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const chatColumns = `id, user_id, title, messages, auto_title, is_pinned, is_archived, created_at, updated_at`

func scanChat(row pgx.Row) (*db_models.Chat, error) {
	var (
		c        db_models.Chat
		owner    *string
		messages []byte
	)
	if err := row.Scan(
		&c.ID,
		&owner,
		&c.Title,
		&messages,
		&c.AutoTitle,
		&c.IsPinned,
		&c.IsArchived,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if owner != nil {
		c.UserID = *owner
	}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &c.Messages); err != nil {
			return nil, fmt.Errorf("failed to parse chat messages: %w", err)
		}
	}
	return &c, nil
}

func marshalMessages(messages []db_models.Message) ([]byte, error) {
	if messages == nil {
		messages = []db_models.Message{}
	}
	b, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat messages: %w", err)
	}
	return b, nil
}

// scanOwnedChat maps pgx.ErrNoRows to store.ErrNotFound.
func (s *PostgresStore) scanOwnedChat(ctx context.Context, op string, row pgx.Row) (*db_models.Chat, error) {
	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.log.ErrorContext(ctx, "chat query failed", "op", op, "error", err)
		return nil, fmt.Errorf("error scanning chat (%s): %w", op, err)
	}
	return chat, nil
}

const createChat = `-- name: CreateChat :one
INSERT INTO chats (id, user_id, title, messages)
VALUES ($1, $2, $3, $4)
RETURNING ` + chatColumns

func (s *PostgresStore) CreateChat(ctx context.Context, arg store.CreateChatParams) (*db_models.Chat, error) {
	messages, err := marshalMessages(arg.Messages)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(ctx, createChat, arg.ID, arg.UserID, arg.Title, messages)
	return s.scanOwnedChat(ctx, "create", row)
}

// The conflict branch only fires for the same owner, so a foreign id returns no row.
const upsertChat = `-- name: UpsertChat :one
INSERT INTO chats (id, user_id, title, messages)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET messages = EXCLUDED.messages,
    title = CASE WHEN $5::boolean THEN EXCLUDED.title ELSE chats.title END,
    updated_at = NOW()
WHERE chats.user_id = EXCLUDED.user_id
RETURNING ` + chatColumns

func (s *PostgresStore) UpsertChat(ctx context.Context, arg store.UpsertChatParams) (*db_models.Chat, error) {
	messages, err := marshalMessages(arg.Messages)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(ctx, upsertChat, arg.ID, arg.UserID, arg.Title, messages, arg.SetTitle)
	return s.scanOwnedChat(ctx, "upsert", row)
}

const listChatsByUser = `-- name: ListChatsByUser :many
SELECT ` + chatColumns + `
FROM chats
WHERE user_id = $1
ORDER BY updated_at DESC, created_at DESC`

func (s *PostgresStore) ListChatsByUser(ctx context.Context, userID string) ([]db_models.Chat, error) {
	rows, err := s.db.Query(ctx, listChatsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying chats: %w", err)
	}
	defer rows.Close()

	items := []db_models.Chat{}
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat row: %w", err)
		}
		items = append(items, *c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat rows: %w", err)
	}
	return items, nil
}

const getChatByID = `-- name: GetChatByID :one
SELECT ` + chatColumns + `
FROM chats
WHERE id = $1 AND user_id = $2`

func (s *PostgresStore) GetChatByID(ctx context.Context, id uuid.UUID, userID string) (*db_models.Chat, error) {
	return s.scanOwnedChat(ctx, "get", s.db.QueryRow(ctx, getChatByID, id, userID))
}

const getChatByIDAnyOwner = `-- name: GetChatByIDAnyOwner :one
SELECT ` + chatColumns + `
FROM chats
WHERE id = $1`

func (s *PostgresStore) GetChatByIDAnyOwner(ctx context.Context, id uuid.UUID) (*db_models.Chat, error) {
	return s.scanOwnedChat(ctx, "get_any_owner", s.db.QueryRow(ctx, getChatByIDAnyOwner, id))
}

const updateChatTitle = `-- name: UpdateChatTitle :one
UPDATE chats SET title = $3, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING ` + chatColumns

func (s *PostgresStore) UpdateChatTitle(ctx context.Context, id uuid.UUID, userID, title string) (*db_models.Chat, error) {
	return s.scanOwnedChat(ctx, "rename", s.db.QueryRow(ctx, updateChatTitle, id, userID, title))
}

const toggleChatPinned = `-- name: ToggleChatPinned :one
UPDATE chats SET is_pinned = NOT is_pinned, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING ` + chatColumns

func (s *PostgresStore) ToggleChatPinned(ctx context.Context, id uuid.UUID, userID string) (*db_models.Chat, error) {
	return s.scanOwnedChat(ctx, "pin", s.db.QueryRow(ctx, toggleChatPinned, id, userID))
}

const toggleChatArchived = `-- name: ToggleChatArchived :one
UPDATE chats SET is_archived = NOT is_archived, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING ` + chatColumns

func (s *PostgresStore) ToggleChatArchived(ctx context.Context, id uuid.UUID, userID string) (*db_models.Chat, error) {
	return s.scanOwnedChat(ctx, "archive", s.db.QueryRow(ctx, toggleChatArchived, id, userID))
}

const deleteChat = `-- name: DeleteChat :exec
DELETE FROM chats WHERE id = $1`

func (s *PostgresStore) DeleteChat(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, deleteChat, id)
	if err != nil {
		return fmt.Errorf("error deleting chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	s.log.InfoContext(ctx, "chat deleted", "chat_id", id)
	return nil
}
