package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles accepted inside a chat transcript.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// DefaultChatTitle is stored when no title can be derived for a chat.
const DefaultChatTitle = "New chat"

// User represents a user in the database.
type User struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash *string   `db:"password_hash"` // nil for accounts created through Google
	GoogleID     *string   `db:"google_id"`
	HasPassword  bool      `db:"has_password"`
	Avatar       string    `db:"avatar"`
	IsVerified   bool      `db:"is_verified"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Message is a single transcript entry. It has no identity of its own;
// its position inside Chat.Messages is the only way to address it.
type Message struct {
	Type string `json:"type"` // RoleUser or RoleAI
	Text string `json:"text"`
}

// Chat is a conversation owned by one user. Messages are stored as JSONB and
// are always replaced as a whole.
type Chat struct {
	ID         uuid.UUID `db:"id"`
	UserID     string    `db:"user_id"` // empty for legacy ownerless rows
	Title      string    `db:"title"`
	Messages   []Message `db:"messages"`
	AutoTitle  bool      `db:"auto_title"`
	IsPinned   bool      `db:"is_pinned"`
	IsArchived bool      `db:"is_archived"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Date is the effective timestamp shown in chat lists.
func (c *Chat) Date() time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}
