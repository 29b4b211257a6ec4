package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// RegisterRequest defines the expected body for the register endpoint.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CompletionRequest is the body of POST /api/ai/chat.
type CompletionRequest struct {
	Prompt string `json:"prompt"`
}

// SaveChatRequest is the body of POST /api/chat/save.
// Messages is a pointer slice so that a missing array can be told apart from an empty one.
type SaveChatRequest struct {
	ChatID   string     `json:"chatId,omitempty"`
	Messages *[]Message `json:"messages"`
	Title    string     `json:"title,omitempty"`
}

// RenameChatRequest is the body of PATCH /api/chat/{id}/rename.
type RenameChatRequest struct {
	Title string `json:"title"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like the password hash.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email"`
	Avatar      string    `json:"avatar,omitempty"`
	IsVerified  bool      `json:"isVerified"`
	HasPassword bool      `json:"hasPassword"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CompletionResponse is the successful reply of POST /api/ai/chat.
type CompletionResponse struct {
	Message string `json:"message"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ChatResponse is the full chat document returned by mutating chat endpoints.
type ChatResponse struct {
	ID         uuid.UUID `json:"_id"`
	UserID     string    `json:"userId,omitempty"`
	Title      string    `json:"title"`
	Messages   []Message `json:"messages"`
	AutoTitle  bool      `json:"autoTitle"`
	IsPinned   bool      `json:"isPinned"`
	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ChatSummary is the list/read form of a chat.
type ChatSummary struct {
	ID         uuid.UUID `json:"_id"`
	Title      string    `json:"title"`
	Messages   []Message `json:"messages"`
	Date       time.Time `json:"date"`
	IsPinned   bool      `json:"isPinned"`
	IsArchived bool      `json:"isArchived"`
}

// DeleteChatResponse is returned after a successful delete.
type DeleteChatResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewUserResponse maps a db user to its API form.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Avatar:      u.Avatar,
		IsVerified:  u.IsVerified,
		HasPassword: u.HasPassword,
		CreatedAt:   u.CreatedAt,
	}
}

// NewChatResponse maps a db chat to its full API form.
func NewChatResponse(c *Chat) ChatResponse {
	return ChatResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Title:      c.Title,
		Messages:   nonNilMessages(c.Messages),
		AutoTitle:  c.AutoTitle,
		IsPinned:   c.IsPinned,
		IsArchived: c.IsArchived,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// NewChatSummary maps a db chat to its list form.
func NewChatSummary(c *Chat) ChatSummary {
	return ChatSummary{
		ID:         c.ID,
		Title:      c.Title,
		Messages:   nonNilMessages(c.Messages),
		Date:       c.Date(),
		IsPinned:   c.IsPinned,
		IsArchived: c.IsArchived,
	}
}

func nonNilMessages(m []Message) []Message {
	if m == nil {
		return []Message{}
	}
	return m
}
