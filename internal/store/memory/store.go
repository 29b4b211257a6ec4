// Package memory is an in-process store.Store used for local development
// (STORE_DRIVER=memory) and for service and handler tests.
package memory

import (
	db_models "chatbox-backend/internal/models"
	"chatbox-backend/internal/store"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*db_models.User
	chats map[uuid.UUID]*db_models.Chat
	now   func() time.Time
}

func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]*db_models.User),
		chats: make(map[uuid.UUID]*db_models.Chat),
		now:   time.Now,
	}
}

// SetClock replaces the time source; tests use it to get deterministic ordering.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// PutChat stores a chat verbatim, including an empty owner. It exists to seed
// legacy rows in tests.
func (s *Store) PutChat(c db_models.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[c.ID] = cloneChat(&c)
}

func cloneUser(u *db_models.User) *db_models.User {
	c := *u
	return &c
}

func cloneChat(c *db_models.Chat) *db_models.Chat {
	out := *c
	if c.Messages != nil {
		out.Messages = append([]db_models.Message(nil), c.Messages...)
	}
	return &out
}

func (s *Store) findUser(match func(*db_models.User) bool) (*db_models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*db_models.User, error) {
	return s.findUser(func(u *db_models.User) bool { return u.Email == email })
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*db_models.User, error) {
	return s.findUser(func(u *db_models.User) bool { return u.ID == id })
}

func (s *Store) GetUserByGoogleID(_ context.Context, googleID string) (*db_models.User, error) {
	return s.findUser(func(u *db_models.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (s *Store) CreateUser(_ context.Context, user *db_models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == user.ID || u.Email == user.Email {
			return fmt.Errorf("creating user %s: %w", user.Email, store.ErrConflict)
		}
		if user.GoogleID != nil && u.GoogleID != nil && *u.GoogleID == *user.GoogleID {
			return fmt.Errorf("creating user %s: %w", user.Email, store.ErrConflict)
		}
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) LinkGoogleAccount(_ context.Context, userID uuid.UUID, googleID string) (*db_models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.GoogleID != nil {
		return nil, store.ErrNotFound
	}
	for _, other := range s.users {
		if other.ID != userID && other.GoogleID != nil && *other.GoogleID == googleID {
			return nil, fmt.Errorf("linking google account: %w", store.ErrConflict)
		}
	}
	g := googleID
	u.GoogleID = &g
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}

func (s *Store) CreateChat(_ context.Context, arg store.CreateChatParams) (*db_models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chats[arg.ID]; exists {
		return nil, fmt.Errorf("creating chat %s: %w", arg.ID, store.ErrConflict)
	}
	now := s.now()
	c := &db_models.Chat{
		ID:        arg.ID,
		UserID:    arg.UserID,
		Title:     arg.Title,
		Messages:  append([]db_models.Message{}, arg.Messages...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.chats[c.ID] = c
	return cloneChat(c), nil
}

func (s *Store) UpsertChat(_ context.Context, arg store.UpsertChatParams) (*db_models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, exists := s.chats[arg.ID]
	if !exists {
		c = &db_models.Chat{ID: arg.ID, UserID: arg.UserID, Title: arg.Title, CreatedAt: now}
		s.chats[arg.ID] = c
	} else if c.UserID != arg.UserID {
		return nil, store.ErrNotFound
	} else if arg.SetTitle {
		c.Title = arg.Title
	}
	c.Messages = append([]db_models.Message{}, arg.Messages...)
	c.UpdatedAt = now
	return cloneChat(c), nil
}

func (s *Store) ListChatsByUser(_ context.Context, userID string) ([]db_models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []db_models.Chat{}
	for _, c := range s.chats {
		if c.UserID == userID {
			items = append(items, *cloneChat(c))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].UpdatedAt.After(items[j].UpdatedAt)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetChatByID(_ context.Context, id uuid.UUID, userID string) (*db_models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrNotFound
	}
	return cloneChat(c), nil
}

func (s *Store) GetChatByIDAnyOwner(_ context.Context, id uuid.UUID) (*db_models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneChat(c), nil
}

// mutateOwned applies fn to the chat matching (id, owner) under the write lock.
func (s *Store) mutateOwned(id uuid.UUID, userID string, fn func(c *db_models.Chat)) (*db_models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrNotFound
	}
	fn(c)
	c.UpdatedAt = s.now()
	return cloneChat(c), nil
}

func (s *Store) UpdateChatTitle(_ context.Context, id uuid.UUID, userID, title string) (*db_models.Chat, error) {
	return s.mutateOwned(id, userID, func(c *db_models.Chat) { c.Title = title })
}

func (s *Store) ToggleChatPinned(_ context.Context, id uuid.UUID, userID string) (*db_models.Chat, error) {
	return s.mutateOwned(id, userID, func(c *db_models.Chat) { c.IsPinned = !c.IsPinned })
}

func (s *Store) ToggleChatArchived(_ context.Context, id uuid.UUID, userID string) (*db_models.Chat, error) {
	return s.mutateOwned(id, userID, func(c *db_models.Chat) { c.IsArchived = !c.IsArchived })
}

func (s *Store) DeleteChat(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.chats, id)
	return nil
}
