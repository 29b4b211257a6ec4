// Package session holds the signed-in identity of the terminal client and
// persists it between runs through a Storage.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("token could not be decoded")
	ErrTokenExpired = errors.New("token has expired")
)

// User is the identity shown in the prompt.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Storage persists a Snapshot. Load returns an empty Snapshot when nothing is stored.
type Storage interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
	Clear() error
}

// Context is the process-wide session, set on sign-in and cleared on sign-out.
type Context struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	user    *User
	now     func() time.Time
}

// NewContext restores the stored session. An expired or undecodable stored
// token is discarded.
func NewContext(storage Storage) (*Context, error) {
	c := &Context{storage: storage, now: time.Now}

	snap, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if snap.Token == "" {
		return c, nil
	}
	if _, err := c.decode(snap.Token); err != nil {
		_ = storage.Clear()
		return c, nil
	}
	c.token, c.user = snap.Token, snap.User
	return c, nil
}

type tokenClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// decode reads the claims without verifying the signature; only the server
// can verify, the client just needs the identity for display.
func (c *Context) decode(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(c.now()) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// SignIn stores a token together with the user returned by the backend.
func (c *Context) SignIn(token string, user User) error {
	if _, err := c.decode(token); err != nil {
		return err
	}
	return c.set(token, &user)
}

// SignInWithToken accepts a bare token, as handed back by the Google redirect,
// and derives the user from its claims.
func (c *Context) SignInWithToken(token string) error {
	claims, err := c.decode(token)
	if err != nil {
		return err
	}
	return c.set(token, &User{ID: claims.ID, Email: claims.Email})
}

func (c *Context) set(token string, user *User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.storage.Save(Snapshot{Token: token, User: user}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	c.token, c.user = token, user
	return nil
}

// SignOut forgets the session in memory and in storage.
func (c *Context) SignOut() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token, c.user = "", nil
	if err := c.storage.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "" when signed out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Context) User() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}

func (c *Context) LoggedIn() bool {
	return c.Token() != ""
}
