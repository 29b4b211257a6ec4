package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"chatbox-backend/internal/client/api"
	"chatbox-backend/internal/client/config"
	"chatbox-backend/internal/client/conversation"
	"chatbox-backend/internal/client/session"
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/models"
)

// Backend is the part of the API client the app uses.
type Backend interface {
	conversation.Backend
	Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.UserResponse, error)
	Logout(ctx context.Context) error
	GoogleLoginURL() string
	ListChats(ctx context.Context) ([]models.ChatSummary, error)
	GetChat(ctx context.Context, id string) (*models.ChatSummary, error)
	TogglePin(ctx context.Context, id string) (*models.ChatResponse, error)
	ToggleArchive(ctx context.Context, id string) (*models.ChatResponse, error)
	DeleteChat(ctx context.Context, id string) error
}

type App struct {
	backend Backend
	session *session.Context
	reader  *bufio.Reader
	out     io.Writer
	log     *slog.Logger
	delay   time.Duration

	conv     atomic.Pointer[conversation.Conversation]
	lastList []models.ChatSummary
}

// NewApp wires the app to the backend at cfg.APIURL and restores the session
// stored in cfg.SessionFile.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	sess, err := session.NewContext(session.NewFileStorage(cfg.SessionFile))
	if err != nil {
		return nil, err
	}
	client := api.New(cfg.APIURL, sess.Token)
	return newApp(client, sess, bufio.NewReader(os.Stdin), os.Stdout, cfg.RevealDelay, logger), nil
}

func newApp(backend Backend, sess *session.Context, reader *bufio.Reader, out io.Writer, delay time.Duration, logger *slog.Logger) *App {
	return &App{
		backend: backend,
		session: sess,
		reader:  reader,
		out:     out,
		log:     logging.Component(logger, "cli"),
		delay:   delay,
	}
}

// Run starts the REPL and returns when the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Chatbox CLI (type 'help' for commands)")
	if a.isLoggedIn() {
		a.startChat()
	}
	runREPL(ctx, a, a.status, a.reader)
}

// Cancel skips the rest of a reply that is being revealed.
func (a *App) Cancel() {
	if c := a.conv.Load(); c != nil {
		c.Cancel()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *App) status() string {
	u, ok := a.session.User()
	if !ok {
		return "(guest)"
	}
	s := u.Email
	if c := a.conv.Load(); c != nil && c.Title() != "" {
		s += " | " + c.Title()
	}
	return "(" + s + ")"
}

// startChat replaces the current conversation with a fresh one and prints
// its greeting.
func (a *App) startChat() *conversation.Conversation {
	c := conversation.New(a.backend, a.delay, a.log)
	a.conv.Store(c)
	fmt.Fprintln(a.out, "ai:", conversation.Greeting)
	return c
}

func (a *App) requireLogin() bool {
	if a.isLoggedIn() {
		return true
	}
	fmt.Fprintln(a.out, "Please log in first (register, login, google or token).")
	return false
}

// fail reports err to the user. A 401 from the backend means the stored
// session is no longer accepted, so it is dropped.
func (a *App) fail(what string, err error) error {
	a.log.Debug(what, "error", err)
	fmt.Fprintf(a.out, "%s: %v\n", what, err)
	if api.IsStatus(err, 401) && a.isLoggedIn() {
		if serr := a.session.SignOut(); serr != nil {
			a.log.Warn("clearing session failed", "error", serr)
		}
		a.conv.Store(nil)
		fmt.Fprintln(a.out, "Session expired. Please log in again.")
	}
	return err
}
