// Package conversation drives one chat transcript on the client: it sends a
// turn, reveals the reply, persists the transcript and names the chat.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"chatbox-backend/internal/client/api"
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/models"
)

// DefaultRevealDelay is the per-character delay of the reply animation.
const DefaultRevealDelay = 12 * time.Millisecond

// Greeting opens every new transcript.
const Greeting = "Hi 👋 I'm your AI assistant. Ask me anything."

// WarningPrefix marks an assistant message that reports a failure.
const WarningPrefix = "⚠️ "

var (
	ErrBusy        = errors.New("a reply is still in progress")
	ErrEmptyPrompt = errors.New("prompt is empty")
)

type State int

const (
	Idle State = iota
	AwaitingCompletion
	Streaming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingCompletion:
		return "awaiting-completion"
	case Streaming:
		return "streaming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Backend is the part of the API client a conversation uses.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
	SaveChat(ctx context.Context, req models.SaveChatRequest) (*models.ChatResponse, error)
	RenameChat(ctx context.Context, id, title string) (*models.ChatResponse, error)
}

// Conversation is the transcript state machine Idle -> AwaitingCompletion ->
// Streaming -> Idle. Only one turn runs at a time.
type Conversation struct {
	backend Backend
	log     *slog.Logger
	delay   time.Duration

	mu           sync.Mutex
	state        State
	chatID       string
	title        string
	messages     []models.Message
	titleChecked bool
	cancelReveal context.CancelFunc
}

// New starts an unsaved transcript with the assistant greeting.
func New(backend Backend, delay time.Duration, logger *slog.Logger) *Conversation {
	return &Conversation{
		backend:  backend,
		log:      logging.Component(logger, "conversation"),
		delay:    delay,
		messages: []models.Message{{Type: models.RoleAI, Text: Greeting}},
	}
}

// Open resumes a stored chat. A resumed chat is never auto-titled again.
func Open(backend Backend, chat models.ChatSummary, delay time.Duration, logger *slog.Logger) *Conversation {
	c := New(backend, delay, logger)
	c.chatID = chat.ID.String()
	c.title = chat.Title
	c.messages = append([]models.Message(nil), chat.Messages...)
	c.titleChecked = true
	return c
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ChatID is "" until the first successful save.
func (c *Conversation) ChatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chatID
}

func (c *Conversation) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// SetTitle records a title chosen outside the conversation, such as a rename.
func (c *Conversation) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
	c.titleChecked = true
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.messages...)
}

// Cancel stops an in-progress reveal. The full reply is still kept and saved.
func (c *Conversation) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelReveal != nil {
		c.cancelReveal()
	}
}

// Send runs one turn: it asks for a completion, reveals the reply on out,
// then saves the whole transcript. Provider failures become an inline warning
// message instead of an error. The returned error reports save failures only.
func (c *Conversation) Send(ctx context.Context, prompt string, out io.Writer) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = AwaitingCompletion
	c.messages = append(c.messages, models.Message{Type: models.RoleUser, Text: prompt})
	c.mu.Unlock()

	reply, err := c.backend.Complete(ctx, prompt)
	if err != nil {
		c.log.WarnContext(ctx, "completion failed", "error", err)
		reply = WarningPrefix + failureText(err)
		fmt.Fprint(out, reply)
	} else {
		revealCtx, cancel := context.WithCancel(ctx)
		c.mu.Lock()
		c.state = Streaming
		c.cancelReveal = cancel
		c.mu.Unlock()

		if shown := reveal(revealCtx, out, reply, c.delay); shown < len([]rune(reply)) {
			c.log.DebugContext(ctx, "reveal cancelled", "shown", shown)
		}

		cancel()
		c.mu.Lock()
		c.cancelReveal = nil
		c.mu.Unlock()
	}
	fmt.Fprintln(out)

	c.mu.Lock()
	c.messages = append(c.messages, models.Message{Type: models.RoleAI, Text: reply})
	c.state = Idle
	c.mu.Unlock()

	return c.save(ctx)
}

// reveal writes text to out one character at a time and returns how many
// characters were shown before ctx ended.
func reveal(ctx context.Context, out io.Writer, text string, delay time.Duration) int {
	shown := 0
	var tick <-chan time.Time
	if delay > 0 {
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		tick = ticker.C
	}
	for _, r := range text {
		if tick != nil {
			select {
			case <-ctx.Done():
				return shown
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return shown
		}
		fmt.Fprint(out, string(r))
		shown++
	}
	return shown
}

// failureText picks the message shown for a failed completion.
func failureText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Server timeout"
	}
	return "Failed to get AI response"
}

func (c *Conversation) save(ctx context.Context) error {
	c.mu.Lock()
	msgs := append([]models.Message(nil), c.messages...)
	req := models.SaveChatRequest{ChatID: c.chatID, Messages: &msgs}
	c.mu.Unlock()

	saved, err := c.backend.SaveChat(ctx, req)
	if err != nil {
		return fmt.Errorf("saving chat: %w", err)
	}

	c.mu.Lock()
	c.chatID = saved.ID.String()
	c.title = saved.Title
	shouldTitle := !c.titleChecked && countUserTurns(msgs) == 1 && isPlaceholderTitle(saved.Title)
	if countUserTurns(msgs) >= 1 {
		c.titleChecked = true
	}
	c.mu.Unlock()

	if !shouldTitle {
		return nil
	}
	return c.autoTitle(ctx, saved.ID.String(), msgs)
}

func (c *Conversation) autoTitle(ctx context.Context, chatID string, msgs []models.Message) error {
	title := AutoTitle(msgs)
	renamed, err := c.backend.RenameChat(ctx, chatID, title)
	if err != nil {
		return fmt.Errorf("naming chat: %w", err)
	}
	c.mu.Lock()
	c.title = renamed.Title
	c.mu.Unlock()
	return nil
}

func countUserTurns(msgs []models.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Type == models.RoleUser {
			n++
		}
	}
	return n
}
