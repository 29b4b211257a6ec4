package conversation

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"chatbox-backend/internal/client/api"
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	reply      string
	err        error
	savedTitle string
	onComplete func()

	id      uuid.UUID
	saves   []models.SaveChatRequest
	renames []string
}

func (f *fakeBackend) Complete(context.Context, string) (string, error) {
	if f.onComplete != nil {
		f.onComplete()
	}
	return f.reply, f.err
}

func (f *fakeBackend) SaveChat(_ context.Context, req models.SaveChatRequest) (*models.ChatResponse, error) {
	msgs := append([]models.Message(nil), (*req.Messages)...)
	req.Messages = &msgs
	f.saves = append(f.saves, req)
	if f.id == uuid.Nil {
		f.id = uuid.New()
	}
	return &models.ChatResponse{ID: f.id, Title: f.savedTitle, Messages: msgs}, nil
}

func (f *fakeBackend) RenameChat(_ context.Context, id, title string) (*models.ChatResponse, error) {
	f.renames = append(f.renames, title)
	return &models.ChatResponse{ID: f.id, Title: title}, nil
}

// cancelAfter cancels the conversation once n bytes were written.
type cancelAfter struct {
	bytes.Buffer
	n    int
	conv *Conversation
	seen []State
}

func (w *cancelAfter) Write(p []byte) (int, error) {
	w.seen = append(w.seen, w.conv.State())
	n, err := w.Buffer.Write(p)
	if w.Len() >= w.n {
		w.conv.Cancel()
	}
	return n, err
}

func TestSend_SavesFullReplyAndAutoTitles(t *testing.T) {
	b := &fakeBackend{reply: "Hello! How can I help?", savedTitle: "New chat"}
	c := New(b, 0, logging.Discard())

	var states []State
	b.onComplete = func() { states = append(states, c.State()) }

	var out bytes.Buffer
	require.NoError(t, c.Send(context.Background(), "what's the weather, like today in Paris?", &out))

	assert.Equal(t, []State{AwaitingCompletion}, states)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, "Hello! How can I help?\n", out.String())

	require.Len(t, b.saves, 1)
	assert.Empty(t, b.saves[0].ChatID)
	assert.Equal(t, []models.Message{
		{Type: "ai", Text: Greeting},
		{Type: "user", Text: "what's the weather, like today in Paris?"},
		{Type: "ai", Text: "Hello! How can I help?"},
	}, *b.saves[0].Messages)

	assert.Equal(t, []string{"Whats The Weather Like Today In"}, b.renames)
	assert.Equal(t, "Whats The Weather Like Today In", c.Title())
	assert.Equal(t, b.id.String(), c.ChatID())

	// second turn reuses the id and never renames again
	require.NoError(t, c.Send(context.Background(), "and tomorrow?", &out))
	require.Len(t, b.saves, 2)
	assert.Equal(t, b.id.String(), b.saves[1].ChatID)
	assert.Len(t, b.renames, 1)
}

func TestSend_NoAutoTitleWhenServerTitled(t *testing.T) {
	b := &fakeBackend{reply: "ok", savedTitle: "Hello there"}
	c := New(b, 0, logging.Discard())

	require.NoError(t, c.Send(context.Background(), "Hello there", &bytes.Buffer{}))
	assert.Empty(t, b.renames)
	assert.Equal(t, "Hello there", c.Title())
}

func TestSend_CancelTruncatesDisplayButSavesFullReply(t *testing.T) {
	reply := "This is a fairly long reply that will be cut short."
	b := &fakeBackend{reply: reply, savedTitle: "x"}
	c := New(b, time.Millisecond, logging.Discard())

	w := &cancelAfter{n: 5, conv: c}
	require.NoError(t, c.Send(context.Background(), "hi", w))

	assert.Less(t, len(w.String()), len(reply))
	assert.Contains(t, w.seen, Streaming)
	msgs := *b.saves[0].Messages
	assert.Equal(t, reply, msgs[len(msgs)-1].Text)
	assert.Equal(t, Idle, c.State())
}

func TestSend_ProviderFailureIsInlineWarning(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&api.APIError{StatusCode: http.StatusInternalServerError, Message: "AI service failed", Detail: "No auth"}, "⚠️ AI service failed"},
		{context.DeadlineExceeded, "⚠️ Server timeout"},
		{errors.New("connection refused"), "⚠️ Failed to get AI response"},
	}
	for _, tc := range cases {
		b := &fakeBackend{err: tc.err, savedTitle: "t"}
		c := New(b, 0, logging.Discard())

		var out bytes.Buffer
		require.NoError(t, c.Send(context.Background(), "hi", &out))
		assert.Equal(t, tc.want+"\n", out.String())

		msgs := c.Messages()
		assert.Equal(t, models.Message{Type: "ai", Text: tc.want}, msgs[len(msgs)-1])
		require.Len(t, b.saves, 1)
	}
}

func TestSend_RejectsEmptyAndBusy(t *testing.T) {
	b := &fakeBackend{reply: "ok"}
	c := New(b, 0, logging.Discard())

	assert.ErrorIs(t, c.Send(context.Background(), "   ", &bytes.Buffer{}), ErrEmptyPrompt)
	assert.Empty(t, b.saves)

	b.onComplete = func() {
		assert.ErrorIs(t, c.Send(context.Background(), "again", &bytes.Buffer{}), ErrBusy)
	}
	require.NoError(t, c.Send(context.Background(), "first", &bytes.Buffer{}))
}

func TestOpen_ResumesWithoutRetitling(t *testing.T) {
	id := uuid.New()
	b := &fakeBackend{reply: "ok", savedTitle: "New chat", id: id}
	c := Open(b, models.ChatSummary{ID: id, Title: "New chat", Messages: []models.Message{{Type: "ai", Text: "hey"}}}, 0, logging.Discard())

	require.NoError(t, c.Send(context.Background(), "hello", &bytes.Buffer{}))
	assert.Equal(t, id.String(), b.saves[0].ChatID)
	assert.Empty(t, b.renames)
}

func TestAutoTitle(t *testing.T) {
	cases := map[string]string{
		"hello there":                       "Hello There",
		"what's up, doc?":                   "Whats Up Doc",
		"one two three four five six seven": "One Two Three Four Five Six",
		"?!":                                "New Chat",
		"  spaced   out  ":                  "Spaced Out",
	}
	for in, want := range cases {
		assert.Equal(t, want, AutoTitle([]models.Message{{Type: "ai", Text: "greeting"}, {Type: "user", Text: in}}), in)
	}
	assert.Equal(t, "New Chat", AutoTitle(nil))
}

func TestIsPlaceholderTitle(t *testing.T) {
	assert.True(t, isPlaceholderTitle(""))
	assert.True(t, isPlaceholderTitle("Chat"))
	assert.True(t, isPlaceholderTitle("New chat"))
	assert.False(t, isPlaceholderTitle("Hello"))
}
