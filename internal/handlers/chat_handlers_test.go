package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatbox-backend/internal/auth"
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/models"
	"chatbox-backend/internal/services"

	"github.com/stretchr/testify/assert"
)

// failingChatService returns err from every operation.
type failingChatService struct{ err error }

func (f failingChatService) Save(context.Context, string, models.SaveChatRequest) (*models.Chat, error) {
	return nil, f.err
}
func (f failingChatService) List(context.Context, string) ([]models.Chat, error) { return nil, f.err }
func (f failingChatService) Get(context.Context, string, string) (*models.Chat, error) {
	return nil, f.err
}
func (f failingChatService) Rename(context.Context, string, string, string) (*models.Chat, error) {
	return nil, f.err
}
func (f failingChatService) TogglePin(context.Context, string, string) (*models.Chat, error) {
	return nil, f.err
}
func (f failingChatService) ToggleArchive(context.Context, string, string) (*models.Chat, error) {
	return nil, f.err
}
func (f failingChatService) Delete(context.Context, string, string) error { return f.err }

func withPrincipal(r *http.Request) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: "u1"}))
}

func TestChatHandlers_StoreFailureIs500(t *testing.T) {
	h := NewChatHandlers(failingChatService{err: errors.New("connection refused")}, logging.Discard())

	rec := httptest.NewRecorder()
	h.HandleListMyChats(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/chat/my", nil)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Failed to fetch chats"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandleSaveChat(rec, withPrincipal(httptest.NewRequest(http.MethodPost, "/api/chat/save", strings.NewReader(`{"messages":[]}`))))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Failed to save chat"}`, rec.Body.String())
}

func TestChatHandlers_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{services.ErrInvalidChatID, http.StatusBadRequest},
		{services.ErrChatNotFound, http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		h := NewChatHandlers(failingChatService{err: tc.err}, logging.Discard())
		rec := httptest.NewRecorder()
		h.HandleDeleteChat(rec, withPrincipal(httptest.NewRequest(http.MethodDelete, "/api/chat/x", nil)))
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestChatHandlers_RequirePrincipal(t *testing.T) {
	h := NewChatHandlers(failingChatService{}, logging.Discard())

	rec := httptest.NewRecorder()
	h.HandleListMyChats(rec, httptest.NewRequest(http.MethodGet, "/api/chat/my", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
