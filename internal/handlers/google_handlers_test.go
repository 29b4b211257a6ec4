package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatbox-backend/internal/auth"
	"chatbox-backend/internal/logging"
	db_models "chatbox-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	profile *auth.GoogleProfile
	err     error
	gotCode string
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}

func (f *fakeProvider) FetchProfile(_ context.Context, code string) (*auth.GoogleProfile, error) {
	f.gotCode = code
	return f.profile, f.err
}

type fakeGoogleLogin struct {
	token string
	err   error
}

func (f fakeGoogleLogin) LoginWithGoogle(_ context.Context, p *auth.GoogleProfile) (string, *db_models.User, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, &db_models.User{ID: uuid.New(), Email: p.Email}, nil
}

func TestHandleGoogleLogin_SetsStateCookie(t *testing.T) {
	h := NewGoogleAuthHandler(&fakeProvider{}, fakeGoogleLogin{}, "https://front.example", logging.Discard())

	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "https://accounts.example/auth?state="+cookies[0].Value, rec.Header().Get("Location"))
}

func callback(h *GoogleAuthHandler, query, cookieState string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: cookieState})
	}
	rec := httptest.NewRecorder()
	h.HandleGoogleCallback(rec, req)
	return rec
}

func TestHandleGoogleCallback_Success(t *testing.T) {
	p := &fakeProvider{profile: &auth.GoogleProfile{Subject: "g-1", Email: "a@x.com"}}
	h := NewGoogleAuthHandler(p, fakeGoogleLogin{token: "tok.en.value"}, "https://front.example", logging.Discard())

	rec := callback(h, "state=s1&code=c1", "s1")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://front.example/?token=tok.en.value", rec.Header().Get("Location"))
	assert.Equal(t, "c1", p.gotCode)
}

func TestHandleGoogleCallback_Failures(t *testing.T) {
	const failure = "https://front.example/?error=oauth_failed"

	cases := []struct {
		name     string
		provider *fakeProvider
		login    fakeGoogleLogin
		query    string
		cookie   string
	}{
		{"state mismatch", &fakeProvider{}, fakeGoogleLogin{}, "state=s1&code=c1", "other"},
		{"missing cookie", &fakeProvider{}, fakeGoogleLogin{}, "state=s1&code=c1", ""},
		{"consent denied", &fakeProvider{}, fakeGoogleLogin{}, "error=access_denied&state=s1", "s1"},
		{"missing code", &fakeProvider{}, fakeGoogleLogin{}, "state=s1", "s1"},
		{"exchange failed", &fakeProvider{err: errors.New("bad code")}, fakeGoogleLogin{}, "state=s1&code=c1", "s1"},
		{"login failed", &fakeProvider{profile: &auth.GoogleProfile{Subject: "g", Email: "e"}}, fakeGoogleLogin{err: errors.New("db down")}, "state=s1&code=c1", "s1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewGoogleAuthHandler(tc.provider, tc.login, "https://front.example", logging.Discard())
			rec := callback(h, tc.query, tc.cookie)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, failure, rec.Header().Get("Location"))
		})
	}
}
