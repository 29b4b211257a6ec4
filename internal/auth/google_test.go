package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestGoogle(t *testing.T, profile map[string]any) *GoogleOAuth {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogleOAuth("client-id", "client-secret", "http://localhost/cb")
	g.cfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	g.userInfoURL = srv.URL + "/userinfo"
	return g
}

func TestGoogleOAuth_AuthCodeURL(t *testing.T) {
	g := NewGoogleOAuth("client-id", "secret", "http://localhost/cb")
	u, err := url.Parse(g.AuthCodeURL("state-xyz"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "state-xyz", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
}

func TestGoogleOAuth_FetchProfile(t *testing.T) {
	g := newTestGoogle(t, map[string]any{
		"sub": "g-42", "email": "a@x.com", "email_verified": true, "name": "Alice", "picture": "http://img",
	})

	p, err := g.FetchProfile(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &GoogleProfile{Subject: "g-42", Email: "a@x.com", EmailVerified: true, Name: "Alice", Picture: "http://img"}, p)
}

func TestGoogleOAuth_FetchProfile_BadCode(t *testing.T) {
	g := newTestGoogle(t, map[string]any{"sub": "g-42", "email": "a@x.com"})

	_, err := g.FetchProfile(context.Background(), "bad-code")
	assert.ErrorContains(t, err, "exchanging authorization code")
}

func TestGoogleOAuth_FetchProfile_MissingEmail(t *testing.T) {
	g := newTestGoogle(t, map[string]any{"sub": "g-42"})

	_, err := g.FetchProfile(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrGoogleProfile)
}
