package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ErrGoogleProfile is returned when the provider profile cannot be fetched or lacks required fields.
var ErrGoogleProfile = errors.New("google profile unavailable")

// GoogleProfile is the subset of the OpenID userinfo document we use.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider starts and completes the authorization-code flow.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*GoogleProfile, error)
}

// GoogleOAuth implements GoogleProvider with x/oauth2.
type GoogleOAuth struct {
	cfg         *oauth2.Config
	userInfoURL string
}

var _ GoogleProvider = (*GoogleOAuth)(nil)

func NewGoogleOAuth(clientID, clientSecret, callbackURL string) *GoogleOAuth {
	return &GoogleOAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// FetchProfile exchanges code for a token and reads the userinfo endpoint with it.
func (g *GoogleOAuth) FetchProfile(ctx context.Context, code string) (*GoogleProfile, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building userinfo request: %w", err)
	}
	resp, err := g.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", ErrGoogleProfile, resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decoding userinfo: %v", ErrGoogleProfile, err)
	}
	if profile.Subject == "" || profile.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", ErrGoogleProfile)
	}
	return &profile, nil
}
