package cli

import (
	"context"
	"errors"
	"fmt"

	"chatbox-backend/internal/client/session"
	"chatbox-backend/internal/models"
)

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "-Enter name", a.out)
	if err != nil {
		return a.fail("Input error", err)
	}
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return a.fail("Input error", err)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return a.fail("Input error", err)
	}
	defer wipe(password)

	resp, err := a.backend.Register(ctx, name, email, string(password))
	if err != nil {
		return a.fail("Registration failed", err)
	}
	return a.signIn(resp)
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return a.fail("Input error", err)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return a.fail("Input error", err)
	}
	defer wipe(password)

	resp, err := a.backend.Login(ctx, email, string(password))
	if err != nil {
		return a.fail("Login failed", err)
	}
	return a.signIn(resp)
}

func (a *App) signIn(resp *models.AuthResponse) error {
	user := session.User{ID: resp.User.ID.String(), Email: resp.User.Email, Name: resp.User.Name}
	if err := a.session.SignIn(resp.Token, user); err != nil {
		return a.fail("Sign-in failed", err)
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", displayName(user))
	a.startChat()
	return nil
}

// Google prints the URL that starts the browser sign-in. The token from the
// final redirect is handed back with the token command.
func (a *App) Google(ctx context.Context) error {
	fmt.Fprintln(a.out, "Open this URL in a browser to sign in with Google:")
	fmt.Fprintln(a.out, "  "+a.backend.GoogleLoginURL())
	fmt.Fprintln(a.out, "Then copy the token parameter from the page you land on and run: token <jwt>")
	return nil
}

// Token signs in with a bare JWT and refreshes the profile from the backend.
func (a *App) Token(ctx context.Context, token string) error {
	if err := a.session.SignInWithToken(token); err != nil {
		if errors.Is(err, session.ErrTokenExpired) {
			fmt.Fprintln(a.out, "That token has expired.")
			return err
		}
		return a.fail("Invalid token", err)
	}

	me, err := a.backend.Me(ctx)
	if err != nil {
		return a.fail("Could not load profile", err)
	}
	user := session.User{ID: me.ID.String(), Email: me.Email, Name: me.Name}
	if err := a.session.SignIn(token, user); err != nil {
		return a.fail("Sign-in failed", err)
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", displayName(user))
	a.startChat()
	return nil
}

// Logout revokes the token on the backend when it can and always forgets it
// locally.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err := a.backend.Logout(ctx); err != nil {
		a.log.Warn("backend logout failed", "error", err)
	}
	a.conv.Store(nil)
	a.lastList = nil
	if err := a.session.SignOut(); err != nil {
		return a.fail("Logout failed", err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func displayName(u session.User) string {
	if u.Name != "" {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	return u.Email
}
