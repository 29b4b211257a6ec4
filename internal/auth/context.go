package auth

import (
	"context"
	"time"
)

// contextKey is a custom type used for context keys to avoid collisions.
type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// PrincipalFromClaims builds the request principal from validated claims.
func PrincipalFromClaims(c *CustomClaims) Principal {
	p := Principal{UserID: c.UserID, Email: c.Email, TokenID: c.ID}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal placed by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.UserID != ""
}

// GetUserIDFromContext retrieves the principal's user id from the request context.
// Returns the ID and true if found, otherwise "" and false.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	return p.UserID, ok
}
