package api

import (
	"chatbox-backend/internal/auth"
	"chatbox-backend/pkg/httputil"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator parses and verifies bearer tokens.
type TokenValidator interface {
	ParseAndValidate(tokenString string) (*auth.CustomClaims, error)
}

// RevocationChecker reports whether a token id has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

// --- JWT Middleware ---

// JwtAuthMiddleware verifies the JWT token from the Authorization header.
// If valid, it injects the principal into the request context.
// revoked may be nil.
func JwtAuthMiddleware(tokens TokenValidator, revoked RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.DebugContext(r.Context(), "missing authorization header")
				httputil.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				logger.DebugContext(r.Context(), "malformed authorization header")
				httputil.RespondError(w, http.StatusUnauthorized, "Malformed Authorization header (Expected: Bearer <token>)")
				return
			}

			claims, err := tokens.ParseAndValidate(parts[1])
			if err != nil {
				logger.DebugContext(r.Context(), "rejecting token", "error", err)
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					httputil.RespondError(w, http.StatusUnauthorized, "Token has expired")
				case errors.Is(err, auth.ErrTokenMalformed):
					httputil.RespondError(w, http.StatusUnauthorized, "Malformed token")
				default:
					httputil.RespondError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			if revoked != nil && revoked.IsRevoked(r.Context(), claims.ID) {
				httputil.RespondError(w, http.StatusUnauthorized, "Token has been revoked")
				return
			}

			ctx := auth.WithPrincipal(r.Context(), auth.PrincipalFromClaims(claims))

			// Call the next handler in the chain with the enriched context
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
