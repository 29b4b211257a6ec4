package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer is the iss claim stamped on every token.
const TokenIssuer = "chatbox-backend"

// Token validation failures. All of them mean "unauthenticated" to callers.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// --- JWT Claims ---

// CustomClaims includes standard JWT claims plus our custom ones.
// The id and email claim names are what the web client decodes.
type CustomClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer mints and validates HS256 access tokens.
// There is no server-side session; see RevocationList for the optional deny-list.
type Issuer struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewIssuer creates an Issuer signing with jwtSecret.
func NewIssuer(jwtSecret string, expiration time.Duration) *Issuer {
	return &Issuer{secret: []byte(jwtSecret), expiration: expiration, now: time.Now}
}

// NewAccessToken generates a new JWT access token for the principal.
func (i *Issuer) NewAccessToken(userID uuid.UUID, email string) (string, error) {
	now := i.now()
	claims := CustomClaims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
			Subject:   userID.String(),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token for user %s: %w", userID, err)
	}
	return signed, nil
}

// ParseAndValidate verifies signature, algorithm and expiry, returning the claims.
// Errors are one of ErrInvalidToken, ErrTokenExpired, ErrTokenMalformed.
func (i *Issuer) ParseAndValidate(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
