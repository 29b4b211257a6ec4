package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	id := uuid.New()

	tok, err := iss.NewAccessToken(id, "a@x.com")
	require.NoError(t, err)

	claims, err := iss.ParseAndValidate(tok)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssuer_UniqueTokenIDs(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	id := uuid.New()

	a, err := iss.NewAccessToken(id, "a@x.com")
	require.NoError(t, err)
	b, err := iss.NewAccessToken(id, "a@x.com")
	require.NoError(t, err)

	ca, err := iss.ParseAndValidate(a)
	require.NoError(t, err)
	cb, err := iss.ParseAndValidate(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestIssuer_Expired(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := iss.NewAccessToken(uuid.New(), "a@x.com")
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.ParseAndValidate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_WrongSecret(t *testing.T) {
	tok, err := NewIssuer("secret", time.Hour).NewAccessToken(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).ParseAndValidate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Malformed(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).ParseAndValidate("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	tok, err := NewIssuer("secret", time.Hour).NewAccessToken(uuid.New(), "a@x.com")
	require.NoError(t, err)
	_, err = NewIssuer("secret", time.Hour).ParseAndValidate(strings.TrimSuffix(tok, tok[len(tok)-4:]) + "AAAA")
	assert.Error(t, err)
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := CustomClaims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).ParseAndValidate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RequiresUserID(t *testing.T) {
	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).ParseAndValidate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
	assert.False(t, CheckPasswordHash("hunter2", "not-a-hash"))
}
