package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateToken(t *testing.T) {
	tm := NewTokenManager("secret", 24*time.Hour)

	tokenString, expiresAt, err := tm.GenerateToken("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	userID, err := tm.ParseToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokenManager_ParseToken_InvalidString(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	_, err := tm.ParseToken("invalid.token.string")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ParseToken_WrongSecret(t *testing.T) {
	tm1 := NewTokenManager("secret1", time.Hour)
	tm2 := NewTokenManager("secret2", time.Hour)

	tokenString, _, err := tm1.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = tm2.ParseToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ParseToken_Expired(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = tm.ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_ParseToken_WrongSigningMethod(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
