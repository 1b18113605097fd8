package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("secret", 30*time.Minute)

	signed, claims, err := tokens.Issue("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "user-1", claims.UserID())

	got, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID())
	assert.Equal(t, claims.ID, got.ID)
}

func TestIssueUniqueIDs(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	_, a, err := tokens.Issue("user-1")
	require.NoError(t, err)
	_, b, err := tokens.Issue("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Now()
	tokens := NewTokens("secret", time.Minute)
	tokens.now = func() time.Time { return now }

	signed, _, err := tokens.Issue("user-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	other := NewTokens("other", time.Minute)
	foreign, _, err := other.Issue("user-1")
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "jti",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
		ID:      "jti",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ID:        "jti",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"no subject":     noSubject,
		"no expiry":      noExpiry,
		"none algorithm": unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
