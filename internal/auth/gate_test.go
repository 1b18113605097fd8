package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-core/internal/apperr"
	"todo-core/internal/logging"
	"todo-core/internal/model"
)

type fakeUsers map[string]*model.User

func (f fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	if id == "broken" {
		return nil, errors.New("connection reset")
	}
	u, ok := f[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

type fakeRevoked map[string]bool

func (f fakeRevoked) IsRevoked(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

type brokenRevoked struct{}

func (brokenRevoked) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func newTestGate(t *testing.T) (*Gate, *Tokens, fakeRevoked) {
	t.Helper()
	users := fakeUsers{
		"active":   {ID: "active", IsActive: true},
		"inactive": {ID: "inactive", IsActive: false},
	}
	tokens := NewTokens("secret", time.Hour)
	revoked := fakeRevoked{}
	return NewGate(users, tokens, revoked, logging.Discard()), tokens, revoked
}

func issue(t *testing.T, tokens *Tokens, userID string) (string, Claims) {
	t.Helper()
	signed, claims, err := tokens.Issue(userID)
	require.NoError(t, err)
	return signed, claims
}

func TestGateAuthenticate(t *testing.T) {
	gate, tokens, _ := newTestGate(t)
	token, _ := issue(t, tokens, "active")

	id, err := gate.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "active", id)
}

func TestGateRejects(t *testing.T) {
	gate, tokens, revoked := newTestGate(t)
	ghost, _ := issue(t, tokens, "ghost")
	gone, claims := issue(t, tokens, "active")
	revoked[claims.ID] = true

	tests := map[string]string{
		"empty":        "",
		"only scheme":  "Bearer ",
		"garbage":      "Bearer abc.def.ghi",
		"unknown user": ghost,
		"revoked":      gone,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := gate.Authenticate(context.Background(), token)
			assert.ErrorIs(t, err, apperr.ErrAuthInvalid)
		})
	}
}

func TestGateStoreFailureIsInternal(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Formatter: log.LogfmtFormatter})
	tokens := NewTokens("secret", time.Hour)
	gate := NewGate(fakeUsers{}, tokens, fakeRevoked{}, logger)
	token, _ := issue(t, tokens, "broken")

	_, err := gate.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.False(t, apperr.IsDomain(err))
	assert.Contains(t, buf.String(), "resolve user failed")
	assert.Contains(t, buf.String(), "connection reset")

	buf.Reset()
	gate = NewGate(fakeUsers{}, tokens, brokenRevoked{}, logger)
	_, err = gate.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.Contains(t, buf.String(), "check revocation failed")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestGateOptional(t *testing.T) {
	gate, tokens, _ := newTestGate(t)

	id, err := gate.AuthenticateOptional(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = gate.AuthenticateOptional(context.Background(), "Bearer nope")
	assert.ErrorIs(t, err, apperr.ErrAuthInvalid)

	token, _ := issue(t, tokens, "active")
	id, err = gate.AuthenticateOptional(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "active", id)
}

func TestGateActive(t *testing.T) {
	gate, tokens, _ := newTestGate(t)
	ctx := context.Background()

	token, _ := issue(t, tokens, "active")
	user, err := gate.AuthenticateActive(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "active", user.ID)

	token, _ = issue(t, tokens, "inactive")
	_, err = gate.AuthenticateActive(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrInactive)

	// Resolve alone does not check the flag.
	user, err = gate.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("  bearer   abc "))
	assert.Equal(t, "abc", BearerToken("abc"))
	assert.Equal(t, "", BearerToken("Bearer"))
}
