package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
)

// UserFinder resolves a token subject to a stored user.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	Verify(token string) (Claims, error)
}

// RevocationChecker reports tokens revoked before their expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Gate binds every request to the user its credential belongs to.
type Gate struct {
	users   UserFinder
	tokens  TokenVerifier
	revoked RevocationChecker
	log     *log.Logger
}

// NewGate builds a gate. revoked may be nil when logout is not supported.
func NewGate(users UserFinder, tokens TokenVerifier, revoked RevocationChecker, logger *log.Logger) *Gate {
	return &Gate{users: users, tokens: tokens, revoked: revoked, log: logger}
}

// Resolve returns the live user behind token.
func (g *Gate) Resolve(ctx context.Context, token string) (*model.User, error) {
	token = BearerToken(token)
	if token == "" {
		return nil, apperr.AuthInvalid(ErrInvalidToken)
	}
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, apperr.AuthInvalid(err)
	}
	if g.revoked != nil {
		revoked, err := g.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			g.log.Error("check revocation failed", "user_id", claims.UserID(), "err", err)
			return nil, apperr.Internal("check revocation", err)
		}
		if revoked {
			return nil, apperr.AuthInvalid(errors.New("token revoked"))
		}
	}
	user, err := g.users.FindByID(ctx, claims.UserID())
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil, apperr.AuthInvalid(errors.New("user no longer exists"))
	case err != nil:
		g.log.Error("resolve user failed", "user_id", claims.UserID(), "err", err)
		return nil, apperr.Internal("resolve user", err)
	}
	return user, nil
}

// Authenticate returns the id of the user behind token.
func (g *Gate) Authenticate(ctx context.Context, token string) (string, error) {
	user, err := g.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// AuthenticateOptional is Authenticate for requests that may be anonymous:
// an empty token yields an empty id and no error. A token that is present
// but invalid is still rejected.
func (g *Gate) AuthenticateOptional(ctx context.Context, token string) (string, error) {
	if BearerToken(token) == "" {
		return "", nil
	}
	return g.Authenticate(ctx, token)
}

// AuthenticateActive resolves token and requires the user to be active.
func (g *Gate) AuthenticateActive(ctx context.Context, token string) (*model.User, error) {
	user, err := g.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return RequireActive(user)
}

// RequireActive fails with apperr.ErrInactive for deactivated accounts.
func RequireActive(user *model.User) (*model.User, error) {
	if user == nil || !user.IsActive {
		return nil, apperr.ErrInactive
	}
	return user, nil
}

// BearerToken strips an optional "Bearer " scheme and surrounding space.
func BearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if scheme, rest, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	if strings.EqualFold(raw, "bearer") {
		return ""
	}
	return raw
}
