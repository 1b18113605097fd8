package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"todo-core/internal/apperr"
	"todo-core/internal/auth"
	"todo-core/internal/model"
	"todo-core/internal/repository"
	"todo-core/internal/session"
)

const (
	maxUsernameLen   = 50
	minPasswordLen   = 8
	maxPasswordBytes = 72 // bcrypt rejects longer passwords
	invalidSignIn    = "invalid email or password"
)

// PasswordHasher turns passwords into digests and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer issues and parses access tokens.
type TokenIssuer interface {
	Issue(userID string) (string, auth.Claims, error)
	Verify(token string) (auth.Claims, error)
}

// RegisterInput carries the fields of a new password account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Session is a signed-in user with its access token.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// AccountService manages users and their credentials.
type AccountService struct {
	users    repository.Users
	hasher   PasswordHasher
	tokens   TokenIssuer
	revoked  session.Store
	external auth.ExternalVerifier
	gate     *auth.Gate
	log      *log.Logger
	now      func() time.Time
}

// NewAccountService wires the account operations. external may be nil when
// no identity provider is configured.
func NewAccountService(users repository.Users, hasher PasswordHasher, tokens TokenIssuer, revoked session.Store, external auth.ExternalVerifier, logger *log.Logger) *AccountService {
	return &AccountService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		revoked:  revoked,
		external: external,
		gate:     auth.NewGate(users, tokens, revoked, logger.WithPrefix("gate")),
		log:      logger,
		now:      time.Now,
	}
}

// Gate returns the auth gate bound to this service's stores.
func (s *AccountService) Gate() *auth.Gate {
	return s.gate
}

// Register creates a password account and signs it in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkLength("username", username, 1, maxUsernameLen); err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLen {
		return nil, apperr.Validation("password", "must be at least 8 characters")
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, apperr.Validation("password", "must be at most 72 bytes")
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fail(s.log, "hash password", err)
	}
	now := stamp(s.now(), time.Time{})
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: &digest,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, fail(s.log, "create user", err, "email", email)
	}
	s.log.Info("registered user", "user_id", user.ID)
	return s.signIn(&user)
}

// Login checks a password and signs the user in. Unknown emails, wrong
// passwords and accounts without a password all fail the same way.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil, apperr.AuthInvalid(errors.New(invalidSignIn))
	case err != nil:
		return nil, fail(s.log, "find user", err)
	}
	if user.PasswordHash == nil || !s.hasher.Verify(password, *user.PasswordHash) {
		return nil, apperr.AuthInvalid(errors.New(invalidSignIn))
	}
	if _, err := auth.RequireActive(user); err != nil {
		return nil, err
	}
	return s.signIn(user)
}

// LoginExternal signs in through the identity provider. A known external id
// wins; otherwise the first account with the same email gets the identity
// linked; otherwise a new account without a password is created.
func (s *AccountService) LoginExternal(ctx context.Context, providerToken string) (*Session, error) {
	if s.external == nil {
		return nil, apperr.AuthInvalid(errors.New("external sign-in is not configured"))
	}
	identity, err := s.external.VerifyExternal(ctx, providerToken)
	if err != nil {
		return nil, apperr.AuthInvalid(err)
	}
	if identity.ExternalID == "" || identity.Email == "" {
		return nil, apperr.AuthInvalid(errors.New("identity without subject or email"))
	}

	user, err := s.users.FindByExternalID(ctx, identity.ExternalID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fail(s.log, "find user", err)
	}
	if user == nil {
		user, err = s.users.FindByEmail(ctx, identity.Email)
		switch {
		case err == nil:
			if user, err = s.LinkExternal(ctx, user, identity.ExternalID, identity.AvatarURL); err != nil {
				return nil, err
			}
		case errors.Is(err, apperr.ErrNotFound):
			if user, err = s.createExternal(ctx, identity); err != nil {
				return nil, err
			}
		default:
			return nil, fail(s.log, "find user", err)
		}
	}
	if _, err := auth.RequireActive(user); err != nil {
		return nil, err
	}
	return s.signIn(user)
}

// LinkExternal attaches an external identity to user. Linking the same id
// again changes nothing.
func (s *AccountService) LinkExternal(ctx context.Context, user *model.User, externalID, picture string) (*model.User, error) {
	if user.ExternalID != nil && *user.ExternalID == externalID {
		return user, nil
	}
	user.ExternalID = &externalID
	if picture != "" {
		user.Picture = &picture
	}
	user.UpdatedAt = stamp(s.now(), user.UpdatedAt)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fail(s.log, "link external identity", err, "user_id", user.ID)
	}
	s.log.Info("linked external identity", "user_id", user.ID)
	return user, nil
}

func (s *AccountService) createExternal(ctx context.Context, identity auth.ExternalIdentity) (*model.User, error) {
	username := strings.TrimSpace(identity.DisplayName)
	if username == "" {
		username, _, _ = strings.Cut(identity.Email, "@")
	}
	if r := []rune(username); len(r) > maxUsernameLen {
		username = string(r[:maxUsernameLen])
	}
	externalID := identity.ExternalID
	now := stamp(s.now(), time.Time{})
	user := model.User{
		ID:         uuid.NewString(),
		Email:      identity.Email,
		Username:   username,
		ExternalID: &externalID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if identity.AvatarURL != "" {
		picture := identity.AvatarURL
		user.Picture = &picture
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, fail(s.log, "create user", err, "email", identity.Email)
	}
	s.log.Info("registered external user", "user_id", user.ID)
	return &user, nil
}

// Me returns the active user behind token.
func (s *AccountService) Me(ctx context.Context, token string) (*model.User, error) {
	return s.gate.AuthenticateActive(ctx, token)
}

// Logout revokes token until it would have expired.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(auth.BearerToken(token))
	if err != nil {
		return apperr.AuthInvalid(err)
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fail(s.log, "revoke token", err, "user_id", claims.UserID())
	}
	return nil
}

// Refresh trades a live token of an active user for a new one and revokes
// the old token.
func (s *AccountService) Refresh(ctx context.Context, token string) (*Session, error) {
	user, err := s.gate.AuthenticateActive(ctx, token)
	if err != nil {
		return nil, err
	}
	old, err := s.tokens.Verify(auth.BearerToken(token))
	if err != nil {
		return nil, apperr.AuthInvalid(err)
	}
	next, err := s.signIn(user)
	if err != nil {
		return nil, err
	}
	if err := s.revoked.Revoke(ctx, old.ID, old.ExpiresAt.Time); err != nil {
		return nil, fail(s.log, "revoke token", err, "user_id", user.ID)
	}
	return next, nil
}

// Deactivate marks a user inactive. Login, Me, Refresh and
// Gate.AuthenticateActive reject it afterwards; Gate.Authenticate does not
// look at the flag.
func (s *AccountService) Deactivate(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fail(s.log, "find user", err, "user_id", userID)
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	user.UpdatedAt = stamp(s.now(), user.UpdatedAt)
	if err := s.users.Update(ctx, user); err != nil {
		return fail(s.log, "deactivate user", err, "user_id", userID)
	}
	return nil
}

// DeleteUser removes a user with all of its categories and todos.
func (s *AccountService) DeleteUser(ctx context.Context, userID string) (bool, error) {
	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return false, fail(s.log, "delete user", err, "user_id", userID)
	}
	return deleted, nil
}

// PurgeAll removes every user and everything they own.
func (s *AccountService) PurgeAll(ctx context.Context) (int64, error) {
	removed, err := s.users.DeleteAll(ctx)
	if err != nil {
		return 0, fail(s.log, "purge users", err)
	}
	s.log.Warn("purged all users", "count", removed)
	return removed, nil
}

func (s *AccountService) signIn(user *model.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fail(s.log, "issue token", err, "user_id", user.ID)
	}
	return &Session{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}
