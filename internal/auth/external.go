package auth

import "context"

// ExternalIdentity is what an identity provider vouches for.
type ExternalIdentity struct {
	ExternalID  string
	Email       string
	DisplayName string
	AvatarURL   string
}

// ExternalVerifier checks a provider-issued token. Implementations return
// ErrInvalidToken for tokens the provider rejects.
type ExternalVerifier interface {
	VerifyExternal(ctx context.Context, providerToken string) (ExternalIdentity, error)
}
