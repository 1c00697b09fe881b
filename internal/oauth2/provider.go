package oauth2

import (
	"context"
	"time"

	"github.com/mrlokans/google-importer/internal/entities"
)

// TokenResponse contains tokens returned from the OAuth2 provider
type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int // seconds until expiry
	Scope        string
}

// ExpiresAt calculates the absolute expiry time from ExpiresIn
func (t *TokenResponse) ExpiresAt() *time.Time {
	if t.ExpiresIn <= 0 {
		return nil
	}
	exp := time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	return &exp
}

// AuthRequest is a pending authorization: the URL to visit plus the values
// needed to complete it.
type AuthRequest struct {
	URL          string
	State        string
	CodeVerifier string
}

// Provider is the token endpoint of an OAuth2 service.
type Provider interface {
	Name() entities.OAuthProvider

	// BuildAuthURL constructs the consent URL for redirectURL.
	BuildAuthURL(redirectURL string) (*AuthRequest, error)

	// ExchangeCode trades an authorization code for tokens.
	ExchangeCode(ctx context.Context, code, codeVerifier, redirectURL string) (*TokenResponse, error)

	// RefreshToken trades a refresh token for a new access token.
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)

	// GetAccountInfo returns the remote identity (email) for accessToken.
	GetAccountInfo(ctx context.Context, accessToken string) (string, error)
}
