package oauth2

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/tokenstore"
)

// StoredCredentials hands out each user's access token from the token store
// and refreshes it when a caller reports that it was rejected.
type StoredCredentials struct {
	provider   Provider
	tokenStore *tokenstore.TokenStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStoredCredentials(provider Provider, store *tokenstore.TokenStore) *StoredCredentials {
	return &StoredCredentials{
		provider:   provider,
		tokenStore: store,
		locks:      make(map[string]*sync.Mutex),
	}
}

// userLock serializes refreshes per user so concurrent batches do not
// spend the same refresh token twice.
func (s *StoredCredentials) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *StoredCredentials) load(userID string) (*entities.DecryptedToken, error) {
	token, err := s.tokenStore.GetToken(s.provider.Name(), userID)
	if errors.Is(err, tokenstore.ErrTokenNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token from store: %w", err)
	}
	return token, nil
}

// AccessToken returns the stored access token for userID.
func (s *StoredCredentials) AccessToken(ctx context.Context, userID string) (string, error) {
	token, err := s.load(userID)
	if err != nil {
		return "", err
	}
	_ = s.tokenStore.UpdateLastUsed(s.provider.Name(), userID)
	return token.AccessToken, nil
}

// Refresh exchanges the stored refresh token, persists the new access token
// before returning it, and keeps the old refresh token unless rotated.
func (s *StoredCredentials) Refresh(ctx context.Context, userID string) (string, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	token, err := s.load(userID)
	if err != nil {
		return "", err
	}
	if token.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	resp, err := s.provider.RefreshToken(ctx, token.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := s.tokenStore.UpdateTokenAfterRefresh(
		s.provider.Name(),
		userID,
		resp.AccessToken,
		resp.RefreshToken,
		resp.ExpiresAt(),
	); err != nil {
		return "", fmt.Errorf("failed to save refreshed token: %w", err)
	}

	log.Printf("Google credentials: refreshed access token for user %s", userID)
	return resp.AccessToken, nil
}

// IsConnected reports whether userID has stored credentials.
func (s *StoredCredentials) IsConnected(userID string) (bool, error) {
	return s.tokenStore.HasToken(s.provider.Name(), userID)
}

// Disconnect forgets userID's credentials.
func (s *StoredCredentials) Disconnect(userID string) error {
	return s.tokenStore.DeleteToken(s.provider.Name(), userID)
}
