package oauth2

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/crypto"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/tokenstore"
)

// fakeProvider records calls and returns canned responses.
type fakeProvider struct {
	mu           sync.Mutex
	refreshCalls int
	refreshResp  *TokenResponse
	refreshErr   error
	exchangeResp *TokenResponse
	account      string
}

func (f *fakeProvider) Name() entities.OAuthProvider { return entities.OAuthProviderGoogle }

func (f *fakeProvider) BuildAuthURL(redirectURL string) (*AuthRequest, error) {
	return &AuthRequest{URL: "https://auth.example.com?redirect=" + redirectURL, State: "state", CodeVerifier: "verifier"}, nil
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURL string) (*TokenResponse, error) {
	return f.exchangeResp, nil
}

func (f *fakeProvider) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.refreshResp, f.refreshErr
}

func (f *fakeProvider) GetAccountInfo(ctx context.Context, accessToken string) (string, error) {
	return f.account, nil
}

func newTestTokenStore(t *testing.T) *tokenstore.TokenStore {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	store, err := tokenstore.New(tokenstore.Config{
		DatabasePath:  filepath.Join(t.TempDir(), "tokens.db"),
		EncryptionKey: key,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
