package oauth2

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/entities"
)

func TestStoredCredentials_AccessToken(t *testing.T) {
	store := newTestTokenStore(t)
	creds := NewStoredCredentials(&fakeProvider{}, store)

	_, err := creds.AccessToken(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, store.SaveToken(&entities.DecryptedToken{
		Provider: entities.OAuthProviderGoogle, AccountID: "alice", AccessToken: "a", RefreshToken: "r",
	}))

	token, err := creds.AccessToken(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "a", token)

	connected, err := creds.IsConnected("alice")
	require.NoError(t, err)
	assert.True(t, connected)
}

func TestStoredCredentials_Refresh(t *testing.T) {
	store := newTestTokenStore(t)
	provider := &fakeProvider{refreshResp: &TokenResponse{AccessToken: "fresh", ExpiresIn: 3600}}
	creds := NewStoredCredentials(provider, store)

	require.NoError(t, store.SaveToken(&entities.DecryptedToken{
		Provider: entities.OAuthProviderGoogle, AccountID: "alice", AccessToken: "stale", RefreshToken: "r",
	}))

	token, err := creds.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, 1, provider.refreshCalls)

	stored, err := store.GetToken(entities.OAuthProviderGoogle, "alice")
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored.AccessToken, "new access token is persisted immediately")
	assert.Equal(t, "r", stored.RefreshToken)
}

func TestStoredCredentials_RefreshRefused(t *testing.T) {
	store := newTestTokenStore(t)
	refused := &AccessTokenRefusedError{StatusCode: 400, Code: "invalid_grant"}
	creds := NewStoredCredentials(&fakeProvider{refreshErr: refused}, store)

	require.NoError(t, store.SaveToken(&entities.DecryptedToken{
		Provider: entities.OAuthProviderGoogle, AccountID: "alice", AccessToken: "stale", RefreshToken: "r",
	}))

	_, err := creds.Refresh(context.Background(), "alice")
	var target *AccessTokenRefusedError
	require.ErrorAs(t, err, &target)

	stored, err := store.GetToken(entities.OAuthProviderGoogle, "alice")
	require.NoError(t, err)
	assert.Equal(t, "stale", stored.AccessToken)
}

func TestStoredCredentials_RefreshWithoutRefreshToken(t *testing.T) {
	store := newTestTokenStore(t)
	creds := NewStoredCredentials(&fakeProvider{}, store)

	require.NoError(t, store.SaveToken(&entities.DecryptedToken{
		Provider: entities.OAuthProviderGoogle, AccountID: "alice", AccessToken: "a",
	}))

	_, err := creds.Refresh(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestStoredCredentials_Disconnect(t *testing.T) {
	store := newTestTokenStore(t)
	creds := NewStoredCredentials(&fakeProvider{}, store)

	require.NoError(t, store.SaveToken(&entities.DecryptedToken{
		Provider: entities.OAuthProviderGoogle, AccountID: "alice", AccessToken: "a",
	}))
	require.NoError(t, creds.Disconnect("alice"))

	_, err := creds.AccessToken(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotConnected)
}
