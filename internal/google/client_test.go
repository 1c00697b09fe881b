package google

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/oauth2"
)

// fakeCredentials keeps one token per user in memory.
type fakeCredentials struct {
	mu           sync.Mutex
	tokens       map[string]string
	next         string
	refreshErr   error
	refreshCalls int
}

func newFakeCredentials(token string) *fakeCredentials {
	return &fakeCredentials{tokens: map[string]string{"alice": token}, next: "fresh-token"}
}

func (f *fakeCredentials) AccessToken(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[userID]
	if !ok {
		return "", oauth2.ErrNotConnected
	}
	return token, nil
}

func (f *fakeCredentials) Refresh(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	f.tokens[userID] = f.next
	return f.next, nil
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
}

func TestDo_GETParamsInQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/drive/v3/files", r.URL.Path)
		assert.Equal(t, "trashed=false", r.URL.Query().Get("q"))
		assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "Bearer stored-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"files":[{"id":"1"}]}`))
	}))
	defer server.Close()

	client := NewClient(newFakeCredentials("stored-token"), Config{BaseURL: server.URL})

	var out struct {
		Files []struct {
			ID string `json:"id"`
		} `json:"files"`
	}
	err := client.Do(context.Background(), "alice", Request{
		Endpoint: "/drive/v3/files",
		Params:   map[string]any{"q": "trashed=false", "pageSize": 100},
	}, &out)
	require.NoError(t, err)
	require.Len(t, out.Files, 1)
	assert.Equal(t, "1", out.Files[0].ID)
}

func TestDo_POSTParamsInBodyAndBaseURLOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/mediaItems:search", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "album-1", body["albumId"])
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(newFakeCredentials("t"), Config{BaseURL: "http://default.invalid"})
	err := client.Do(context.Background(), "alice", Request{
		Method:   http.MethodPost,
		BaseURL:  server.URL,
		Endpoint: "/v1/mediaItems:search",
		Params:   map[string]any{"albumId": "album-1"},
	}, nil)
	require.NoError(t, err)
}

func TestDo_RefreshesOnceAndRetries(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		calls = append(calls, auth)
		if auth != "Bearer fresh-token" {
			writeAPIError(w, http.StatusUnauthorized, "Request had invalid authentication credentials.")
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	creds := newFakeCredentials("expired-token")
	client := NewClient(creds, Config{BaseURL: server.URL})

	var out map[string]bool
	require.NoError(t, client.Do(context.Background(), "alice", Request{Endpoint: "/x"}, &out))
	assert.True(t, out["ok"])
	assert.Equal(t, []string{"Bearer expired-token", "Bearer fresh-token"}, calls)
	assert.Equal(t, 1, creds.refreshCalls)

	// The refreshed token is used directly by the next call.
	require.NoError(t, client.Do(context.Background(), "alice", Request{Endpoint: "/x"}, &out))
	assert.Equal(t, 1, creds.refreshCalls)
	assert.Len(t, calls, 3)
}

func TestDo_RefreshOnMessageSignature(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			writeAPIError(w, http.StatusForbidden, "Request had Invalid Authentication Credentials")
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	creds := newFakeCredentials("old")
	client := NewClient(creds, Config{BaseURL: server.URL})
	require.NoError(t, client.Do(context.Background(), "alice", Request{Endpoint: "/x"}, nil))
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, creds.refreshCalls)
}

func TestDo_SecondFailureIsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		writeAPIError(w, http.StatusUnauthorized, "Request had invalid authentication credentials.")
	}))
	defer server.Close()

	creds := newFakeCredentials("old")
	client := NewClient(creds, Config{BaseURL: server.URL})
	err := client.Do(context.Background(), "alice", Request{Endpoint: "/x"}, nil)

	var bad *BadCredentialsError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, creds.refreshCalls)
	assert.True(t, IsAuthFailure(err))
}

func TestDo_RefreshErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "expired")
	}))
	defer server.Close()

	creds := newFakeCredentials("old")
	creds.refreshErr = &oauth2.AccessTokenRefusedError{StatusCode: 400, Code: "invalid_grant"}
	client := NewClient(creds, Config{BaseURL: server.URL})

	err := client.Do(context.Background(), "alice", Request{Endpoint: "/x"}, nil)
	var refused *oauth2.AccessTokenRefusedError
	require.ErrorAs(t, err, &refused)
	assert.Equal(t, "invalid_grant", refused.Code)
}

func TestDo_OtherErrorsAreBadCredentialsWithoutRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		writeAPIError(w, http.StatusNotFound, "File not found")
	}))
	defer server.Close()

	creds := newFakeCredentials("t")
	client := NewClient(creds, Config{BaseURL: server.URL})
	err := client.Do(context.Background(), "alice", Request{Endpoint: "/x"}, nil)

	var bad *BadCredentialsError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, http.StatusNotFound, bad.StatusCode)
	assert.Equal(t, "File not found", bad.Message)
	assert.Equal(t, 1, attempts)
	assert.Zero(t, creds.refreshCalls)
	assert.False(t, IsAuthFailure(err))
}

func TestDo_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	client := NewClient(newFakeCredentials("t"), Config{BaseURL: base})
	err := client.Do(context.Background(), "alice", Request{Endpoint: "/x"}, nil)

	var transport *oauth2.TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestDo_NotConnected(t *testing.T) {
	client := NewClient(newFakeCredentials("t"), Config{BaseURL: "http://unused.invalid"})
	err := client.Do(context.Background(), "bob", Request{Endpoint: "/x"}, nil)
	assert.ErrorIs(t, err, oauth2.ErrNotConnected)
	assert.True(t, IsAuthFailure(err))
}

func TestDownload(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			writeAPIError(w, http.StatusUnauthorized, "expired")
			return
		}
		_, _ = io.WriteString(w, "binary-content")
	}))
	defer server.Close()

	client := NewClient(newFakeCredentials("old"), Config{})
	var buf bytes.Buffer
	n, err := client.Download(context.Background(), "alice", server.URL+"/file", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("binary-content")), n)
	assert.Equal(t, "binary-content", buf.String())
	assert.Equal(t, 2, attempts)
}

func TestDownload_SlowBodyIsNotCut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		for i := 0; i < 3; i++ {
			_, _ = io.WriteString(w, "chunk")
			w.(http.Flusher).Flush()
			time.Sleep(100 * time.Millisecond)
		}
	}))
	defer server.Close()

	client := NewClient(newFakeCredentials("t"), Config{ResponseHeaderTimeout: 50 * time.Millisecond})
	var buf bytes.Buffer
	n, err := client.Download(context.Background(), "alice", server.URL+"/video.mp4", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)
	assert.Equal(t, "chunkchunkchunk", buf.String())
}

func TestDownload_ResponseHeaderTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(newFakeCredentials("t"), Config{ResponseHeaderTimeout: 50 * time.Millisecond})
	_, err := client.Download(context.Background(), "alice", server.URL+"/stuck", io.Discard)

	var transport *oauth2.TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestNewTransport(t *testing.T) {
	assert.Equal(t, defaultResponseHeaderTimeout, NewTransport(0).ResponseHeaderTimeout)
	assert.Equal(t, time.Second, NewTransport(time.Second).ResponseHeaderTimeout)
}
