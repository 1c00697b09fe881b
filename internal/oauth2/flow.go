package oauth2

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/tokenstore"
)

// FlowResult contains the result of a completed OAuth2 flow
type FlowResult struct {
	UserID        string
	RemoteAccount string
	ExpiresAt     *time.Time
	Scope         string
}

// FlowHandler completes authorizations and stores the resulting credential
// under a local user.
type FlowHandler struct {
	provider   Provider
	tokenStore *tokenstore.TokenStore
}

func NewFlowHandler(provider Provider, store *tokenstore.TokenStore) *FlowHandler {
	return &FlowHandler{
		provider:   provider,
		tokenStore: store,
	}
}

// CLIFlowConfig configures a CLI-based OAuth2 flow
type CLIFlowConfig struct {
	Port            int                      // Local server port for callback (default: 8089)
	Timeout         time.Duration            // Timeout waiting for authorization (default: 5 minutes)
	OnAuthURL       func(url string)         // Called with the authorization URL to display
	OnTokenReceived func(result *FlowResult) // Called when tokens are stored
}

// DefaultCLIFlowConfig returns default configuration for CLI flow
func DefaultCLIFlowConfig() CLIFlowConfig {
	return CLIFlowConfig{
		Port:    8089,
		Timeout: 5 * time.Minute,
		OnAuthURL: func(url string) {
			fmt.Println("\nOpen this URL in your browser to authorize:")
			fmt.Println()
			fmt.Println(url)
		},
		OnTokenReceived: func(result *FlowResult) {
			fmt.Printf("\nConnected %s for user %s\n", result.RemoteAccount, result.UserID)
		},
	}
}

// RunCLIFlow executes the OAuth2 flow with a loopback callback server.
func (h *FlowHandler) RunCLIFlow(ctx context.Context, userID string, cfg CLIFlowConfig) (*FlowResult, error) {
	redirectURL := fmt.Sprintf("http://localhost:%d/callback", cfg.Port)

	req, err := h.provider.BuildAuthURL(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth URL: %w", err)
	}
	if cfg.OnAuthURL != nil {
		cfg.OnAuthURL(req.URL)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	server := &http.Server{Handler: mux}

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		w.Header().Set("Content-Type", "text/html")

		if errParam := query.Get("error"); errParam != "" {
			errChan <- fmt.Errorf("authorization error: %s", errParam)
			fmt.Fprintf(w, `<html><body><h1>Authorization Failed</h1><p>%s</p></body></html>`, errParam)
			return
		}
		if query.Get("state") != req.State {
			errChan <- ErrStateMismatch
			fmt.Fprint(w, `<html><body><h1>Security Error</h1><p>State mismatch detected.</p></body></html>`)
			return
		}
		code := query.Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			fmt.Fprint(w, `<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>`)
			return
		}

		fmt.Fprint(w, `<html><body><h1>Authorization Successful!</h1><p>You can close this window.</p></body></html>`)
		codeChan <- code
	})

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("port %d is not available: %w", cfg.Port, err)
	}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-timeoutCtx.Done():
		return nil, fmt.Errorf("timeout waiting for authorization")
	}

	result, err := h.exchangeAndSave(ctx, userID, code, req.CodeVerifier, redirectURL)
	if err != nil {
		return nil, err
	}
	if cfg.OnTokenReceived != nil {
		cfg.OnTokenReceived(result)
	}
	return result, nil
}

// StartWebFlow builds the consent URL for a browser redirect flow. The
// caller keeps State and CodeVerifier until the callback arrives.
func (h *FlowHandler) StartWebFlow(redirectURL string) (*AuthRequest, error) {
	return h.provider.BuildAuthURL(redirectURL)
}

// CompleteWebFlow verifies the callback state and stores the credential.
func (h *FlowHandler) CompleteWebFlow(
	ctx context.Context,
	userID, code, codeVerifier, redirectURL, expectedState, receivedState string,
) (*FlowResult, error) {
	if expectedState == "" || receivedState != expectedState {
		return nil, ErrStateMismatch
	}
	return h.exchangeAndSave(ctx, userID, code, codeVerifier, redirectURL)
}

func (h *FlowHandler) exchangeAndSave(ctx context.Context, userID, code, codeVerifier, redirectURL string) (*FlowResult, error) {
	tokenResp, err := h.provider.ExchangeCode(ctx, code, codeVerifier, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	remote, err := h.provider.GetAccountInfo(ctx, tokenResp.AccessToken)
	if err != nil {
		log.Printf("Google auth: could not read account info for user %s: %v", userID, err)
	}

	result := &FlowResult{
		UserID:        userID,
		RemoteAccount: remote,
		ExpiresAt:     tokenResp.ExpiresAt(),
		Scope:         tokenResp.Scope,
	}

	token := &entities.DecryptedToken{
		Provider:      h.provider.Name(),
		AccountID:     userID,
		AccessToken:   tokenResp.AccessToken,
		RefreshToken:  tokenResp.RefreshToken,
		TokenType:     tokenResp.TokenType,
		ExpiresAt:     result.ExpiresAt,
		Scope:         tokenResp.Scope,
		RemoteAccount: remote,
	}
	if err := h.tokenStore.SaveToken(token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	return result, nil
}
