package providers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	xoauth2 "golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/people/v1"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/oauth2"
)

// PhotosReadonlyScope is not published by google.golang.org/api since the
// Photos Library client was removed from it.
const PhotosReadonlyScope = "https://www.googleapis.com/auth/photoslibrary.readonly"

// GoogleScopes are requested on every authorization.
var GoogleScopes = []string{
	oauth2api.UserinfoEmailScope,
	calendar.CalendarReadonlyScope,
	people.ContactsReadonlyScope,
	drive.DriveReadonlyScope,
	PhotosReadonlyScope,
}

// CredentialsFunc returns the OAuth client id and secret at call time, so
// changes to stored app settings apply without a restart.
type CredentialsFunc func() (clientID, clientSecret string)

// GoogleConfig configures a GoogleProvider.
type GoogleConfig struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	Credentials CredentialsFunc
	HTTPClient  *http.Client
}

// GoogleProvider talks to Google's OAuth2 endpoints through x/oauth2.
type GoogleProvider struct {
	authURL     string
	tokenURL    string
	userInfoURL string
	credentials CredentialsFunc
	httpClient  *http.Client
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	}
	return &GoogleProvider{
		authURL:     cfg.AuthURL,
		tokenURL:    cfg.TokenURL,
		userInfoURL: userInfoURL,
		credentials: cfg.Credentials,
		httpClient:  httpClient,
	}
}

func (p *GoogleProvider) Name() entities.OAuthProvider {
	return entities.OAuthProviderGoogle
}

func (p *GoogleProvider) config(redirectURL string) *xoauth2.Config {
	clientID, clientSecret := p.credentials()
	return &xoauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: xoauth2.Endpoint{
			AuthURL:   p.authURL,
			TokenURL:  p.tokenURL,
			AuthStyle: xoauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      GoogleScopes,
	}
}

func (p *GoogleProvider) ctx(ctx context.Context) context.Context {
	return context.WithValue(ctx, xoauth2.HTTPClient, p.httpClient)
}

func (p *GoogleProvider) BuildAuthURL(redirectURL string) (*oauth2.AuthRequest, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	verifier := xoauth2.GenerateVerifier()

	url := p.config(redirectURL).AuthCodeURL(state,
		xoauth2.AccessTypeOffline,
		xoauth2.ApprovalForce,
		xoauth2.S256ChallengeOption(verifier),
	)

	return &oauth2.AuthRequest{URL: url, State: state, CodeVerifier: verifier}, nil
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURL string) (*oauth2.TokenResponse, error) {
	var opts []xoauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, xoauth2.VerifierOption(codeVerifier))
	}

	tok, err := p.config(redirectURL).Exchange(p.ctx(ctx), code, opts...)
	if err != nil {
		return nil, classifyTokenError("exchange code", err)
	}
	return toTokenResponse(tok), nil
}

func (p *GoogleProvider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error) {
	if refreshToken == "" {
		return nil, oauth2.ErrNoRefreshToken
	}

	src := p.config("").TokenSource(p.ctx(ctx), &xoauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyTokenError("refresh token", err)
	}

	resp := toTokenResponse(tok)
	// x/oauth2 copies the old refresh token forward when none is returned.
	if resp.RefreshToken == refreshToken {
		resp.RefreshToken = ""
	}
	return resp, nil
}

func (p *GoogleProvider) GetAccountInfo(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &oauth2.TransportError{Op: "userinfo", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info oauth2api.Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to parse userinfo: %w", err)
	}
	if info.Email != "" {
		return info.Email, nil
	}
	return info.Id, nil
}

// classifyTokenError separates endpoint refusals from transport failures.
func classifyTokenError(op string, err error) error {
	var re *xoauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode >= 400 {
		refused := &oauth2.AccessTokenRefusedError{
			StatusCode:  re.Response.StatusCode,
			Code:        re.ErrorCode,
			Description: re.ErrorDescription,
		}
		if refused.Code == "" {
			refused.Description = strings.TrimSpace(string(re.Body))
		}
		return refused
	}
	return &oauth2.TransportError{Op: op, Err: err}
}

func toTokenResponse(tok *xoauth2.Token) *oauth2.TokenResponse {
	resp := &oauth2.TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		resp.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		resp.Scope = scope
	}
	return resp
}

func generateState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
