package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"

	"github.com/mrlokans/google-importer/internal/oauth2"
)

const (
	defaultResponseHeaderTimeout = 2 * time.Minute
	defaultBurst                 = 10

	expiredCredentialsMessage = "invalid authentication credentials"
)

// CredentialSource hands out a user's current access token and refreshes
// it on demand. Refresh must persist the new token before returning.
type CredentialSource interface {
	AccessToken(ctx context.Context, userID string) (string, error)
	Refresh(ctx context.Context, userID string) (string, error)
}

// Config configures a Client.
type Config struct {
	// BaseURL is used for requests that do not name their own host.
	BaseURL string

	// RequestsPerSecond throttles all requests made by the client. Zero
	// disables throttling.
	RequestsPerSecond float64

	// ResponseHeaderTimeout bounds the wait for a response to start. Bodies
	// are only bounded by the caller's context.
	ResponseHeaderTimeout time.Duration

	HTTPClient *http.Client
}

// Request describes one call to a Google REST endpoint.
type Request struct {
	Method string

	// BaseURL overrides the client's default host, for sibling APIs such
	// as People or Photos Library.
	BaseURL string

	// Endpoint is the path below the base URL, e.g. "/drive/v3/files".
	Endpoint string

	// Params go in the query string for GET and in a JSON body otherwise.
	Params map[string]any
}

// Client performs authenticated requests with a single refresh-and-retry.
type Client struct {
	creds      CredentialSource
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(creds CredentialSource, cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: NewTransport(cfg.ResponseHeaderTimeout)}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		creds:      creds,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, defaultBurst),
	}
}

// NewTransport clones the default transport and limits how long a request
// may wait for response headers. It sets no limit on reading the body.
func NewTransport(responseHeaderTimeout time.Duration) *http.Transport {
	if responseHeaderTimeout <= 0 {
		responseHeaderTimeout = defaultResponseHeaderTimeout
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.ResponseHeaderTimeout = responseHeaderTimeout
	return t
}

// Do sends req for userID and decodes the JSON response into out, which may
// be nil when the body is not needed.
func (c *Client) Do(ctx context.Context, userID string, req Request, out any) error {
	resp, err := c.execute(ctx, userID, req.Method+" "+req.Endpoint, func(token string) (*http.Request, error) {
		return c.buildRequest(ctx, token, req)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.Endpoint, err)
	}
	return nil
}

// Download streams the body of an authenticated GET on rawURL into w and
// returns the number of bytes written.
func (c *Client) Download(ctx context.Context, userID, rawURL string, w io.Writer) (int64, error) {
	resp, err := c.execute(ctx, userID, "download", func(token string) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create download request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
		return httpReq, nil
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &oauth2.TransportError{Op: "download", Err: err}
	}
	return n, nil
}

// execute returns a response with a 2xx status. The caller closes its body.
func (c *Client) execute(ctx context.Context, userID, op string, build func(token string) (*http.Request, error)) (*http.Response, error) {
	token, err := c.creds.AccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, apiErr, err := c.send(build, token, op)
	if err != nil {
		return nil, err
	}
	if apiErr == nil {
		return resp, nil
	}
	if !needsRefresh(apiErr) {
		return nil, badCredentials(apiErr)
	}

	token, err = c.creds.Refresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, apiErr, err = c.send(build, token, op)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, badCredentials(apiErr)
	}
	return resp, nil
}

// send performs one attempt. A non-2xx answer is returned as apiErr with
// the body already consumed.
func (c *Client) send(build func(token string) (*http.Request, error), token, op string) (*http.Response, *googleapi.Error, error) {
	httpReq, err := build(token)
	if err != nil {
		return nil, nil, err
	}

	if err := c.limiter.Wait(httpReq.Context()); err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, &oauth2.TransportError{Op: op, Err: err}
	}

	if err := googleapi.CheckResponse(resp); err != nil {
		resp.Body.Close()
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr, nil
		}
		return nil, nil, err
	}
	return resp, nil, nil
}

func (c *Client) buildRequest(ctx context.Context, token string, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	base := c.baseURL
	if req.BaseURL != "" {
		base = strings.TrimRight(req.BaseURL, "/")
	}

	u, err := url.Parse(base + req.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", req.Endpoint, err)
	}

	var body io.Reader
	if method == http.MethodGet {
		q := u.Query()
		for k, v := range req.Params {
			q.Set(k, fmt.Sprint(v))
		}
		u.RawQuery = q.Encode()
	} else if req.Params != nil {
		payload, err := json.Marshal(req.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// needsRefresh matches the answers Google gives for an expired access token.
func needsRefresh(apiErr *googleapi.Error) bool {
	if apiErr.Code == http.StatusUnauthorized {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), expiredCredentialsMessage) ||
		strings.Contains(strings.ToLower(apiErr.Body), expiredCredentialsMessage)
}

func badCredentials(apiErr *googleapi.Error) error {
	msg := apiErr.Message
	if msg == "" {
		msg = strings.TrimSpace(apiErr.Body)
	}
	if msg == "" {
		msg = http.StatusText(apiErr.Code)
	}
	return &BadCredentialsError{StatusCode: apiErr.Code, Message: msg, Err: apiErr}
}
