package google

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mrlokans/google-importer/internal/oauth2"
)

// BadCredentialsError is returned for any HTTP status >= 400 that is not
// answered by a token refresh, including a request that still fails after
// the one retry.
type BadCredentialsError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *BadCredentialsError) Error() string {
	return fmt.Sprintf("google api error (%d): %s", e.StatusCode, e.Message)
}

func (e *BadCredentialsError) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports whether err is an authorization failure, including
// a 403 on a single resource.
func IsAuthFailure(err error) bool {
	if NeedsReauthorization(err) {
		return true
	}
	var bad *BadCredentialsError
	return errors.As(err, &bad) && bad.StatusCode == http.StatusForbidden
}

// NeedsReauthorization reports whether err means the user's credential is
// unusable and they have to authorize again. Per-resource refusals such as
// a 403 on one file do not count.
func NeedsReauthorization(err error) bool {
	if errors.Is(err, oauth2.ErrNotConnected) || errors.Is(err, oauth2.ErrNoRefreshToken) {
		return true
	}
	var refused *oauth2.AccessTokenRefusedError
	if errors.As(err, &refused) {
		return true
	}
	var bad *BadCredentialsError
	return errors.As(err, &bad) && bad.StatusCode == http.StatusUnauthorized
}
