package oauth2

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected   = errors.New("no Google account connected")
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrStateMismatch  = errors.New("state mismatch")
)

// AccessTokenRefusedError is returned when the token endpoint answers a code
// exchange or refresh with an HTTP error status.
type AccessTokenRefusedError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *AccessTokenRefusedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("access token refused (%d %s): %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("access token refused (%d %s)", e.StatusCode, e.Code)
}

// TransportError wraps failures to reach a remote endpoint at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
