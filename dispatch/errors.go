package dispatch

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/kbukum/streamgate/transport"
)

// ErrClosed is returned for calls against a dispatcher that has been
// closed.
var ErrClosed = errors.New("dispatch: dispatcher is closed")

// AuthError reports a failed token acquisition at startup. Startup
// auth failures are fatal: the dispatcher does not come up and the
// handshake is never silently retried.
type AuthError struct {
	// Reason is the token endpoint's error code when available
	// (e.g. "invalid_grant"), or a local classification.
	Reason string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("dispatch: authentication failed (%s): %v", e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// RequestError is the transport-level failure surfaced by Call, Get,
// Post, and Stage. The dispatcher passes it through unchanged.
type RequestError = transport.Error

// newAuthError classifies a token-exchange failure. OAuth2 error
// responses carry the server's error code; everything else (network,
// malformed response) is reported as token_exchange_failed.
func newAuthError(err error) *AuthError {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.ErrorCode != "" {
		return &AuthError{Reason: rerr.ErrorCode, Err: err}
	}
	return &AuthError{Reason: "token_exchange_failed", Err: err}
}

// IsAuthError checks if an error is a startup authentication failure.
func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}
