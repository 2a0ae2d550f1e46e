package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrStateValidationFailed means the callback's state parameter did not
	// match the pending state for the session. The authorization code must
	// not be exchanged when this is returned.
	ErrStateValidationFailed = errors.New("oauth: state validation failed")

	// ErrMissingAuthorizationCode means the callback carried no code.
	ErrMissingAuthorizationCode = errors.New("oauth: authorization code missing from callback")

	// ErrNoRefreshToken means a refresh was attempted with nothing to refresh.
	ErrNoRefreshToken = errors.New("oauth: no refresh token available")

	// ErrNotAuthenticated means the session holds no token set.
	ErrNotAuthenticated = errors.New("oauth: session is not authenticated")

	// ErrReauthenticationRequired means a refresh failed, the session's
	// credentials were purged, and the user must restart authorization.
	ErrReauthenticationRequired = errors.New("oauth: reauthentication required")
)

// ExchangeError reports a token-endpoint rejection. Grant distinguishes a
// failed code exchange from a failed refresh; status and body are preserved
// for diagnostics.
type ExchangeError struct {
	Grant      string
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("oauth: token endpoint rejected %s grant: HTTP %d - %s",
		e.Grant, e.StatusCode, e.Body)
}

// ResourceError reports a non-auth-related failure from the protected
// resource API. Credentials are left untouched when this is returned.
type ResourceError struct {
	StatusCode int
	Body       string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("oauth: resource call failed: HTTP %d - %s", e.StatusCode, e.Body)
}

// TransportError reports a network-level fault (connection, TLS, timeout).
// Nothing can be assumed about server state and the request is not retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oauth: %s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
