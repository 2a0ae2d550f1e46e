package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
)

// stateLength is the number of random bytes in a state parameter.
// 32 bytes gives 256 bits of entropy, well above the 128-bit minimum
// needed to make the value unguessable.
const stateLength = 32

// Flow drives the front channel of the authorization-code grant: it builds
// the redirect to the authorization endpoint and validates the callback.
// It performs no network I/O of its own.
type Flow struct {
	store                 CredentialStore
	clientID              string
	redirectURI           string
	scope                 string
	authorizationEndpoint string
}

// NewFlow creates an authorization flow for a single registered client.
func NewFlow(
	store CredentialStore,
	creds Credentials,
	authorizationEndpoint, redirectURI, scope string,
) *Flow {
	return &Flow{
		store:                 store,
		clientID:              creds.ClientID,
		redirectURI:           redirectURI,
		scope:                 scope,
		authorizationEndpoint: authorizationEndpoint,
	}
}

// Begin starts a new authorization attempt for the session and returns the
// URL the user agent must be redirected to. The generated state overwrites
// any prior pending state: only one attempt is in flight per session, and
// starting a new one invalidates an uncompleted older one.
func (f *Flow) Begin(ctx context.Context, sessionID string) (string, error) {
	state, err := generateRandomState(stateLength)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	if err := f.store.SetPendingState(ctx, sessionID, state); err != nil {
		return "", fmt.Errorf("save pending state: %w", err)
	}

	u, err := url.Parse(f.authorizationEndpoint)
	if err != nil {
		return "", fmt.Errorf("parse authorization endpoint: %w", err)
	}

	q := u.Query()
	q.Set("client_id", f.clientID)
	q.Set("redirect_uri", f.redirectURI)
	q.Set("scope", f.scope)
	q.Set("state", state)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Complete validates the authorization callback and returns the code to
// hand to the token exchanger.
//
// A missing or mismatched state fails with ErrStateValidationFailed and
// leaves the pending state in place, so the caller may retry or abort. On
// a match the pending state is cleared before anything else: a second
// callback replaying the same state will fail. A valid state with no code
// fails with ErrMissingAuthorizationCode.
func (f *Flow) Complete(ctx context.Context, sessionID, code, state string) (string, error) {
	pending, err := f.store.PendingState(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNoPendingState) {
			return "", ErrStateValidationFailed
		}
		return "", fmt.Errorf("load pending state: %w", err)
	}

	if state == "" || state != pending {
		return "", ErrStateValidationFailed
	}

	if err := f.store.ClearPendingState(ctx, sessionID); err != nil {
		return "", fmt.Errorf("clear pending state: %w", err)
	}

	if code == "" {
		return "", ErrMissingAuthorizationCode
	}

	return code, nil
}

// generateRandomState generates a random state string for CSRF protection.
func generateRandomState(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// generateNonce generates the per-request replay-resistance hint forwarded
// to the token endpoint. The client only generates it; the server is the
// one that cares about its value.
func generateNonce() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
