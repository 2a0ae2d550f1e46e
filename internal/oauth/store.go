package oauth

import (
	"context"
	"errors"
)

var (
	// ErrNoPendingState indicates no authorization attempt is pending for
	// the session.
	ErrNoPendingState = errors.New("oauth: no pending authorization state")

	// ErrNoTokens indicates no token set is stored for the session.
	ErrNoTokens = errors.New("oauth: no token set stored")
)

// CredentialStore is the per-session key-value storage consumed by the
// client. It holds at most one pending CSRF state and one token set per
// session. The host supplies the implementation; the core never reaches
// into ambient session storage.
//
// Missing entries are reported with ErrNoPendingState and ErrNoTokens.
// Clear operations on absent entries are no-ops, not errors.
type CredentialStore interface {
	PendingState(ctx context.Context, sessionID string) (string, error)
	SetPendingState(ctx context.Context, sessionID, state string) error
	ClearPendingState(ctx context.Context, sessionID string) error

	Tokens(ctx context.Context, sessionID string) (*TokenSet, error)
	SetTokens(ctx context.Context, sessionID string, ts *TokenSet) error
	ClearTokens(ctx context.Context, sessionID string) error
}
