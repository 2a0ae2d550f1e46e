package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaceshelter/oauth2-sample-client/internal/cache"
	"github.com/spaceshelter/oauth2-sample-client/internal/oauth"
)

// Compile-time interface check.
var _ oauth.CredentialStore = (*Store)(nil)

// Store persists per-session OAuth credentials (pending CSRF state and the
// current token set) on a cache backend. With the memory backend it serves
// a single instance; with the Redis backend multiple instances share the
// same sessions.
//
// Entries expire with the configured TTL so abandoned sessions do not
// accumulate; a token refresh rewrites the entry and restarts its TTL.
type Store struct {
	states cache.Cache[string]
	tokens cache.Cache[oauth.TokenSet]
	ttl    time.Duration
}

// New creates a credential store over the given cache backends.
func New(
	states cache.Cache[string],
	tokens cache.Cache[oauth.TokenSet],
	ttl time.Duration,
) *Store {
	return &Store{
		states: states,
		tokens: tokens,
		ttl:    ttl,
	}
}

// PendingState returns the session's pending authorization state.
func (s *Store) PendingState(ctx context.Context, sessionID string) (string, error) {
	state, err := s.states.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return "", oauth.ErrNoPendingState
		}
		return "", fmt.Errorf("get pending state: %w", err)
	}
	return state, nil
}

// SetPendingState stores the session's pending authorization state,
// overwriting any previous one.
func (s *Store) SetPendingState(ctx context.Context, sessionID, state string) error {
	if err := s.states.Set(ctx, sessionID, state, s.ttl); err != nil {
		return fmt.Errorf("set pending state: %w", err)
	}
	return nil
}

// ClearPendingState removes the session's pending state. Clearing an
// absent state is a no-op.
func (s *Store) ClearPendingState(ctx context.Context, sessionID string) error {
	if err := s.states.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear pending state: %w", err)
	}
	return nil
}

// Tokens returns the session's current token set.
func (s *Store) Tokens(ctx context.Context, sessionID string) (*oauth.TokenSet, error) {
	ts, err := s.tokens.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, oauth.ErrNoTokens
		}
		return nil, fmt.Errorf("get token set: %w", err)
	}
	return &ts, nil
}

// SetTokens replaces the session's token set as a whole.
func (s *Store) SetTokens(ctx context.Context, sessionID string, ts *oauth.TokenSet) error {
	if ts == nil {
		return fmt.Errorf("set token set: nil token set")
	}
	if err := s.tokens.Set(ctx, sessionID, *ts, s.ttl); err != nil {
		return fmt.Errorf("set token set: %w", err)
	}
	return nil
}

// ClearTokens removes the session's token set. Clearing an absent set is a
// no-op.
func (s *Store) ClearTokens(ctx context.Context, sessionID string) error {
	if err := s.tokens.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear token set: %w", err)
	}
	return nil
}

// Close releases the underlying cache backends.
func (s *Store) Close() error {
	if err := s.states.Close(); err != nil {
		return err
	}
	return s.tokens.Close()
}

// Health reports whether both cache backends are reachable.
func (s *Store) Health(ctx context.Context) error {
	if err := s.states.Health(ctx); err != nil {
		return err
	}
	return s.tokens.Health(ctx)
}
