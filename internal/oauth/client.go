package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaceshelter/oauth2-sample-client/internal/metrics"
)

// Resource call results recorded in metrics.
const (
	callResultSuccess          = "success"
	callResultNotAuthenticated = "not_authenticated"
	callResultReauthRequired   = "reauth_required"
	callResultAPIError         = "api_error"
	callResultTransportError   = "transport_error"
	callResultError            = "error"
)

// Client composes the authorization flow, token exchanger, and resource
// client behind the four session-level operations the web layer invokes:
// begin-authorization, complete-authorization, call-protected-resource,
// and forget-credentials.
type Client struct {
	store     CredentialStore
	flow      *Flow
	exchanger *Exchanger
	resource  *ResourceClient
	metrics   metrics.Recorder
}

// NewClient wires the composed OAuth client. A nil recorder disables
// metrics recording.
func NewClient(
	store CredentialStore,
	flow *Flow,
	exchanger *Exchanger,
	resource *ResourceClient,
	m metrics.Recorder,
) *Client {
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &Client{
		store:     store,
		flow:      flow,
		exchanger: exchanger,
		resource:  resource,
		metrics:   m,
	}
}

// BeginAuthorization starts a new authorization attempt and returns the
// authorization-endpoint URL to redirect the user agent to.
func (c *Client) BeginAuthorization(ctx context.Context, sessionID string) (string, error) {
	redirectURL, err := c.flow.Begin(ctx, sessionID)
	if err != nil {
		return "", err
	}

	c.metrics.RecordAuthorizationStarted()
	return redirectURL, nil
}

// CompleteAuthorization validates the callback, exchanges the code, and
// stores the resulting token set. The store is only mutated once the
// exchange has confirmed success, so a failed callback never leaves a
// partially updated session.
func (c *Client) CompleteAuthorization(ctx context.Context, sessionID, code, state string) error {
	code, err := c.flow.Complete(ctx, sessionID, code, state)
	if err != nil {
		c.metrics.RecordAuthorizationCallback(false)
		return err
	}

	ts, err := c.exchanger.ExchangeCode(ctx, code)
	c.metrics.RecordTokenExchange(GrantAuthorizationCode, err == nil)
	if err != nil {
		c.metrics.RecordAuthorizationCallback(false)
		return err
	}

	if err := c.store.SetTokens(ctx, sessionID, ts); err != nil {
		c.metrics.RecordAuthorizationCallback(false)
		return fmt.Errorf("store token set: %w", err)
	}

	c.metrics.RecordAuthorizationCallback(true)
	return nil
}

// CallResource invokes the protected API for the session, refreshing and
// retrying once on 401.
func (c *Client) CallResource(ctx context.Context, sessionID string) ([]byte, error) {
	body, err := c.resource.Call(ctx, sessionID)
	c.metrics.RecordResourceCall(classifyCallResult(err))
	return body, err
}

// Logout unconditionally discards the session's token set and any pending
// authorization state. Calling it with nothing stored is a no-op.
func (c *Client) Logout(ctx context.Context, sessionID string) error {
	if err := c.store.ClearTokens(ctx, sessionID); err != nil {
		return fmt.Errorf("clear token set: %w", err)
	}
	if err := c.store.ClearPendingState(ctx, sessionID); err != nil {
		return fmt.Errorf("clear pending state: %w", err)
	}

	c.metrics.RecordLogout()
	return nil
}

// Authenticated reports whether the session currently holds a token set.
func (c *Client) Authenticated(ctx context.Context, sessionID string) bool {
	_, err := c.store.Tokens(ctx, sessionID)
	return err == nil
}

func classifyCallResult(err error) string {
	switch {
	case err == nil:
		return callResultSuccess
	case errors.Is(err, ErrNotAuthenticated):
		return callResultNotAuthenticated
	case errors.Is(err, ErrReauthenticationRequired):
		return callResultReauthRequired
	}

	var resourceErr *ResourceError
	if errors.As(err, &resourceErr) {
		return callResultAPIError
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return callResultTransportError
	}

	return callResultError
}
