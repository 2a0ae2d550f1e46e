package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/spaceshelter/oauth2-sample-client/internal/metrics"
)

// ResourceClient invokes the protected API with the session's access token
// and performs the single transparent refresh-and-retry pass when the
// resource server answers 401.
//
// A call moves through at most three steps: the initial request, one
// refresh, one retried request. Whatever the retry returns is final, so a
// resource server that always answers 401 cannot cause a refresh loop.
type ResourceClient struct {
	endpoint  string
	store     CredentialStore
	exchanger *Exchanger
	client    *http.Client
	metrics   metrics.Recorder

	// refreshGroup deduplicates concurrent refreshes per session: when
	// several calls hit 401 around the same expiry, one performs the
	// refresh and the rest wait for its result.
	refreshGroup singleflight.Group
}

// ResourceOption configures a ResourceClient.
type ResourceOption func(*ResourceClient)

// WithHTTPClient sets the HTTP client used for resource requests.
func WithHTTPClient(httpClient *http.Client) ResourceOption {
	return func(rc *ResourceClient) {
		if httpClient != nil {
			rc.client = httpClient
		}
	}
}

// WithRecorder sets the metrics recorder used for refresh outcomes.
func WithRecorder(m metrics.Recorder) ResourceOption {
	return func(rc *ResourceClient) {
		if m != nil {
			rc.metrics = m
		}
	}
}

// NewResourceClient creates a client for one protected API endpoint.
func NewResourceClient(
	endpoint string,
	store CredentialStore,
	exchanger *Exchanger,
	opts ...ResourceOption,
) *ResourceClient {
	rc := &ResourceClient{
		endpoint:  endpoint,
		store:     store,
		exchanger: exchanger,
		client:    http.DefaultClient,
		metrics:   metrics.NewNoopMetrics(),
	}

	for _, opt := range opts {
		opt(rc)
	}

	return rc
}

// Call performs the protected API call for the session.
//
// Without a stored token set it fails with ErrNotAuthenticated. On a 401
// it refreshes once and retries once; if the refresh fails the session's
// credentials are cleared and ErrReauthenticationRequired is returned.
// Any non-401 non-2xx status surfaces as *ResourceError without touching
// credentials.
func (rc *ResourceClient) Call(ctx context.Context, sessionID string) ([]byte, error) {
	ts, err := rc.store.Tokens(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNoTokens) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("load token set: %w", err)
	}

	status, body, err := rc.do(ctx, ts.AccessToken)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		fresh, err := rc.refreshSession(ctx, sessionID, ts.AccessToken)
		if err != nil {
			return nil, err
		}

		status, body, err = rc.do(ctx, fresh.AccessToken)
		if err != nil {
			return nil, err
		}
		// The retry's outcome is final, 401 included.
	}

	if status < 200 || status >= 300 {
		return nil, &ResourceError{StatusCode: status, Body: string(body)}
	}

	return body, nil
}

// refreshSession refreshes the session's token set, storing the new set on
// success and purging credentials on failure. Concurrent callers for the
// same session share a single refresh.
func (rc *ResourceClient) refreshSession(
	ctx context.Context,
	sessionID, staleAccessToken string,
) (*TokenSet, error) {
	v, err, _ := rc.refreshGroup.Do(sessionID, func() (interface{}, error) {
		// Another call may have completed a refresh between our 401 and
		// now; reuse its result instead of refreshing again.
		current, err := rc.store.Tokens(ctx, sessionID)
		if err == nil && current.AccessToken != staleAccessToken {
			return current, nil
		}
		if err != nil && !errors.Is(err, ErrNoTokens) {
			return nil, fmt.Errorf("load token set: %w", err)
		}

		fresh, err := rc.exchanger.Refresh(ctx, current)
		rc.metrics.RecordTokenExchange(GrantRefreshToken, err == nil)
		if err != nil {
			// Unrecoverable for this session: purge credentials so the
			// caller routes the user back to authorization.
			_ = rc.store.ClearTokens(ctx, sessionID)
			return nil, fmt.Errorf("%w: %v", ErrReauthenticationRequired, err)
		}

		if err := rc.store.SetTokens(ctx, sessionID, fresh); err != nil {
			return nil, fmt.Errorf("store refreshed token set: %w", err)
		}

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*TokenSet), nil
}

// do issues one POST to the resource endpoint with bearer authentication
// and returns the status and body. Transport faults are not retried.
func (rc *ResourceClient) do(ctx context.Context, accessToken string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build resource request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := rc.client.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: "resource request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Op: "read resource response", Err: err}
	}

	return resp.StatusCode, body, nil
}
