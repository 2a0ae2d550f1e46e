package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Grant type constants for the token endpoint.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// Exchanger trades an authorization code, or a refresh token, for a token
// set at the token endpoint. Requests are form-encoded POSTs authenticated
// with HTTP Basic client credentials. The exchanger never retries: every
// failure is returned to the caller.
type Exchanger struct {
	endpoint    string
	redirectURI string
	creds       Credentials
	client      *http.Client
}

// NewExchanger creates a token exchanger. A nil httpClient falls back to
// http.DefaultClient; production callers pass the timeout-configured client
// built in internal/client.
func NewExchanger(
	endpoint, redirectURI string,
	creds Credentials,
	httpClient *http.Client,
) *Exchanger {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Exchanger{
		endpoint:    endpoint,
		redirectURI: redirectURI,
		creds:       creds,
		client:      httpClient,
	}
}

// ExchangeCode trades an authorization code for a fresh token set.
func (e *Exchanger) ExchangeCode(ctx context.Context, code string) (*TokenSet, error) {
	nonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", GrantAuthorizationCode)
	form.Set("code", code)
	form.Set("redirect_uri", e.redirectURI)
	form.Set("nonce", nonce)

	return e.requestToken(ctx, GrantAuthorizationCode, form)
}

// Refresh trades the token set's refresh token for a brand-new token set.
// The old set is discarded in full: if the provider omits a rotated
// refresh token, the new set has none, which forces re-authentication on
// the next expiry as the provider intended.
func (e *Exchanger) Refresh(ctx context.Context, ts *TokenSet) (*TokenSet, error) {
	if ts == nil || ts.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", GrantRefreshToken)
	form.Set("refresh_token", ts.RefreshToken)

	return e.requestToken(ctx, GrantRefreshToken, form)
}

func (e *Exchanger) requestToken(
	ctx context.Context,
	grant string,
	form url.Values,
) (*TokenSet, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.endpoint,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(e.creds.ClientID, e.creds.ClientSecret)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "token request (" + grant + ")", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read token response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ExchangeError{
			Grant:      grant,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	return &TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		Scope:        tr.Scope,
		ObtainedAt:   time.Now(),
	}, nil
}
