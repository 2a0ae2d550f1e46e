package oauth

import "time"

// Credentials is the statically registered client identity used to
// authenticate against the token endpoint. Loaded once at startup and
// never mutated.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// TokenSet is the delegated-access credential pair for one session.
// A TokenSet is only ever created from a token-endpoint response and is
// always replaced as a whole; fields are never merged across exchanges.
// No expiry is tracked locally: staleness is discovered through a 401
// from the resource server.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ObtainedAt   time.Time `json:"obtained_at"`
}

// tokenResponse is the token endpoint's success payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}
