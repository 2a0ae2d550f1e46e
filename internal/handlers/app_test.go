package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaceshelter/oauth2-sample-client/internal/cache"
	"github.com/spaceshelter/oauth2-sample-client/internal/middleware"
	"github.com/spaceshelter/oauth2-sample-client/internal/oauth"
	"github.com/spaceshelter/oauth2-sample-client/internal/store"
)

const authorizationEndpoint = "https://provider.example/oauth2/authorize"

// newTestApp wires an AppHandler over a memory-backed store, stub provider
// servers, and a router with minimal templates.
func newTestApp(t *testing.T, tokenSrv, resourceSrv *httptest.Server) *gin.Engine {
	t.Helper()

	credStore := store.New(
		cache.NewMemoryCache[string](),
		cache.NewMemoryCache[oauth.TokenSet](),
		time.Minute,
	)

	creds := oauth.Credentials{ClientID: "test-client", ClientSecret: "test-secret"}
	flow := oauth.NewFlow(credStore, creds, authorizationEndpoint, "http://localhost/callback", "status")

	var ex *oauth.Exchanger
	if tokenSrv != nil {
		ex = oauth.NewExchanger(tokenSrv.URL, "http://localhost/callback", creds, nil)
	}

	var rc *oauth.ResourceClient
	if resourceSrv != nil {
		rc = oauth.NewResourceClient(resourceSrv.URL, credStore, ex)
	}

	h := NewAppHandler(oauth.NewClient(credStore, flow, ex, rc, nil))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(`
{{define "home.html"}}home authenticated={{.Authenticated}}{{end}}
{{define "start.html"}}start{{end}}
{{define "status.html"}}status {{.Body}}{{end}}
{{define "error.html"}}error {{.Error}}{{end}}
`)))

	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(middleware.EnsureSessionID())

	r.GET("/", h.Home)
	r.GET("/login", h.Login)
	r.GET("/start", h.Start)
	r.GET("/callback", h.Callback)
	r.GET("/status", h.Status)
	r.GET("/logout", h.Logout)

	return r
}

// browser carries cookies between requests like a user agent would.
type browser struct {
	r       *gin.Engine
	cookies []*http.Cookie
}

func (b *browser) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
	require.NoError(t, err)
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	b.r.ServeHTTP(w, req)

	if set := w.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return w
}

// stateFromRedirect extracts the state parameter from a login redirect.
func stateFromRedirect(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func newStubTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "A1",
			"refresh_token": "R1",
			"scope":         "status",
		})
	}))
}

func newStubResourceServer(validToken string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"username":"orbitar-user"}`))
	}))
}

func TestHome_Unauthenticated(t *testing.T) {
	r := newTestApp(t, nil, nil)
	b := &browser{r: r}

	w := b.get(t, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "authenticated=false")
}

func TestLogin_RedirectsToAuthorizationEndpoint(t *testing.T) {
	r := newTestApp(t, nil, nil)
	b := &browser{r: r}

	w := b.get(t, "/login")

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "provider.example", loc.Host)
	assert.Equal(t, "/oauth2/authorize", loc.Path)
	assert.Equal(t, "test-client", loc.Query().Get("client_id"))
	assert.NotEmpty(t, loc.Query().Get("state"))
}

func TestCallback_FullFlow(t *testing.T) {
	tokenSrv := newStubTokenServer(t)
	defer tokenSrv.Close()
	resourceSrv := newStubResourceServer("A1")
	defer resourceSrv.Close()

	r := newTestApp(t, tokenSrv, resourceSrv)
	b := &browser{r: r}

	state := stateFromRedirect(t, b.get(t, "/login"))

	w := b.get(t, "/callback?code=abc&state="+url.QueryEscape(state))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// Home now reports the authenticated state.
	w = b.get(t, "/")
	assert.Contains(t, w.Body.String(), "authenticated=true")

	// The protected API renders through the status page.
	w = b.get(t, "/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "orbitar-user")
}

func TestCallback_WrongState(t *testing.T) {
	tokenSrv := newStubTokenServer(t)
	defer tokenSrv.Close()

	r := newTestApp(t, tokenSrv, nil)
	b := &browser{r: r}

	b.get(t, "/login")

	w := b.get(t, "/callback?code=abc&state=forged")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "State validation failed")
}

func TestCallback_MissingCode(t *testing.T) {
	tokenSrv := newStubTokenServer(t)
	defer tokenSrv.Close()

	r := newTestApp(t, tokenSrv, nil)
	b := &browser{r: r}

	state := stateFromRedirect(t, b.get(t, "/login"))

	w := b.get(t, "/callback?state="+url.QueryEscape(state))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no authorization code")
}

func TestCallback_ProviderRejectsCode(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenSrv.Close()

	r := newTestApp(t, tokenSrv, nil)
	b := &browser{r: r}

	state := stateFromRedirect(t, b.get(t, "/login"))

	w := b.get(t, "/callback?code=bad&state="+url.QueryEscape(state))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatus_UnauthenticatedRedirectsToLogin(t *testing.T) {
	resourceSrv := newStubResourceServer("A1")
	defer resourceSrv.Close()

	r := newTestApp(t, nil, resourceSrv)
	b := &browser{r: r}

	w := b.get(t, "/status")

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogout_ForgetsCredentials(t *testing.T) {
	tokenSrv := newStubTokenServer(t)
	defer tokenSrv.Close()
	resourceSrv := newStubResourceServer("A1")
	defer resourceSrv.Close()

	r := newTestApp(t, tokenSrv, resourceSrv)
	b := &browser{r: r}

	state := stateFromRedirect(t, b.get(t, "/login"))
	require.Equal(t, http.StatusFound, b.get(t, "/callback?code=abc&state="+url.QueryEscape(state)).Code)

	w := b.get(t, "/logout")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// Back to the unauthenticated state.
	w = b.get(t, "/")
	assert.Contains(t, w.Body.String(), "authenticated=false")
	w = b.get(t, "/status")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestStart_RendersPage(t *testing.T) {
	r := newTestApp(t, nil, nil)
	b := &browser{r: r}

	w := b.get(t, "/start")

	assert.Equal(t, http.StatusOK, w.Code)
}
