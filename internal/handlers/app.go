package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spaceshelter/oauth2-sample-client/internal/middleware"
	"github.com/spaceshelter/oauth2-sample-client/internal/oauth"
)

// AppHandler serves the demonstration pages around the OAuth client's four
// operations. Everything here is presentation: the handlers translate
// query parameters and redirects to and from the core and render the
// results.
type AppHandler struct {
	oauth *oauth.Client
}

// NewAppHandler creates the demo page handler.
func NewAppHandler(oauthClient *oauth.Client) *AppHandler {
	return &AppHandler{oauth: oauthClient}
}

// Home renders the landing page with the actions available to the
// session's current authentication state.
func (h *AppHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Authenticated": h.oauth.Authenticated(c.Request.Context(), middleware.SessionID(c)),
	})
}

// Login begins a new authorization attempt and redirects the user agent to
// the authorization endpoint.
func (h *AppHandler) Login(c *gin.Context) {
	redirectURL, err := h.oauth.BeginAuthorization(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		log.Printf("[OAuth] Failed to begin authorization: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Error": "Failed to initiate authorization. Please try again.",
		})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

// Start renders the landing page a user would reach from the provider's
// "Start" button on an embedded app card.
func (h *AppHandler) Start(c *gin.Context) {
	c.HTML(http.StatusOK, "start.html", gin.H{})
}

// Callback completes the authorization: it validates the state parameter,
// exchanges the code, and stores the resulting token set.
func (h *AppHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	err := h.oauth.CompleteAuthorization(c.Request.Context(), middleware.SessionID(c), code, state)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/")

	case errors.Is(err, oauth.ErrStateValidationFailed):
		c.HTML(http.StatusForbidden, "error.html", gin.H{
			"Error": "State validation failed. Please restart the authorization flow.",
		})

	case errors.Is(err, oauth.ErrMissingAuthorizationCode):
		c.HTML(http.StatusBadRequest, "error.html", gin.H{
			"Error": "The callback carried no authorization code.",
		})

	default:
		log.Printf("[OAuth] Failed to complete authorization: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Error": "Error during authorization. Please try again.",
		})
	}
}

// Status calls the protected API and renders its response. Sessions whose
// credentials are missing or beyond refreshing are routed back to the
// authorization flow.
func (h *AppHandler) Status(c *gin.Context) {
	body, err := h.oauth.CallResource(c.Request.Context(), middleware.SessionID(c))
	switch {
	case err == nil:
		c.HTML(http.StatusOK, "status.html", gin.H{
			"Body": prettyJSON(body),
		})

	case errors.Is(err, oauth.ErrNotAuthenticated),
		errors.Is(err, oauth.ErrReauthenticationRequired):
		c.Redirect(http.StatusFound, "/login")

	default:
		log.Printf("[OAuth] Resource call failed: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Error": "Error calling the API. Please try again.",
		})
	}
}

// Logout forgets the session's credentials and returns to the home page.
func (h *AppHandler) Logout(c *gin.Context) {
	if err := h.oauth.Logout(c.Request.Context(), middleware.SessionID(c)); err != nil {
		log.Printf("[OAuth] Failed to log out: %v", err)
	}

	c.Redirect(http.StatusFound, "/")
}

// prettyJSON indents a JSON document for display, falling back to the raw
// body when it is not valid JSON.
func prettyJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}
