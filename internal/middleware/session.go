package middleware

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionIDKey is the cookie-session key holding the stable per-browser
// session identifier.
const sessionIDKey = "sid"

// EnsureSessionID assigns a session identifier on first contact. The
// identifier is the only thing kept in the cookie session; credentials
// live server-side in the credential store keyed by it.
func EnsureSessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		if id, ok := session.Get(sessionIDKey).(string); !ok || id == "" {
			session.Set(sessionIDKey, uuid.NewString())
			if err := session.Save(); err != nil {
				log.Printf("[Session] Failed to save session: %v", err)
			}
		}

		c.Next()
	}
}

// SessionID returns the request's session identifier, or "" when the
// EnsureSessionID middleware has not run.
func SessionID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(sessionIDKey).(string)
	return id
}
