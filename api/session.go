package api

import (
	"net/http"
	"strings"

	"searchbot/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionKey      = "session_id"
	maxSessionIDLen = 128
	sessionMaxAge   = 7 * 24 * 60 * 60
)

// sessionMiddleware resolves the caller's session id from the X-Session-ID
// header or the session cookie, issuing a new cookie when neither is present.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(config.SessionHeader))
		if !validSessionID(id) {
			id, _ = c.Cookie(config.SessionCookie)
		}
		if !validSessionID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(config.SessionCookie, id, sessionMaxAge, "/", "", false, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

func validSessionID(id string) bool {
	return id != "" && len(id) <= maxSessionIDLen
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
