package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
	"github.com/noah-isme/libvisit-api/pkg/logger"
	"github.com/noah-isme/libvisit-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated admin username.
const ContextUserKey = "currentUser"

// SessionAuthenticator resolves a session token to an admin username.
type SessionAuthenticator interface {
	Authenticate(token string) (string, error)
}

// Session protects admin routes with the session cookie. A Bearer header is accepted
// as a fallback for API clients.
func Session(auth SessionAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrAuthInvalid, "login required"))
			return
		}

		username, err := auth.Authenticate(token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextUserKey, username)
		c.Set(logger.ContextAdminKey, username)
		c.Next()
	}
}

// SessionToken reads the session token from the cookie or the Authorization header.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentAdmin returns the username set by Session.
func CurrentAdmin(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}
