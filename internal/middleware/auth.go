package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	loggedInKey = "loggedIn"
	usernameKey = "username"
)

// Authenticator decides whether a request carries a valid session.
type Authenticator interface {
	Authenticate(r *http.Request) (username string, ok bool)
}

// Authenticate records the request-scoped login state for later handlers
// and templates. It never rejects a request on its own.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := a.Authenticate(c.Request)
		c.Set(loggedInKey, ok)
		if ok {
			c.Set(usernameKey, username)
		}
		c.Next()
	}
}

// LoggedIn reports the flag set by Authenticate; false when it never ran.
func LoggedIn(c *gin.Context) bool {
	return c.GetBool(loggedInKey)
}

func GetUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(usernameKey)
	if !exists {
		return "", false
	}
	return username.(string), true
}

// RequireLogin redirects anonymous requests to listPath without running the
// protected handler. A GET of listPath itself is handed to landing instead,
// since redirecting it to itself would loop.
func RequireLogin(listPath string, landing gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if LoggedIn(c) {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodGet && c.Request.URL.Path == listPath {
			landing(c)
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, listPath)
		c.Abort()
	}
}
