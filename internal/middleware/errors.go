package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandler answers for handlers that hand their failure to c.Error
// instead of writing a response: 500 with the last error's message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RespondWithError(c, http.StatusInternalServerError, c.Errors.Last().Error())
	}
}
