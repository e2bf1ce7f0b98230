package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CheckLoginMiddleware aborts requests that carry no valid token.
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := CurrentCaller(c); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication credentials were not provided",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
