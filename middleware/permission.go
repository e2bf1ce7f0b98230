package middleware

import (
	"log"
	"net/http"

	"LittleLemon/permission"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through when the caller holds any of roles.
// It must run after CheckLoginMiddleware.
func RequireRoles(roles ...permission.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, exists := CurrentCaller(c)
		if !exists {
			log.Printf("[%s] no caller in context", RequestID(c))
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication credentials were not provided",
			})
			c.Abort()
			return
		}
		if !caller.Roles.Any(roles...) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "you do not have permission to perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
