package middleware

import (
	"context"
	"log"
	"strings"

	"LittleLemon/permission"
	"LittleLemon/services"

	"github.com/gin-gonic/gin"
)

const (
	TokenKey  = "Token"
	UserIDKey = "UserID"
	CallerKey = "Caller"
)

// Authenticator resolves a bearer token into a caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (permission.Caller, error)
}

// AuthMiddleware identifies the caller when a valid token is sent. Requests
// without one continue anonymously; CheckLoginMiddleware rejects them where
// login is required.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if token == "" {
			c.Next()
			return
		}

		caller, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Printf("[%s] cannot verify token: %v", RequestID(c), err)
			c.Header("Authorization", "")
			c.Next()
			return
		}

		c.Set(TokenKey, token)
		c.Set(UserIDKey, caller.UserID)
		c.Set(CallerKey, caller)
		c.Next()
	}
}

// CurrentCaller returns the authenticated caller set by AuthMiddleware.
func CurrentCaller(c *gin.Context) (permission.Caller, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return permission.Caller{}, false
	}
	caller, ok := v.(permission.Caller)
	return caller, ok
}

var _ Authenticator = (*services.UserService)(nil)
