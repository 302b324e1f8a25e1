package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PostPilot/internal/auth"
)

const identityKey = "postpilot.identity"

// Authenticator resolves a request into an identity
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.Identity, *auth.Rejection)
}

// RequireSession rejects requests without a valid session cookie and stores
// the identity on the context.
func RequireSession(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, rej := a.Authenticate(c.Request)
		if rej != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

// Identity returns the identity stored by RequireSession
func Identity(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	ident, ok := v.(*auth.Identity)
	return ident, ok
}
