package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsorel/chatter/internal/auth"
)

const identityKey = "identity"

// RequireAuth rejects requests without a valid bearer token and stashes the
// caller's identity in the gin context for the handlers downstream.
func RequireAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		who, err := tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(identityKey, who)
		c.Next()
	}
}

// CallerIdentity returns the identity stored by RequireAuth.
func CallerIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	who, ok := v.(auth.Identity)
	return who, ok
}
