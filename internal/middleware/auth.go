package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"event-chat-service/internal/auth"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextToken    = "token"
)

// Auth validates the Authorization header and stores the resolved identity
// plus the raw token; the chat core re-resolves the token itself, this is a
// fail-fast gate for the HTTP surface.
func Auth(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		identity, err := verifier.ResolveIdentity(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUsername, identity.Username)
		c.Set(ContextToken, parts[1])
		c.Next()
	}
}
