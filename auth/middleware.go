package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key carrying the authenticated subject.
// The identity is attached once per request by Middleware; handlers read it
// back with UserFromContext instead of reconstructing it from shared state.
const UserIDKey = "user_id"

// Middleware validates the Authorization header of incoming HTTP calls and
// injects the authenticated user id into the request context. Requests
// without a valid bearer token are rejected before reaching any handler.
func Middleware(authenticator *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is missing"})
			return
		}

		userID, err := authenticator.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserFromContext returns the identity bound by Middleware, if any.
func UserFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	return userID, userID != ""
}

// BearerToken extracts the credential from a standard "Bearer <token>"
// header value. It reports false when the header is absent or not in the
// expected format, leaving the distinction between "no credential" and
// "bad credential" to the caller.
func BearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}
