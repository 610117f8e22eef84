package httpapi

import (
	"net/http"
	"strings"

	"github.com/avasilkov/keyvault/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// userIDKey is the gin context key holding the authenticated principal's id.
const userIDKey = "userID"

// authenticated extracts and verifies the bearer token. A missing header is
// unauthorized, a header that is not a bearer scheme is a malformed request,
// and a token that fails verification (bad signature, expired) is
// unauthorized again.
func (s *Server) authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed authorization header"})
			return
		}

		userID, err := auth.GetUserIDFromToken(tokenString, s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
