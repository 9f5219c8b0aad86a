package middleware

import (
	"net/http"
	"strings"

	"streamhub/pkg/token"

	"github.com/gin-gonic/gin"
)

const AccessTokenCookie = "accessToken"

// AuthMiddleware authenticates a request with an access token taken from
// the accessToken cookie or, failing that, the Authorization header.
func AuthMiddleware(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(AccessTokenCookie)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
				c.Abort()
				return
			}
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		claims, err := codec.VerifyAccess(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("username", claims.Username)
		c.Next()
	}
}
