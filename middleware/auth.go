package middleware

import (
	"net/http"
	"strings"

	"glowdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// CallerIDKey is the gin context key under which the authenticated caller's
// id is stored.
const CallerIDKey = "callerID"

// JWTAuthMiddleware validates the bearer token and stores the caller id
// (customer, employee or owner) in the request context. The engine's own
// authorization checks decide what that caller may do.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// Validate the token signature and expiration.
		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token missing subject"})
			return
		}

		c.Set(CallerIDKey, sub)
		c.Next()
	}
}

// CallerID returns the authenticated caller id from the gin context.
func CallerID(c *gin.Context) string {
	if v, exists := c.Get(CallerIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
