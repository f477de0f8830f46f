package middleware

import (
	"net/http"
	"strings"

	"courier"
	"courier/internal/api/models"
	"courier/pkg"

	"github.com/gin-gonic/gin"
)

const (
	ContextOperatorID    = "operatorID"
	ContextOperatorEmail = "operatorEmail"
	ContextOperatorRole  = "operatorRole"
)

// AuthMiddleware requires a valid bearer token, except in dev mode where every request passes as admin.
func AuthMiddleware(cfg courier.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Mode == "dev" {
			c.Set(ContextOperatorRole, string(models.RoleAdmin))
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		// Bearer token format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := pkg.ValidateToken(parts[1], cfg.JWTConfig.Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextOperatorID, claims.UserID)
		c.Set(ContextOperatorEmail, claims.Email)
		c.Set(ContextOperatorRole, claims.Role)

		c.Next()
	}
}

func RequireRole(roles ...models.AppRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextOperatorRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Operator role not found"})
			return
		}

		for _, allowedRole := range roles {
			if role == string(allowedRole) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
	}
}
