package middleware

import (
	"strings"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/config"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware guards the admin surface. Tokens are issued by the intranet
// auth service; this side only validates them.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(parts[1], cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}

// RequireRole allows only the listed roles past. Runs after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get("userRole")
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		util.Forbidden(c)
		c.Abort()
	}
}
