package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rescueradar/models"
	"rescueradar/utils"
)

const (
	contextClaimsKey = "claims"
	contextRoleKey   = "userRole"
	contextSubject   = "userID"
)

type AuthMiddleware struct {
	jwtService *utils.JWTService
}

func NewAuthMiddleware(jwtService *utils.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireAuth validates the bearer token and stores its claims on the context
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c, "Authentication token required", "AUTH_TOKEN_REQUIRED")
			return
		}

		claims, err := am.jwtService.ValidateToken(token)
		if err != nil {
			logrus.Warnf("Invalid token from %s: %v", c.ClientIP(), err)
			abortUnauthorized(c, "Invalid authentication token", "AUTH_TOKEN_INVALID")
			return
		}

		c.Set(contextClaimsKey, claims)
		c.Set(contextSubject, claims.Subject)
		c.Set(contextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole must run after RequireAuth
func (am *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(contextRoleKey)
		if role == "" {
			abortUnauthorized(c, "User role not found in token", "AUTH_ROLE_MISSING")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			models.NewErrorResponse("FORBIDDEN", "Insufficient permissions", models.CodeForbidden, c.GetString("request_id")))
	}
}

// RequireAdmin is RequireAuth followed by RequireRole(admin)
func (am *AuthMiddleware) RequireAdmin() []gin.HandlerFunc {
	return []gin.HandlerFunc{am.RequireAuth(), am.RequireRole(utils.RoleAdmin)}
}

// GetClaims returns the validated token claims, if any
func GetClaims(c *gin.Context) (*utils.Claims, bool) {
	value, exists := c.Get(contextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*utils.Claims)
	return claims, ok
}

func extractToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message, code string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		models.NewErrorResponse("UNAUTHORIZED", message, code, c.GetString("request_id")))
}
