package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// RequireRoles admits callers whose role satisfies one of roles. Admins always pass.
// It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.Role.Satisfies(roles...) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}
