package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainUser "civicfix/internal/domain/user"
	appErrors "civicfix/pkg/errors"
	"civicfix/pkg/utils"
)

func RoleMiddleware(allowedRoles ...domainUser.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal.IsAnonymous() {
			utils.ErrorResponseWithCode(c, http.StatusUnauthorized,
				appErrors.CodeUnauthenticated, "authentication required")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if principal.Role == allowedRole {
				c.Next()
				return
			}
		}

		utils.ErrorResponseWithCode(c, http.StatusForbidden,
			appErrors.CodeForbidden, "insufficient permissions")
		c.Abort()
	}
}

func ModeratorOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleModerator)
}
