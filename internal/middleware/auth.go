package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"civicfix/internal/config"
	domainUser "civicfix/internal/domain/user"
	appErrors "civicfix/pkg/errors"
	"civicfix/pkg/utils"
)

const principalKey = "principal"

// AuthMiddleware verifies the bearer credential and puts the resolved
// Principal into the request context. Requests without a valid token are
// rejected before dispatch.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromHeader(c, cfg)
		if err != nil {
			utils.ErrorResponseWithCode(c, http.StatusUnauthorized,
				appErrors.CodeUnauthenticated, err.Error())
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves a Principal when a valid token is present
// and leaves the anonymous principal otherwise. Used on read endpoints where
// unauthenticated access is allowed.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, err := principalFromHeader(c, cfg); err == nil {
			c.Set(principalKey, principal)
		}
		c.Next()
	}
}

func principalFromHeader(c *gin.Context, cfg *config.Config) (domainUser.Principal, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return domainUser.Anonymous, appErrors.ErrUnauthenticated
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return domainUser.Anonymous, appErrors.ErrInvalidToken
	}

	claims, err := utils.ValidateToken(parts[1], cfg.JWT.Secret)
	if err != nil {
		return domainUser.Anonymous, appErrors.ErrInvalidToken
	}

	return domainUser.Principal{
		UserID: claims.UserID,
		Role:   domainUser.Role(claims.Role),
	}, nil
}

// GetPrincipal returns the request's principal; the zero value is anonymous.
func GetPrincipal(c *gin.Context) domainUser.Principal {
	if v, exists := c.Get(principalKey); exists {
		if p, ok := v.(domainUser.Principal); ok {
			return p
		}
	}
	return domainUser.Anonymous
}
