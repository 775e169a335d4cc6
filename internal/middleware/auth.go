package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"artforge/internal/models"
	"artforge/internal/security"
	"artforge/internal/service"
)

const (
	currentUserKey  = "current_user"
	accessClaimsKey = "access_claims"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token, ipAddress, userAgent string) (models.User, security.AccessClaims, error)
}

func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		user, claims, err := auth.Authenticate(c.Request.Context(), tokenStr, c.ClientIP(), c.GetHeader("User-Agent"))
		if err != nil {
			if errors.Is(err, service.ErrUserSuspended) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(accessClaimsKey, claims)
		c.Set(currentUserKey, user)

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

func AccessClaims(c *gin.Context) (security.AccessClaims, bool) {
	val, exists := c.Get(accessClaimsKey)
	if !exists {
		return security.AccessClaims{}, false
	}
	claims, ok := val.(security.AccessClaims)
	return claims, ok
}

// SetCurrentUser stores an authenticated user the way Auth does.
func SetCurrentUser(c *gin.Context, user models.User, claims security.AccessClaims) {
	c.Set(accessClaimsKey, claims)
	c.Set(currentUserKey, user)
}
