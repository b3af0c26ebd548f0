package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"silant-backend/internal/access"
	e "silant-backend/internal/errors"
	"silant-backend/internal/model"
)

const (
	principalKey = "principal"
	userKey      = "user"
)

// Authenticate resolves the caller once per request. Requests without an
// Authorization header continue as anonymous; a bad token is rejected.
func (s *Service) Authenticate(resolver *access.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(principalKey, access.Anonymous)
			c.Next()
			return
		}

		userID, err := s.ValidateToken(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		user, err := s.users.GetUser(c.Request.Context(), userID)
		if errors.Is(err, e.ErrNotFound) || (err == nil && !user.IsActive) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			return
		}
		if err != nil {
			s.logger.Error("failed to load token user", zap.Int64("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		p, err := resolver.Resolve(c.Request.Context(), &user)
		if err != nil {
			s.logger.Error("failed to resolve principal", zap.Int64("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userKey, user)
		c.Set(principalKey, p)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Authenticate, or Anonymous.
func PrincipalFrom(c *gin.Context) access.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(access.Principal); ok {
			return p
		}
	}
	return access.Anonymous
}

// UserFrom returns the authenticated user, if any.
func UserFrom(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": e.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}

// RequirePermission rejects anonymous callers with 401 and callers whose
// role lacks perm with 403.
func RequirePermission(perm access.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if !p.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": e.ErrUnauthenticated.Error()})
			return
		}
		if !p.Can(perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": e.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}
