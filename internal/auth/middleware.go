package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityContextKey = "auth_identity"

// Middleware validates bearer tokens and stores the authenticated identity
// in the context. Protected handlers run only after this succeeds, so no
// partial side effects happen for unauthenticated requests.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := s.ExtractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
			return
		}
		identity, err := s.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrUserNotFound) {
				status = http.StatusNotFound
			}
			c.AbortWithStatusJSON(status, gin.H{"detail": err.Error()})
			return
		}
		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// IdentityFromContext retrieves the authenticated identity set by Middleware.
func IdentityFromContext(c *gin.Context) (*Identity, bool) {
	val, ok := c.Get(identityContextKey)
	if !ok {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}

const bearerPrefix = "Bearer "

// ExtractToken pulls the bearer token from the Authorization header. The
// scheme matches case-insensitively without copying the token.
func (s *Service) ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader(s.headerName)
	if len(authHeader) > len(bearerPrefix) && strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(authHeader[len(bearerPrefix):])
	}
	return ""
}
