package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
	"github.com/noah-isme/attendance-sync-api/pkg/response"
)

// ContextUserKey is the gin context key storing the verified identity.
const ContextUserKey = "currentUser"

// Auth protects routes by requiring a bearer credential accepted by verifier.
func Auth(verifier idtoken.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, idtoken.ErrKeysUnavailable) {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "identity provider unavailable"))
			} else {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired token"))
			}
			c.Abort()
			return
		}

		c.Set(ContextUserKey, identity)
		c.Next()
	}
}

// Identity returns the verified identity attached by Auth.
func Identity(c *gin.Context) *idtoken.Identity {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*idtoken.Identity)
	return identity
}
