package middleware

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-sync-api/internal/models"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/response"
)

// ContextAccountKey is the gin context key storing the caller's account.
const ContextAccountKey = "currentAccount"

type accountLookup interface {
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// Account loads the local account of the verified caller. Requests from
// identities that never bootstrapped are rejected with 404.
func Account(users accountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Identity(c)
		if identity == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := users.FindByFirebaseUID(c.Request.Context(), identity.Subject)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "User not found"))
			} else {
				response.Error(c, appErrors.Internal(err, "failed to load account"))
			}
			c.Abort()
			return
		}

		c.Set(ContextAccountKey, user)
		c.Next()
	}
}

// CurrentAccount returns the account attached by Account.
func CurrentAccount(c *gin.Context) *models.User {
	value, exists := c.Get(ContextAccountKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
