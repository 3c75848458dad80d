package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-sync-api/internal/middleware"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
	"github.com/noah-isme/attendance-sync-api/pkg/response"
)

func identityFromContext(c *gin.Context) *idtoken.Identity {
	return middleware.Identity(c)
}

// accountFromContext returns the caller's account, writing a 401 when it is absent.
func accountFromContext(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentAccount(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

// idParam parses the positive integer route parameter name, writing a 400 when invalid.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}
