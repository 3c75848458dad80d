package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
	"github.com/noah-isme/attendance-sync-api/pkg/response"
)

type identityService interface {
	Bootstrap(ctx context.Context, identity *idtoken.Identity, requestedRole string) (*models.User, bool, error)
}

// AuthHandler wires account bootstrap to the identity service.
type AuthHandler struct {
	service identityService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc identityService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Bootstrap godoc
// @Summary Bootstrap account
// @Description Create or refresh the local account of the verified caller. Unknown roles fall back to student.
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BootstrapRequest false "Requested role"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /auth/bootstrap [post]
func (h *AuthHandler) Bootstrap(c *gin.Context) {
	var req dto.BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bootstrap payload"))
		return
	}

	user, isNew, err := h.service.Bootstrap(c.Request.Context(), identityFromContext(c), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.BootstrapResponse{
		FirebaseUID:      user.FirebaseUID,
		Role:             string(user.Role),
		ProfileCompleted: user.ProfileCompleted,
		IsNewUser:        isNew,
	})
}
