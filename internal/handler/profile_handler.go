package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/response"
)

type profileService interface {
	Complete(ctx context.Context, actor *models.User, req dto.CompleteProfileRequest) (*dto.CompleteProfileResponse, error)
	Update(ctx context.Context, actor *models.User, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	Info(ctx context.Context, actor *models.User) (*dto.ProfileInfoResponse, error)
}

// ProfileHandler exposes profile endpoints.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler builds a new handler.
func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Complete godoc
// @Summary Complete profile
// @Description Store registration number and department and create the student or lecturer record
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CompleteProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profile/complete [post]
func (h *ProfileHandler) Complete(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	var req dto.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	res, err := h.service.Complete(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Info godoc
// @Summary Profile info
// @Description Return the caller's profile and whether the role record exists
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/info [get]
func (h *ProfileHandler) Info(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	res, err := h.service.Info(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Update godoc
// @Summary Update profile
// @Description Partially update the caller's profile; blank fields are ignored
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profile/update [patch]
func (h *ProfileHandler) Update(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	res, err := h.service.Update(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}
