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

type studentService interface {
	Courses(ctx context.Context, actor *models.User) (*dto.StudentEnrollmentInfo, error)
	Sessions(ctx context.Context, actor *models.User) ([]models.StudentSession, error)
	Enroll(ctx context.Context, actor *models.User, req dto.EnrollRequest) (*dto.CourseResponse, error)
}

// StudentHandler exposes student self-service endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler builds a new handler.
func NewStudentHandler(service studentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// Courses godoc
// @Summary My enrollments
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/my-courses [get]
func (h *StudentHandler) Courses(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	info, err := h.service.Courses(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// Sessions godoc
// @Summary My sessions
// @Description Sessions of enrolled courses with the caller's attendance status, newest first
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/my-sessions [get]
func (h *StudentHandler) Sessions(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	sessions, err := h.service.Sessions(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Enroll godoc
// @Summary Enroll in course
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.EnrollRequest true "Course code"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student/enroll [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}
	course, err := h.service.Enroll(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}
