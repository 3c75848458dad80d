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

type courseService interface {
	Create(ctx context.Context, actor *models.User, req dto.CourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, actor *models.User, courseID int64, req dto.CourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, actor *models.User, courseID int64) error
	ListMine(ctx context.Context, actor *models.User) (*dto.CourseListResponse, error)
	Sessions(ctx context.Context, actor *models.User, courseID int64) ([]dto.SessionResponse, error)
	Students(ctx context.Context, actor *models.User, courseID int64) ([]models.StudentSummary, error)
}

// CourseHandler exposes lecturer course endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler builds a new handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/create [post]
func (h *CourseHandler) Create(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id} [patch]
func (h *CourseHandler) Update(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// Mine godoc
// @Summary List my courses
// @Description Courses owned by the calling lecturer; empty for other roles
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses/my-courses [get]
func (h *CourseHandler) Mine(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	list, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list)
}

// Sessions godoc
// @Summary List course sessions
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/sessions [get]
func (h *CourseHandler) Sessions(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sessions, err := h.service.Sessions(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Students godoc
// @Summary List course roster
// @Description Students enrolled in the course or holding attendance in it
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/students [get]
func (h *CourseHandler) Students(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	students, err := h.service.Students(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}
