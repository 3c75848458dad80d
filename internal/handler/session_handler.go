package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/service"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/response"
)

type sessionService interface {
	Create(ctx context.Context, actor *models.User, req dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Attendance(ctx context.Context, actor *models.User, sessionID int64) ([]models.AttendanceRow, error)
	Export(ctx context.Context, actor *models.User, sessionID int64, format string) (*service.ExportFile, error)
}

// SessionHandler exposes attendance session endpoints.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Create godoc
// @Summary Start session
// @Description Open a one hour attendance session on one of the caller's courses
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSessionRequest true "Session payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/create [post]
func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Attendance godoc
// @Summary Session attendance
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *SessionHandler) Attendance(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.service.Attendance(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Export godoc
// @Summary Export session attendance
// @Tags Sessions
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/attendance/export [get]
func (h *SessionHandler) Export(c *gin.Context) {
	actor, ok := accountFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), actor, id, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
