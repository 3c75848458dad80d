package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/export"
)

var attendanceExportHeaders = []string{"matric_no", "name", "email", "status", "verified", "timestamp"}

// ExportFile is a rendered attendance sheet.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// SessionService starts sessions and reports their attendance.
type SessionService struct {
	repos     repository.Repositories
	validator *validator.Validate
	now       func() time.Time
	logger    *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(repos repository.Repositories, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repos: repos, validator: validate, now: time.Now, logger: logger}
}

// Create opens a session on one of the caller's courses, starting now.
func (s *SessionService) Create(ctx context.Context, actor *models.User, req dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if err := requireRole(actor, models.RoleLecturer, "Only lecturers can start sessions"); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "course_id is required")
	}
	lecturer, err := lecturerProfile(ctx, s.repos, actor)
	if err != nil {
		return nil, err
	}
	course, err := ownCourseOrNotFound(ctx, s.repos, lecturer, req.CourseID)
	if err != nil {
		return nil, err
	}

	start := s.now().UTC()
	session := &models.Session{CourseID: course.CourseID, StartTime: start, EndTime: start.Add(models.DefaultSessionLength)}
	if err := s.repos.Sessions().Create(ctx, session); err != nil {
		s.logger.Error("create session failed", zap.Int64("course_id", course.CourseID), zap.Error(err))
		return nil, appErrors.Internal(err, "Failed to create session (database error).")
	}
	s.logger.Info("session started", zap.Int64("session_id", session.SessionID), zap.Int64("course_id", course.CourseID))
	resp := dto.NewSessionResponse(*session)
	return &resp, nil
}

// Attendance lists the check-ins of a session owned by the caller.
func (s *SessionService) Attendance(ctx context.Context, actor *models.User, sessionID int64) ([]models.AttendanceRow, error) {
	if err := requireRole(actor, models.RoleLecturer, "Only lecturers can view attendance"); err != nil {
		return nil, err
	}
	session, err := s.ownedSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Attendance().ListBySession(ctx, session.SessionID)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to retrieve attendance.")
	}
	if rows == nil {
		rows = []models.AttendanceRow{}
	}
	return rows, nil
}

// Export renders the attendance of a session as csv or pdf.
func (s *SessionService) Export(ctx context.Context, actor *models.User, sessionID int64, format string) (*ExportFile, error) {
	renderer, ok := export.ForFormat(format)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	rows, err := s.Attendance(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Session %d attendance", sessionID),
		Headers: attendanceExportHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"matric_no": deref(row.Student.MatricNo),
			"name":      deref(row.Student.Name),
			"email":     deref(row.Student.Email),
			"status":    deref(row.Status),
			"verified":  strconv.FormatBool(row.Verified),
			"timestamp": row.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to export attendance.")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("session-%d-attendance.%s", sessionID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// ownedSession resolves a session whose course belongs to the caller. Sessions
// of other lecturers are reported as missing.
func (s *SessionService) ownedSession(ctx context.Context, actor *models.User, sessionID int64) (*models.Session, error) {
	lecturer, err := lecturerProfile(ctx, s.repos, actor)
	if err != nil {
		return nil, err
	}
	session, err := s.repos.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	course, err := s.repos.Courses().FindByID(ctx, session.CourseID)
	if err != nil && !isNotFound(err) {
		return nil, appErrors.Internal(err, "failed to load course")
	}
	if course == nil || !course.OwnedBy(lecturer.LecturerID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Session not found")
	}
	return session, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
