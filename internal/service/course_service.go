package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
)

var errCourseCodeTaken = appErrors.Clone(appErrors.ErrConflict, "Course code already exists")

// CourseService manages lecturer-owned courses.
type CourseService struct {
	repos     repository.Repositories
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the service.
func NewCourseService(repos repository.Repositories, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repos: repos, validator: validate, logger: logger}
}

// Create registers a course owned by the calling lecturer.
func (s *CourseService) Create(ctx context.Context, actor *models.User, req dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := requireRole(actor, models.RoleLecturer, "Only lecturers can create courses"); err != nil {
		return nil, err
	}
	req = normalizeCourseRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	lecturer, err := lecturerProfile(ctx, s.repos, actor)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeAvailable(ctx, req.CourseCode); err != nil {
		return nil, err
	}

	course := &models.Course{
		CourseCode:  req.CourseCode,
		CourseName:  req.CourseName,
		Description: req.Description,
		LecturerID:  &lecturer.LecturerID,
	}
	if err := s.repos.Courses().Create(ctx, course); err != nil {
		return nil, s.writeError(err, "Failed to create course.")
	}
	s.logger.Info("course created", zap.Int64("course_id", course.CourseID), zap.String("course_code", course.CourseCode))
	resp := dto.NewCourseResponse(*course)
	return &resp, nil
}

// Update replaces the code and name of a course owned by the caller. The
// description changes only when a non-blank one is supplied.
func (s *CourseService) Update(ctx context.Context, actor *models.User, courseID int64, req dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := requireRole(actor, models.RoleLecturer, "Only lecturers can update courses"); err != nil {
		return nil, err
	}
	req = normalizeCourseRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.ownedCourse(ctx, actor, courseID, "You can only update your own courses")
	if err != nil {
		return nil, err
	}
	if req.CourseCode != course.CourseCode {
		if err := s.ensureCodeAvailable(ctx, req.CourseCode); err != nil {
			return nil, err
		}
	}

	course.CourseCode = req.CourseCode
	course.CourseName = req.CourseName
	if req.Description != nil {
		course.Description = req.Description
	}
	if err := s.repos.Courses().Update(ctx, course); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, s.writeError(err, "Failed to update course.")
	}
	s.logger.Info("course updated", zap.Int64("course_id", course.CourseID), zap.String("course_code", course.CourseCode))
	resp := dto.NewCourseResponse(*course)
	return &resp, nil
}

// Delete removes a course owned by the caller together with its sessions,
// enrollments and attendance.
func (s *CourseService) Delete(ctx context.Context, actor *models.User, courseID int64) error {
	if err := requireRole(actor, models.RoleLecturer, "Only lecturers can delete courses"); err != nil {
		return err
	}
	course, err := s.ownedCourse(ctx, actor, courseID, "You can only delete your own courses")
	if err != nil {
		return err
	}
	if err := s.repos.Courses().Delete(ctx, course.CourseID); err != nil {
		if isNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return s.writeError(err, "Failed to delete course.")
	}
	s.logger.Info("course deleted", zap.Int64("course_id", course.CourseID), zap.String("course_code", course.CourseCode))
	return nil
}

// ListMine returns the caller's courses. Callers without a lecturer record get an empty list.
func (s *CourseService) ListMine(ctx context.Context, actor *models.User) (*dto.CourseListResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	resp := &dto.CourseListResponse{Courses: []dto.CourseResponse{}}
	if actor.Role != models.RoleLecturer {
		return resp, nil
	}
	lecturer, err := s.repos.Lecturers().FindByUserID(ctx, actor.ID)
	if err != nil {
		if isNotFound(err) {
			return resp, nil
		}
		return nil, appErrors.Internal(err, "Failed to retrieve courses.")
	}
	courses, err := s.repos.Courses().ListByLecturer(ctx, lecturer.LecturerID)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to retrieve courses.")
	}
	resp.Courses = dto.NewCourseResponses(courses)
	return resp, nil
}

// Sessions lists a course's sessions, newest first.
func (s *CourseService) Sessions(ctx context.Context, actor *models.User, courseID int64) ([]dto.SessionResponse, error) {
	course, err := s.viewableCourse(ctx, actor, courseID, "Only lecturers can view sessions")
	if err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions().ListByCourse(ctx, course.CourseID)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to retrieve sessions.")
	}
	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.NewSessionResponse(session))
	}
	return out, nil
}

// Students lists the roster of a course: enrolled students and anyone who checked in.
func (s *CourseService) Students(ctx context.Context, actor *models.User, courseID int64) ([]models.StudentSummary, error) {
	course, err := s.viewableCourse(ctx, actor, courseID, "Only lecturers can view students")
	if err != nil {
		return nil, err
	}
	students, err := s.repos.Students().ListByCourse(ctx, course.CourseID)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to retrieve students.")
	}
	if students == nil {
		students = []models.StudentSummary{}
	}
	return students, nil
}

// ownedCourse loads a course for mutation: a missing course is 404 and a
// foreign one is 403 with forbidden.
func (s *CourseService) ownedCourse(ctx context.Context, actor *models.User, courseID int64, forbidden string) (*models.Course, error) {
	course, err := s.repos.Courses().FindByID(ctx, courseID)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	lecturer, err := s.repos.Lecturers().FindByUserID(ctx, actor.ID)
	if err != nil && !isNotFound(err) {
		return nil, appErrors.Internal(err, "failed to load lecturer profile")
	}
	if lecturer == nil || !course.OwnedBy(lecturer.LecturerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, forbidden)
	}
	return course, nil
}

// viewableCourse loads a course for reading; foreign courses are reported as missing.
func (s *CourseService) viewableCourse(ctx context.Context, actor *models.User, courseID int64, roleMessage string) (*models.Course, error) {
	if err := requireRole(actor, models.RoleLecturer, roleMessage); err != nil {
		return nil, err
	}
	lecturer, err := lecturerProfile(ctx, s.repos, actor)
	if err != nil {
		return nil, err
	}
	return ownCourseOrNotFound(ctx, s.repos, lecturer, courseID)
}

func (s *CourseService) ensureCodeAvailable(ctx context.Context, code string) error {
	_, err := s.repos.Courses().FindByCode(ctx, code)
	switch {
	case err == nil:
		return errCourseCodeTaken
	case isNotFound(err):
		return nil
	default:
		return appErrors.Internal(err, "failed to check course code")
	}
}

func (s *CourseService) writeError(err error, message string) error {
	if cv, ok := repository.AsConstraintViolation(err); ok && cv.Constraint == repository.ConstraintCourseCode {
		return errCourseCodeTaken
	}
	s.logger.Error("course write failed", zap.Error(err))
	return appErrors.Internal(err, message)
}

func ownCourseOrNotFound(ctx context.Context, repos repository.Repositories, lecturer *models.Lecturer, courseID int64) (*models.Course, error) {
	course, err := repos.Courses().FindByID(ctx, courseID)
	if err != nil && !isNotFound(err) {
		return nil, appErrors.Internal(err, "failed to load course")
	}
	if course == nil || !course.OwnedBy(lecturer.LecturerID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
	}
	return course, nil
}

func normalizeCourseRequest(req dto.CourseRequest) dto.CourseRequest {
	req.CourseCode = normalizeCourseCode(req.CourseCode)
	req.CourseName = strings.TrimSpace(req.CourseName)
	req.Description = trimmed(req.Description)
	return req
}
