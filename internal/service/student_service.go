package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
)

const (
	studentCoursesView  = "courses"
	studentSessionsView = "sessions"
)

type studentCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, pattern string) error
}

// StudentService serves the student-facing views and self-enrollment.
type StudentService struct {
	repos     repository.Repositories
	validator *validator.Validate
	cache     studentCache
	ttl       time.Duration
	logger    *zap.Logger
}

// NewStudentService constructs the service. cache may be nil.
func NewStudentService(repos repository.Repositories, validate *validator.Validate, cache studentCache, ttl time.Duration, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repos: repos, validator: validate, cache: cache, ttl: ttl, logger: logger}
}

// Courses returns the caller's enrollments.
func (s *StudentService) Courses(ctx context.Context, actor *models.User) (*dto.StudentEnrollmentInfo, error) {
	if err := requireRole(actor, models.RoleStudent, "Only students can access this endpoint"); err != nil {
		return nil, err
	}
	key := studentCacheKey(actor.ID, studentCoursesView)
	var cached dto.StudentEnrollmentInfo
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	student, err := studentProfile(ctx, s.repos, actor)
	if err != nil {
		return nil, err
	}
	courses, err := s.repos.Courses().ListByStudent(ctx, student.StudentID)
	if err != nil {
		return nil, appErrors.Internal(err, "Failed to retrieve student courses.")
	}
	info := &dto.StudentEnrollmentInfo{
		StudentID:        student.StudentID,
		MatricNo:         student.MatricNo,
		EnrolledCourses:  dto.NewCourseResponses(courses),
		TotalEnrollments: len(courses),
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, info, s.ttl)
	}
	return info, nil
}

// Sessions returns the sessions of the caller's courses with their own check-in status, newest first.
func (s *StudentService) Sessions(ctx context.Context, actor *models.User) ([]models.StudentSession, error) {
	if err := requireRole(actor, models.RoleStudent, "Only students can access this endpoint"); err != nil {
		return nil, err
	}
	key := studentCacheKey(actor.ID, studentSessionsView)
	var cached []models.StudentSession
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	student, err := studentProfile(ctx, s.repos, actor)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions().ListForStudent(ctx, student.StudentID)
	if err != nil {
		s.logger.Error("list student sessions failed", zap.Int64("student_id", student.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "Failed to retrieve student sessions.")
	}
	if sessions == nil {
		sessions = []models.StudentSession{}
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, sessions, s.ttl)
	}
	return sessions, nil
}

// Enroll adds the caller to the course identified by code.
func (s *StudentService) Enroll(ctx context.Context, actor *models.User, req dto.EnrollRequest) (*dto.CourseResponse, error) {
	if err := requireRole(actor, models.RoleStudent, "Only students can access this endpoint"); err != nil {
		return nil, err
	}
	req.CourseCode = strings.TrimSpace(req.CourseCode)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "course_code is required")
	}
	student, err := studentProfile(ctx, s.repos, actor)
	if err != nil {
		return nil, err
	}
	course, err := s.repos.Courses().FindByCode(ctx, normalizeCourseCode(req.CourseCode))
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}

	enrollment := &models.Enrollment{StudentID: student.StudentID, CourseID: course.CourseID}
	if err := s.repos.Enrollments().Create(ctx, enrollment); err != nil {
		if cv, ok := repository.AsConstraintViolation(err); ok && cv.Constraint == repository.ConstraintEnrollmentStudentCourse {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Already enrolled in this course")
		}
		return nil, appErrors.Internal(err, "Failed to enroll.")
	}
	s.logger.Info("student enrolled", zap.Int64("student_id", student.StudentID), zap.Int64("course_id", course.CourseID))
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, studentCachePattern(actor.ID)); err != nil {
			s.logger.Warn("failed to invalidate student cache", zap.String("user_id", actor.ID), zap.Error(err))
		}
	}
	resp := dto.NewCourseResponse(*course)
	return &resp, nil
}
