package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
)

type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func requireRole(actor *models.User, role models.Role, message string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != role {
		return appErrors.Clone(appErrors.ErrForbidden, message)
	}
	return nil
}

func lecturerProfile(ctx context.Context, repos repository.Repositories, actor *models.User) (*models.Lecturer, error) {
	lecturer, err := repos.Lecturers().FindByUserID(ctx, actor.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Lecturer profile not found")
		}
		return nil, appErrors.Internal(err, "failed to load lecturer profile")
	}
	return lecturer, nil
}

func studentProfile(ctx context.Context, repos repository.Repositories, actor *models.User) (*models.Student, error) {
	student, err := repos.Students().FindByUserID(ctx, actor.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student profile not found")
		}
		return nil, appErrors.Internal(err, "failed to load student profile")
	}
	return student, nil
}

func matricConflict(matricNo string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Matric number %s is already registered to another account.", matricNo))
}

func normalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// trimmed returns the trimmed value of s, or nil when s is nil or blank.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func studentCachePattern(userID string) string {
	return fmt.Sprintf("student:%s:*", userID)
}

func studentCacheKey(userID, view string) string {
	return fmt.Sprintf("student:%s:%s", userID, view)
}
