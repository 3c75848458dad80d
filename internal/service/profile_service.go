package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
)

// ProfileService completes and edits account profiles and keeps the role
// records (student or lecturer) in step with them.
type ProfileService struct {
	store     repository.DataStore
	validator *validator.Validate
	cache     cacheInvalidator
	logger    *zap.Logger
}

// NewProfileService constructs the service. cache may be nil.
func NewProfileService(store repository.DataStore, validate *validator.Validate, cache cacheInvalidator, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{store: store, validator: validate, cache: cache, logger: logger}
}

// Complete stores the registration number and department and provisions the role record.
func (s *ProfileService) Complete(ctx context.Context, actor *models.User, req dto.CompleteProfileRequest) (*dto.CompleteProfileResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.ExternalID = strings.TrimSpace(req.ExternalID)
	req.Department = strings.TrimSpace(req.Department)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "external_id and department are required")
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		user, err := reloadUser(ctx, repos, actor.ID)
		if err != nil {
			return err
		}
		user.ExternalID = &req.ExternalID
		user.Department = &req.Department
		if name := trimmed(req.Name); name != nil {
			user.Name = name
		}
		if err := repos.Users().UpdateProfile(ctx, user); err != nil {
			return err
		}
		return s.syncRoleRecord(ctx, repos, user)
	})
	if err != nil {
		return nil, s.wrap(err, "complete profile", actor)
	}
	s.afterChange(ctx, actor)
	return &dto.CompleteProfileResponse{OK: true, ProfileCompleted: true}, nil
}

// Update applies the non-blank fields of req. The profile becomes complete once
// both registration number and department are set.
func (s *ProfileService) Update(ctx context.Context, actor *models.User, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	var updated *models.User
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		user, err := reloadUser(ctx, repos, actor.ID)
		if err != nil {
			return err
		}
		if v := trimmed(req.Name); v != nil {
			user.Name = v
		}
		if v := trimmed(req.ExternalID); v != nil {
			user.ExternalID = v
		}
		if v := trimmed(req.Department); v != nil {
			user.Department = v
		}
		if err := repos.Users().UpdateProfile(ctx, user); err != nil {
			return err
		}
		if user.Role == models.RoleStudent && user.ExternalID == nil {
			updated = user
			return nil
		}
		if err := s.syncRoleRecord(ctx, repos, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, "update profile", actor)
	}
	s.afterChange(ctx, actor)
	resp := profileResponse(updated)
	return &resp, nil
}

// Info returns the profile together with the role record, when one exists.
func (s *ProfileService) Info(ctx context.Context, actor *models.User) (*dto.ProfileInfoResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	resp := &dto.ProfileInfoResponse{UserID: actor.ID, ProfileResponse: profileResponse(actor)}

	switch actor.Role {
	case models.RoleStudent:
		student, err := s.store.Students().FindByUserID(ctx, actor.ID)
		if err != nil && !isNotFound(err) {
			return nil, appErrors.Internal(err, "Failed to retrieve profile info.")
		}
		if student != nil {
			resp.RoleRecordExists = true
			resp.RoleInfo = map[string]interface{}{
				"student_id": student.StudentID,
				"matric_no":  student.MatricNo,
				"level":      student.Level,
			}
		}
	case models.RoleLecturer:
		lecturer, err := s.store.Lecturers().FindByUserID(ctx, actor.ID)
		if err != nil && !isNotFound(err) {
			return nil, appErrors.Internal(err, "Failed to retrieve profile info.")
		}
		if lecturer != nil {
			resp.RoleRecordExists = true
			resp.RoleInfo = map[string]interface{}{"lecturer_id": lecturer.LecturerID}
		}
	}
	return resp, nil
}

// syncRoleRecord creates or refreshes the student or lecturer row of user.
func (s *ProfileService) syncRoleRecord(ctx context.Context, repos repository.Repositories, user *models.User) error {
	switch user.Role {
	case models.RoleStudent:
		return s.syncStudent(ctx, repos, user)
	case models.RoleLecturer:
		lecturer, err := repos.Lecturers().FindByUserID(ctx, user.ID)
		if isNotFound(err) {
			_, err = repos.Lecturers().Provision(ctx, &models.Lecturer{UserID: user.ID, Department: user.Department})
			if err == nil {
				s.logger.Info("lecturer record created", zap.String("user_id", user.ID))
			}
			return err
		}
		if err != nil {
			return err
		}
		lecturer.Department = user.Department
		return repos.Lecturers().Update(ctx, lecturer)
	}
	return nil
}

func (s *ProfileService) syncStudent(ctx context.Context, repos repository.Repositories, user *models.User) error {
	matricNo := *user.ExternalID
	holder, err := repos.Students().FindByMatricNo(ctx, matricNo)
	switch {
	case err == nil && holder.UserID != user.ID:
		return matricConflict(matricNo)
	case err != nil && !isNotFound(err):
		return err
	}

	student, err := repos.Students().FindByUserID(ctx, user.ID)
	if isNotFound(err) {
		student = &models.Student{UserID: user.ID, MatricNo: matricNo, Department: user.Department}
		if _, err := repos.Students().Provision(ctx, student); err != nil {
			return studentWriteError(err, matricNo)
		}
		s.logger.Info("student record created", zap.String("user_id", user.ID), zap.String("matric_no", matricNo))
		return nil
	}
	if err != nil {
		return err
	}
	student.MatricNo = matricNo
	student.Department = user.Department
	return studentWriteError(repos.Students().Update(ctx, student), matricNo)
}

// studentWriteError reports a concurrent claim on matricNo as a conflict.
func studentWriteError(err error, matricNo string) error {
	if cv, ok := repository.AsConstraintViolation(err); ok && cv.Constraint == repository.ConstraintStudentMatricNo {
		return matricConflict(matricNo)
	}
	return err
}

func (s *ProfileService) wrap(err error, action string, actor *models.User) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	s.logger.Error(action+" failed", zap.String("user_id", actor.ID), zap.Error(err))
	return appErrors.Internal(err, "Profile update failed (database error).")
}

func (s *ProfileService) afterChange(ctx context.Context, actor *models.User) {
	if s.cache == nil || actor.Role != models.RoleStudent {
		return
	}
	if err := s.cache.Invalidate(ctx, studentCachePattern(actor.ID)); err != nil {
		s.logger.Warn("failed to invalidate student cache", zap.String("user_id", actor.ID), zap.Error(err))
	}
}

func reloadUser(ctx context.Context, repos repository.Repositories, id string) (*models.User, error) {
	user, err := repos.Users().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

func profileResponse(user *models.User) dto.ProfileResponse {
	return dto.ProfileResponse{
		FirebaseUID:      user.FirebaseUID,
		Email:            user.Email,
		Name:             user.Name,
		Role:             string(user.Role),
		ExternalID:       user.ExternalID,
		Department:       user.Department,
		ProfileCompleted: user.ProfileCompleted,
	}
}
