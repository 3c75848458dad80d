package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
)

// Sync dispatch keys.
const (
	SyncAttendanceCreate = "attendance/create"
	SyncSessionCreate    = "session/create"
)

const placeholderMatricPrefix = "TEMP_"

// SyncEffect lists what an applied operation touched.
type SyncEffect struct {
	UserIDs []string
}

// SyncApplier applies one operation using repositories bound to the
// operation's transaction.
type SyncApplier interface {
	Apply(ctx context.Context, repos repository.Repositories, op dto.SyncOperation) (SyncEffect, error)
}

// SyncApplierFunc allows using plain functions.
type SyncApplierFunc func(ctx context.Context, repos repository.Repositories, op dto.SyncOperation) (SyncEffect, error)

// Apply implements SyncApplier.
func (f SyncApplierFunc) Apply(ctx context.Context, repos repository.Repositories, op dto.SyncOperation) (SyncEffect, error) {
	return f(ctx, repos, op)
}

// SyncKey builds the dispatch key of an operation.
func SyncKey(entity, op string) string {
	return strings.ToLower(strings.TrimSpace(entity)) + "/" + strings.ToLower(strings.TrimSpace(op))
}

func syncValidation(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func syncNotFound(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

// PlaceholderMatricNo derives the registration number given to students
// provisioned before completing their profile.
func PlaceholderMatricNo(firebaseUID string) string {
	prefix := firebaseUID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return placeholderMatricPrefix + prefix
}

// attendanceApplier records a check-in, provisioning the student record and
// the course enrollment it implies. Only student accounts are provisioned; a
// lecturer named as the student fails with "User is not a student" instead of
// gaining a student record. A repeated check-in without a timestamp keeps the
// stored one.
type attendanceApplier struct {
	now    func() time.Time
	logger *zap.Logger
}

func (a *attendanceApplier) Apply(ctx context.Context, repos repository.Repositories, op dto.SyncOperation) (SyncEffect, error) {
	payload := syncPayload(op.Payload)

	uid, present, valid := payload.str("student_firebase_uid")
	if !valid {
		return SyncEffect{}, syncValidation("Invalid student_firebase_uid")
	}
	uid = strings.TrimSpace(uid)
	if !present || uid == "" {
		return SyncEffect{}, syncValidation("Missing student_firebase_uid")
	}
	user, err := repos.Users().FindByFirebaseUID(ctx, uid)
	if err != nil {
		if isNotFound(err) {
			return SyncEffect{}, syncNotFound("Student user not found")
		}
		return SyncEffect{}, err
	}
	if user.Role != models.RoleStudent {
		return SyncEffect{}, syncValidation("User is not a student")
	}

	student, err := a.resolveStudent(ctx, repos, user)
	if err != nil {
		return SyncEffect{}, err
	}

	sessionID, present, valid := payload.id("session_id")
	if !present {
		return SyncEffect{}, syncValidation("Missing session_id")
	}
	if !valid {
		return SyncEffect{}, syncValidation("Invalid session_id")
	}
	session, err := repos.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return SyncEffect{}, syncNotFound("Session not found")
		}
		return SyncEffect{}, err
	}

	_, enrolled, err := repos.Enrollments().Ensure(ctx, student.StudentID, session.CourseID)
	if err != nil {
		return SyncEffect{}, err
	}
	if enrolled {
		a.logger.Info("student auto-enrolled", zap.Int64("student_id", student.StudentID), zap.Int64("course_id", session.CourseID))
	}

	status, _, valid := payload.str("status")
	if !valid {
		return SyncEffect{}, syncValidation("Invalid status")
	}
	if strings.TrimSpace(status) == "" {
		status = models.DefaultAttendanceStatus
	}
	verified, valid := payload.boolean("face_verified", false)
	if !valid {
		return SyncEffect{}, syncValidation("Invalid face_verified")
	}
	ts, explicit, valid := payload.optionalTimestamp("timestamp")
	if !valid {
		return SyncEffect{}, syncValidation("Invalid timestamp")
	}
	if !explicit {
		ts = a.now().UTC()
	}

	record := &models.Attendance{
		SessionID: session.SessionID,
		StudentID: student.StudentID,
		CourseID:  session.CourseID,
		Status:    &status,
		Timestamp: ts,
		Verified:  verified,
	}
	created, err := repos.Attendance().Upsert(ctx, record, explicit)
	if err != nil {
		return SyncEffect{}, err
	}
	a.logger.Debug("attendance synced",
		zap.String("op_id", op.OpID),
		zap.Int64("attendance_id", record.AttendanceID),
		zap.Int64("session_id", session.SessionID),
		zap.Int64("student_id", student.StudentID),
		zap.Bool("created", created),
	)
	return SyncEffect{UserIDs: []string{user.ID}}, nil
}

func (a *attendanceApplier) resolveStudent(ctx context.Context, repos repository.Repositories, user *models.User) (*models.Student, error) {
	student, err := repos.Students().FindByUserID(ctx, user.ID)
	if err == nil {
		return student, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	matricNo := PlaceholderMatricNo(user.FirebaseUID)
	if user.ExternalID != nil && strings.TrimSpace(*user.ExternalID) != "" {
		matricNo = strings.TrimSpace(*user.ExternalID)
	}
	student = &models.Student{UserID: user.ID, MatricNo: matricNo, Department: user.Department}
	created, err := repos.Students().Provision(ctx, student)
	if err != nil {
		if cv, ok := repository.AsConstraintViolation(err); ok && cv.Constraint == repository.ConstraintStudentMatricNo {
			return nil, matricConflict(matricNo)
		}
		return nil, err
	}
	if created {
		a.logger.Info("student auto-provisioned", zap.String("user_id", user.ID), zap.String("matric_no", student.MatricNo))
	}
	return student, nil
}

// sessionApplier opens a session for an existing course.
type sessionApplier struct {
	now    func() time.Time
	logger *zap.Logger
}

func (a *sessionApplier) Apply(ctx context.Context, repos repository.Repositories, op dto.SyncOperation) (SyncEffect, error) {
	payload := syncPayload(op.Payload)

	courseID, present, valid := payload.id("course_id")
	if !present {
		return SyncEffect{}, syncValidation("Missing course_id")
	}
	if !valid {
		return SyncEffect{}, syncValidation("Invalid course_id")
	}
	course, err := repos.Courses().FindByID(ctx, courseID)
	if err != nil {
		if isNotFound(err) {
			return SyncEffect{}, syncNotFound("Course not found")
		}
		return SyncEffect{}, err
	}

	start, valid := payload.timestamp("start_time", a.now().UTC())
	if !valid {
		return SyncEffect{}, syncValidation("Invalid start_time")
	}
	end, valid := payload.timestamp("end_time", start.Add(models.DefaultSessionLength))
	if !valid {
		return SyncEffect{}, syncValidation("Invalid end_time")
	}
	if !end.After(start) {
		return SyncEffect{}, syncValidation("end_time must be after start_time")
	}
	qr, _, valid := payload.str("qr_code")
	if !valid {
		return SyncEffect{}, syncValidation("Invalid qr_code")
	}

	session := &models.Session{CourseID: course.CourseID, StartTime: start, EndTime: end, QRCode: stringPtr(qr)}
	if err := repos.Sessions().Create(ctx, session); err != nil {
		return SyncEffect{}, err
	}
	a.logger.Info("session synced", zap.String("op_id", op.OpID), zap.Int64("session_id", session.SessionID), zap.Int64("course_id", course.CourseID))
	return SyncEffect{}, nil
}

func describeOp(op dto.SyncOperation) string {
	return fmt.Sprintf("%s/%s", op.Entity, op.Op)
}
