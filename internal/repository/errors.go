package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ConstraintKind classifies a violated database constraint.
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Constraint names declared by the schema migrations.
const (
	ConstraintUserFirebaseUID          = "uq_users_firebase_uid"
	ConstraintStudentUser              = "uq_student_user_id"
	ConstraintStudentMatricNo          = "uq_student_matric_no"
	ConstraintLecturerUser             = "uq_lecturer_user_id"
	ConstraintCourseCode               = "uq_course_code"
	ConstraintEnrollmentStudentCourse  = "uq_enrollment_student_course"
	ConstraintAttendanceSessionStudent = "uq_attendance_session_student"
)

// ConstraintViolation reports a unique or foreign-key violation raised by the database.
type ConstraintViolation struct {
	Constraint string
	Kind       ConstraintKind
	Err        error
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("%s constraint %q violated: %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// AsConstraintViolation extracts a ConstraintViolation from err.
func AsConstraintViolation(err error) (*ConstraintViolation, bool) {
	var cv *ConstraintViolation
	if errors.As(err, &cv) {
		return cv, true
	}
	return nil, false
}

// translate wraps err with context, lifting pq constraint errors into ConstraintViolation.
func translate(err error, action string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w", action, &ConstraintViolation{Constraint: pqErr.Constraint, Kind: ConstraintUnique, Err: err})
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w", action, &ConstraintViolation{Constraint: pqErr.Constraint, Kind: ConstraintForeignKey, Err: err})
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
