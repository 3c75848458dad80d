package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

// EnrollmentRepository handles persistence for course enrollments.
type EnrollmentRepository struct {
	db sqlx.ExtContext
}

// NewEnrollmentRepository instantiates the repository.
func NewEnrollmentRepository(db sqlx.ExtContext) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Ensure returns the enrollment of studentID in courseID, creating it when
// missing. The boolean reports whether a row was created.
func (r *EnrollmentRepository) Ensure(ctx context.Context, studentID, courseID int64) (*models.Enrollment, bool, error) {
	const insert = `INSERT INTO enrollment (student_id, course_id, enrolled_at) VALUES ($1, $2, $3)
ON CONFLICT (student_id, course_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, insert, studentID, courseID, time.Now().UTC())
	if err != nil {
		return nil, false, translate(err, "ensure enrollment")
	}
	created := false
	if affected, err := res.RowsAffected(); err == nil {
		created = affected > 0
	}

	const query = `SELECT enrollment_id, student_id, course_id, enrolled_at FROM enrollment WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, r.db, &enrollment, query, studentID, courseID); err != nil {
		return nil, false, translate(err, "reload enrollment")
	}
	return &enrollment, created, nil
}

// Create inserts an enrollment; an existing pair surfaces as a ConstraintViolation.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollment (student_id, course_id, enrolled_at) VALUES ($1, $2, $3) RETURNING enrollment_id`
	if err := sqlx.GetContext(ctx, r.db, &enrollment.EnrollmentID, query, enrollment.StudentID, enrollment.CourseID, enrollment.EnrolledAt); err != nil {
		return translate(err, "create enrollment")
	}
	return nil
}
