package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

const studentColumns = `student_id, user_id, matric_no, department, level`

// StudentRepository handles persistence for student records.
type StudentRepository struct {
	db sqlx.ExtContext
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(db sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByUserID returns the student record owned by a user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT ` + studentColumns + ` FROM student WHERE user_id = $1 LIMIT 1`
	var student models.Student
	if err := sqlx.GetContext(ctx, r.db, &student, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, translate(err, "find student by user")
	}
	return &student, nil
}

// FindByMatricNo returns the student holding a registration number.
func (r *StudentRepository) FindByMatricNo(ctx context.Context, matricNo string) (*models.Student, error) {
	const query = `SELECT ` + studentColumns + ` FROM student WHERE matric_no = $1 LIMIT 1`
	var student models.Student
	if err := sqlx.GetContext(ctx, r.db, &student, query, matricNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, translate(err, "find student by matric")
	}
	return &student, nil
}

// Provision creates the student record for student.UserID unless one exists,
// then loads the stored row into student. It reports whether a row was created.
// A registration number held by another user surfaces as a ConstraintViolation.
func (r *StudentRepository) Provision(ctx context.Context, student *models.Student) (bool, error) {
	const insert = `INSERT INTO student (user_id, matric_no, department, level) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, insert, student.UserID, student.MatricNo, student.Department, student.Level)
	if err != nil {
		return false, translate(err, "provision student")
	}
	created := false
	if affected, err := res.RowsAffected(); err == nil {
		created = affected > 0
	}
	stored, err := r.FindByUserID(ctx, student.UserID)
	if err != nil {
		return false, translate(err, "reload provisioned student")
	}
	*student = *stored
	return created, nil
}

// Update stores registration number and department.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE student SET matric_no = :matric_no, department = :department, level = :level WHERE student_id = :student_id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, student); err != nil {
		return translate(err, "update student")
	}
	return nil
}

// ListByCourse returns the roster of a course: every student enrolled in it or
// holding a check-in for one of its sessions.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.StudentSummary, error) {
	const query = `
SELECT s.student_id, u.firebase_uid, u.name, u.email, s.matric_no, s.department
FROM student s
LEFT JOIN users u ON u.id = s.user_id
WHERE s.student_id IN (
    SELECT e.student_id FROM enrollment e WHERE e.course_id = $1
    UNION
    SELECT a.student_id FROM attendance a WHERE a.course_id = $1
)
ORDER BY s.matric_no ASC`
	students := make([]models.StudentSummary, 0)
	if err := sqlx.SelectContext(ctx, r.db, &students, query, courseID); err != nil {
		return nil, translate(err, "list course students")
	}
	return students, nil
}
