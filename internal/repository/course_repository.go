package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

const courseColumns = `course_id, course_code, course_name, description, lecturer_id`

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db sqlx.ExtContext
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db sqlx.ExtContext) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM course WHERE course_id = $1`
	var course models.Course
	if err := sqlx.GetContext(ctx, r.db, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, translate(err, "find course")
	}
	return &course, nil
}

// FindByCode returns a course by its normalised code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM course WHERE course_code = $1`
	var course models.Course
	if err := sqlx.GetContext(ctx, r.db, &course, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, translate(err, "find course by code")
	}
	return &course, nil
}

// ListByLecturer returns the courses owned by a lecturer.
func (r *CourseRepository) ListByLecturer(ctx context.Context, lecturerID int64) ([]models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM course WHERE lecturer_id = $1 ORDER BY course_code ASC`
	courses := make([]models.Course, 0)
	if err := sqlx.SelectContext(ctx, r.db, &courses, query, lecturerID); err != nil {
		return nil, translate(err, "list lecturer courses")
	}
	return courses, nil
}

// ListByStudent returns the courses a student is enrolled in.
func (r *CourseRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Course, error) {
	const query = `SELECT c.course_id, c.course_code, c.course_name, c.description, c.lecturer_id
FROM course c JOIN enrollment e ON e.course_id = c.course_id
WHERE e.student_id = $1 ORDER BY c.course_code ASC`
	courses := make([]models.Course, 0)
	if err := sqlx.SelectContext(ctx, r.db, &courses, query, studentID); err != nil {
		return nil, translate(err, "list student courses")
	}
	return courses, nil
}

// Create inserts a course and assigns its identifier.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO course (course_code, course_name, description, lecturer_id) VALUES ($1, $2, $3, $4) RETURNING course_id`
	if err := sqlx.GetContext(ctx, r.db, &course.CourseID, query, course.CourseCode, course.CourseName, course.Description, course.LecturerID); err != nil {
		return translate(err, "create course")
	}
	return nil
}

// Update stores code, name and description.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE course SET course_code = :course_code, course_name = :course_name, description = :description WHERE course_id = :course_id`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, course)
	if err != nil {
		return translate(err, "update course")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a course; sessions, enrollments and check-ins cascade.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM course WHERE course_id = $1`, id)
	if err != nil {
		return translate(err, "delete course")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
