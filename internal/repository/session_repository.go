package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

const sessionColumns = `session_id, course_id, start_time, end_time, qr_code`

// SessionRepository handles persistence for attendance sessions.
type SessionRepository struct {
	db sqlx.ExtContext
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(db sqlx.ExtContext) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByID returns a session by identifier.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM session WHERE session_id = $1`
	var session models.Session
	if err := sqlx.GetContext(ctx, r.db, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, translate(err, "find session")
	}
	return &session, nil
}

// ListByCourse returns the sessions of a course, latest first.
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM session WHERE course_id = $1 ORDER BY start_time DESC`
	sessions := make([]models.Session, 0)
	if err := sqlx.SelectContext(ctx, r.db, &sessions, query, courseID); err != nil {
		return nil, translate(err, "list course sessions")
	}
	return sessions, nil
}

// ListForStudent returns sessions of every course the student is enrolled in,
// latest first, with the student's own check-in status.
func (r *SessionRepository) ListForStudent(ctx context.Context, studentID int64) ([]models.StudentSession, error) {
	const query = `
SELECT se.session_id, c.course_code, c.course_name, se.start_time, se.end_time, a.status AS attendance_status
FROM enrollment e
JOIN course c ON c.course_id = e.course_id
JOIN session se ON se.course_id = e.course_id
LEFT JOIN attendance a ON a.session_id = se.session_id AND a.student_id = e.student_id
WHERE e.student_id = $1
ORDER BY se.start_time DESC`
	sessions := make([]models.StudentSession, 0)
	if err := sqlx.SelectContext(ctx, r.db, &sessions, query, studentID); err != nil {
		return nil, translate(err, "list student sessions")
	}
	return sessions, nil
}

// Create inserts a session and assigns its identifier.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	const query = `INSERT INTO session (course_id, start_time, end_time, qr_code) VALUES ($1, $2, $3, $4) RETURNING session_id`
	if err := sqlx.GetContext(ctx, r.db, &session.SessionID, query, session.CourseID, session.StartTime, session.EndTime, session.QRCode); err != nil {
		return translate(err, "create session")
	}
	return nil
}
