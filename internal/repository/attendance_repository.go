package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

// AttendanceRepository handles persistence for check-ins.
type AttendanceRepository struct {
	db sqlx.ExtContext
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(db sqlx.ExtContext) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert records the check-in of a student for a session. A second check-in
// for the same pair overwrites status and verification, and the timestamp only
// when replaceTimestamp is set. The stored row is loaded back into attendance;
// the boolean reports whether it was new.
func (r *AttendanceRepository) Upsert(ctx context.Context, attendance *models.Attendance, replaceTimestamp bool) (bool, error) {
	const query = `
INSERT INTO attendance (session_id, student_id, course_id, status, timestamp, verified)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (session_id, student_id) DO UPDATE
SET status = EXCLUDED.status,
    verified = EXCLUDED.verified,
    timestamp = CASE WHEN $7::boolean THEN EXCLUDED.timestamp ELSE attendance.timestamp END
RETURNING attendance_id, session_id, student_id, course_id, status, timestamp, verified, (xmax = 0) AS inserted`

	var row struct {
		models.Attendance
		Inserted bool `db:"inserted"`
	}
	if err := sqlx.GetContext(ctx, r.db, &row, query,
		attendance.SessionID, attendance.StudentID, attendance.CourseID,
		attendance.Status, attendance.Timestamp, attendance.Verified, replaceTimestamp,
	); err != nil {
		return false, translate(err, "upsert attendance")
	}
	*attendance = row.Attendance
	return row.Inserted, nil
}

// ListBySession returns the check-ins of a session joined with their students.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.AttendanceRow, error) {
	const query = `
SELECT a.attendance_id, a.session_id, a.status, a.timestamp, a.verified,
       a.student_id AS "student.student_id",
       u.firebase_uid AS "student.firebase_uid",
       u.name AS "student.name",
       u.email AS "student.email",
       s.matric_no AS "student.matric_no",
       s.department AS "student.department"
FROM attendance a
LEFT JOIN student s ON s.student_id = a.student_id
LEFT JOIN users u ON u.id = s.user_id
WHERE a.session_id = $1
ORDER BY a.timestamp ASC, a.attendance_id ASC`
	rows := make([]models.AttendanceRow, 0)
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, sessionID); err != nil {
		return nil, translate(err, "list session attendance")
	}
	return rows, nil
}
