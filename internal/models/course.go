package models

import "time"

// Course is owned by a lecturer; the owner is cleared when the lecturer is removed.
type Course struct {
	CourseID    int64   `db:"course_id" json:"course_id"`
	CourseCode  string  `db:"course_code" json:"course_code"`
	CourseName  string  `db:"course_name" json:"course_name"`
	Description *string `db:"description" json:"description,omitempty"`
	LecturerID  *int64  `db:"lecturer_id" json:"lecturer_id,omitempty"`
}

// OwnedBy reports whether lecturerID owns the course.
func (c *Course) OwnedBy(lecturerID int64) bool {
	return c.LecturerID != nil && *c.LecturerID == lecturerID
}

// Session is an attendance-taking window of a course.
type Session struct {
	SessionID int64     `db:"session_id" json:"session_id"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	QRCode    *string   `db:"qr_code" json:"qr_code,omitempty"`
}

// DefaultSessionLength is applied when a session has no explicit end.
const DefaultSessionLength = time.Hour

// StudentSession is a session of an enrolled course with the student's own check-in status.
type StudentSession struct {
	SessionID        int64     `db:"session_id" json:"session_id"`
	CourseCode       string    `db:"course_code" json:"course_code"`
	CourseName       string    `db:"course_name" json:"course_name"`
	StartTime        time.Time `db:"start_time" json:"start_time"`
	EndTime          time.Time `db:"end_time" json:"end_time"`
	AttendanceStatus *string   `db:"attendance_status" json:"attendance_status"`
}
