package models

import "time"

// DefaultAttendanceStatus is stored when a check-in carries no status.
const DefaultAttendanceStatus = "present"

// Attendance is one check-in per (session, student).
type Attendance struct {
	AttendanceID int64     `db:"attendance_id" json:"attendance_id"`
	SessionID    int64     `db:"session_id" json:"session_id"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	Status       *string   `db:"status" json:"status,omitempty"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
	Verified     bool      `db:"verified" json:"verified"`
}

// AttendanceRow is an attendance record joined with its student for lecturer views.
type AttendanceRow struct {
	AttendanceID int64          `db:"attendance_id" json:"attendance_id"`
	SessionID    int64          `db:"session_id" json:"session_id"`
	Status       *string        `db:"status" json:"status,omitempty"`
	Timestamp    time.Time      `db:"timestamp" json:"timestamp"`
	Verified     bool           `db:"verified" json:"verified"`
	Student      StudentSummary `db:"student" json:"student"`
}
