package models

import "time"

// Enrollment links a student to a course; unique per pair.
type Enrollment struct {
	EnrollmentID int64     `db:"enrollment_id" json:"enrollment_id"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
}
