package dto

import (
	"time"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

// CourseRequest creates or replaces a course's descriptive fields.
type CourseRequest struct {
	CourseCode  string  `json:"course_code" validate:"required,max=20"`
	CourseName  string  `json:"course_name" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

// CourseResponse is the public projection of a course.
type CourseResponse struct {
	CourseID    int64   `json:"course_id"`
	CourseCode  string  `json:"course_code"`
	CourseName  string  `json:"course_name"`
	Description *string `json:"description,omitempty"`
	LecturerID  *int64  `json:"lecturer_id"`
}

// NewCourseResponse projects a course model.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		CourseID:    course.CourseID,
		CourseCode:  course.CourseCode,
		CourseName:  course.CourseName,
		Description: course.Description,
		LecturerID:  course.LecturerID,
	}
}

// NewCourseResponses projects a list of course models.
func NewCourseResponses(courses []models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	return out
}

// CourseListResponse wraps a list of courses.
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
}

// CreateSessionRequest opens a one-hour session for a course.
type CreateSessionRequest struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}

// SessionResponse is the public projection of a session.
type SessionResponse struct {
	SessionID int64     `json:"session_id"`
	CourseID  int64     `json:"course_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	QRCode    *string   `json:"qr_code"`
}

// NewSessionResponse projects a session model.
func NewSessionResponse(session models.Session) SessionResponse {
	return SessionResponse{
		SessionID: session.SessionID,
		CourseID:  session.CourseID,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		QRCode:    session.QRCode,
	}
}
