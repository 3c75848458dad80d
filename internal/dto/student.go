package dto

// EnrollRequest enrolls the calling student by course code.
type EnrollRequest struct {
	CourseCode string `json:"course_code" validate:"required,max=20"`
}

// StudentEnrollmentInfo lists the courses a student is enrolled in.
type StudentEnrollmentInfo struct {
	StudentID        int64            `json:"student_id"`
	MatricNo         string           `json:"matric_no"`
	EnrolledCourses  []CourseResponse `json:"enrolled_courses"`
	TotalEnrollments int              `json:"total_enrollments"`
}
