package models

// Student is the role record of a student user.
type Student struct {
	StudentID  int64   `db:"student_id" json:"student_id"`
	UserID     string  `db:"user_id" json:"user_id"`
	MatricNo   string  `db:"matric_no" json:"matric_no"`
	Department *string `db:"department" json:"department,omitempty"`
	Level      *int    `db:"level" json:"level,omitempty"`
}

// Lecturer is the role record of a lecturer user.
type Lecturer struct {
	LecturerID int64   `db:"lecturer_id" json:"lecturer_id"`
	UserID     string  `db:"user_id" json:"user_id"`
	Department *string `db:"department" json:"department,omitempty"`
}

// StudentSummary joins a student with its user for rosters and attendance sheets.
type StudentSummary struct {
	StudentID   int64   `db:"student_id" json:"student_id"`
	FirebaseUID *string `db:"firebase_uid" json:"firebase_uid,omitempty"`
	Name        *string `db:"name" json:"name,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
	MatricNo    *string `db:"matric_no" json:"matric_no,omitempty"`
	Department  *string `db:"department" json:"department,omitempty"`
}
