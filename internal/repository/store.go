package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

// UserStore persists users.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// StudentStore persists student role records.
type StudentStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	FindByMatricNo(ctx context.Context, matricNo string) (*models.Student, error)
	Provision(ctx context.Context, student *models.Student) (bool, error)
	Update(ctx context.Context, student *models.Student) error
	ListByCourse(ctx context.Context, courseID int64) ([]models.StudentSummary, error)
}

// LecturerStore persists lecturer role records.
type LecturerStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.Lecturer, error)
	Provision(ctx context.Context, lecturer *models.Lecturer) (bool, error)
	Update(ctx context.Context, lecturer *models.Lecturer) error
}

// CourseStore persists courses.
type CourseStore interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	ListByLecturer(ctx context.Context, lecturerID int64) ([]models.Course, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// SessionStore persists attendance sessions.
type SessionStore interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Session, error)
	ListForStudent(ctx context.Context, studentID int64) ([]models.StudentSession, error)
	Create(ctx context.Context, session *models.Session) error
}

// EnrollmentStore persists enrollments.
type EnrollmentStore interface {
	Ensure(ctx context.Context, studentID, courseID int64) (*models.Enrollment, bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
}

// AttendanceStore persists check-ins.
type AttendanceStore interface {
	Upsert(ctx context.Context, attendance *models.Attendance, replaceTimestamp bool) (bool, error)
	ListBySession(ctx context.Context, sessionID int64) ([]models.AttendanceRow, error)
}

// AuditStore persists audit trail entries.
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// Repositories groups entity stores bound to a single executor.
type Repositories interface {
	Users() UserStore
	Students() StudentStore
	Lecturers() LecturerStore
	Courses() CourseStore
	Sessions() SessionStore
	Enrollments() EnrollmentStore
	Attendance() AttendanceStore
	Audit() AuditStore
}

// DataStore exposes pool-bound repositories and transactional units of work.
type DataStore interface {
	Repositories
	WithTx(ctx context.Context, fn func(Repositories) error) error
}

type repositories struct {
	users       *UserRepository
	students    *StudentRepository
	lecturers   *LecturerRepository
	courses     *CourseRepository
	sessions    *SessionRepository
	enrollments *EnrollmentRepository
	attendance  *AttendanceRepository
	audit       *AuditRepository
}

func newRepositories(exec sqlx.ExtContext) *repositories {
	return &repositories{
		users:       NewUserRepository(exec),
		students:    NewStudentRepository(exec),
		lecturers:   NewLecturerRepository(exec),
		courses:     NewCourseRepository(exec),
		sessions:    NewSessionRepository(exec),
		enrollments: NewEnrollmentRepository(exec),
		attendance:  NewAttendanceRepository(exec),
		audit:       NewAuditRepository(exec),
	}
}

func (r *repositories) Users() UserStore             { return r.users }
func (r *repositories) Students() StudentStore       { return r.students }
func (r *repositories) Lecturers() LecturerStore     { return r.lecturers }
func (r *repositories) Courses() CourseStore         { return r.courses }
func (r *repositories) Sessions() SessionStore       { return r.sessions }
func (r *repositories) Enrollments() EnrollmentStore { return r.enrollments }
func (r *repositories) Attendance() AttendanceStore  { return r.attendance }
func (r *repositories) Audit() AuditStore            { return r.audit }

// Store is the Postgres-backed DataStore.
type Store struct {
	*repositories
	db *sqlx.DB
}

// NewStore builds a store over the connection pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{repositories: newRepositories(db), db: db}
}

// WithTx runs fn with repositories bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
