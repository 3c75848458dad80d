package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
)

// memData is an in-memory image of the schema, including its unique constraints.
type memData struct {
	seq         int64
	users       map[string]models.User
	students    map[int64]models.Student
	lecturers   map[int64]models.Lecturer
	courses     map[int64]models.Course
	sessions    map[int64]models.Session
	enrollments map[int64]models.Enrollment
	attendance  map[int64]models.Attendance
	audits      []models.AuditLog
}

func newMemData() *memData {
	return &memData{
		users:       map[string]models.User{},
		students:    map[int64]models.Student{},
		lecturers:   map[int64]models.Lecturer{},
		courses:     map[int64]models.Course{},
		sessions:    map[int64]models.Session{},
		enrollments: map[int64]models.Enrollment{},
		attendance:  map[int64]models.Attendance{},
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	c.seq = d.seq
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.students {
		c.students[k] = v
	}
	for k, v := range d.lecturers {
		c.lecturers[k] = v
	}
	for k, v := range d.courses {
		c.courses[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range d.attendance {
		c.attendance[k] = v
	}
	c.audits = append(c.audits, d.audits...)
	return c
}

func (d *memData) next() int64 {
	d.seq++
	return d.seq
}

func violation(name string) error {
	return &repository.ConstraintViolation{Constraint: name, Kind: repository.ConstraintUnique, Err: errors.New("duplicate key value")}
}

// memStore implements repository.DataStore. WithTx works on a copy that
// replaces the committed image only when fn succeeds.
type memStore struct {
	mu      sync.Mutex
	data    *memData
	commits int
}

func newMemStore() *memStore {
	return &memStore{data: newMemData()}
}

func (s *memStore) view() *memRepos { return &memRepos{d: s.data} }

func (s *memStore) Users() repository.UserStore             { return s.view().Users() }
func (s *memStore) Students() repository.StudentStore       { return s.view().Students() }
func (s *memStore) Lecturers() repository.LecturerStore     { return s.view().Lecturers() }
func (s *memStore) Courses() repository.CourseStore         { return s.view().Courses() }
func (s *memStore) Sessions() repository.SessionStore       { return s.view().Sessions() }
func (s *memStore) Enrollments() repository.EnrollmentStore { return s.view().Enrollments() }
func (s *memStore) Attendance() repository.AttendanceStore  { return s.view().Attendance() }
func (s *memStore) Audit() repository.AuditStore            { return s.view().Audit() }

func (s *memStore) WithTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(&memRepos{d: work}); err != nil {
		return err
	}
	s.data = work
	s.commits++
	return nil
}

// seed helpers

func (s *memStore) addUser(uid string, role models.Role, externalID *string) models.User {
	u := models.User{ID: "user-" + uid, FirebaseUID: uid, Role: role, ExternalID: externalID}
	s.data.users[u.ID] = u
	return u
}

func (s *memStore) addStudent(userID, matric string) models.Student {
	st := models.Student{StudentID: s.data.next(), UserID: userID, MatricNo: matric}
	s.data.students[st.StudentID] = st
	return st
}

func (s *memStore) addLecturer(userID string) models.Lecturer {
	l := models.Lecturer{LecturerID: s.data.next(), UserID: userID}
	s.data.lecturers[l.LecturerID] = l
	return l
}

func (s *memStore) addCourse(code string, lecturerID int64) models.Course {
	c := models.Course{CourseID: s.data.next(), CourseCode: code, CourseName: code + " course", LecturerID: &lecturerID}
	s.data.courses[c.CourseID] = c
	return c
}

func (s *memStore) addSession(courseID int64, start time.Time) models.Session {
	sess := models.Session{SessionID: s.data.next(), CourseID: courseID, StartTime: start, EndTime: start.Add(time.Hour)}
	s.data.sessions[sess.SessionID] = sess
	return sess
}

func (s *memStore) studentByUser(userID string) (models.Student, bool) {
	for _, st := range s.data.students {
		if st.UserID == userID {
			return st, true
		}
	}
	return models.Student{}, false
}

func (s *memStore) attendanceRows() []models.Attendance {
	out := make([]models.Attendance, 0, len(s.data.attendance))
	for _, a := range s.data.attendance {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttendanceID < out[j].AttendanceID })
	return out
}

type memRepos struct{ d *memData }

func (r *memRepos) Users() repository.UserStore             { return memUsers{r.d} }
func (r *memRepos) Students() repository.StudentStore       { return memStudents{r.d} }
func (r *memRepos) Lecturers() repository.LecturerStore     { return memLecturers{r.d} }
func (r *memRepos) Courses() repository.CourseStore         { return memCourses{r.d} }
func (r *memRepos) Sessions() repository.SessionStore       { return memSessions{r.d} }
func (r *memRepos) Enrollments() repository.EnrollmentStore { return memEnrollments{r.d} }
func (r *memRepos) Attendance() repository.AttendanceStore  { return memAttendance{r.d} }
func (r *memRepos) Audit() repository.AuditStore            { return memAudit{r.d} }

type memUsers struct{ d *memData }

func (m memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.d.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m memUsers) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	for _, u := range m.d.users {
		if u.FirebaseUID == uid {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memUsers) Upsert(ctx context.Context, user *models.User) (bool, error) {
	if existing, err := m.FindByFirebaseUID(ctx, user.FirebaseUID); err == nil {
		existing.Email = user.Email
		existing.Name = user.Name
		existing.Role = user.Role
		m.d.users[existing.ID] = *existing
		*user = *existing
		return false, nil
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", m.d.next())
	}
	m.d.users[user.ID] = *user
	return true, nil
}

func (m memUsers) UpdateProfile(ctx context.Context, user *models.User) error {
	if _, ok := m.d.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	user.ProfileCompleted = user.HasCompleteProfile()
	m.d.users[user.ID] = *user
	return nil
}

type memStudents struct{ d *memData }

func (m memStudents) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	for _, st := range m.d.students {
		if st.UserID == userID {
			return &st, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memStudents) FindByMatricNo(ctx context.Context, matricNo string) (*models.Student, error) {
	for _, st := range m.d.students {
		if st.MatricNo == matricNo {
			return &st, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memStudents) Provision(ctx context.Context, student *models.Student) (bool, error) {
	if existing, err := m.FindByUserID(ctx, student.UserID); err == nil {
		*student = *existing
		return false, nil
	}
	if _, err := m.FindByMatricNo(ctx, student.MatricNo); err == nil {
		return false, violation(repository.ConstraintStudentMatricNo)
	}
	student.StudentID = m.d.next()
	m.d.students[student.StudentID] = *student
	return true, nil
}

func (m memStudents) Update(ctx context.Context, student *models.Student) error {
	if holder, err := m.FindByMatricNo(ctx, student.MatricNo); err == nil && holder.StudentID != student.StudentID {
		return violation(repository.ConstraintStudentMatricNo)
	}
	if _, ok := m.d.students[student.StudentID]; !ok {
		return sql.ErrNoRows
	}
	m.d.students[student.StudentID] = *student
	return nil
}

func (m memStudents) ListByCourse(ctx context.Context, courseID int64) ([]models.StudentSummary, error) {
	ids := map[int64]struct{}{}
	for _, e := range m.d.enrollments {
		if e.CourseID == courseID {
			ids[e.StudentID] = struct{}{}
		}
	}
	for _, a := range m.d.attendance {
		if a.CourseID == courseID {
			ids[a.StudentID] = struct{}{}
		}
	}
	out := make([]models.StudentSummary, 0, len(ids))
	for id := range ids {
		st := m.d.students[id]
		matric := st.MatricNo
		out = append(out, models.StudentSummary{StudentID: id, MatricNo: &matric, Department: st.Department})
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].MatricNo < *out[j].MatricNo })
	return out, nil
}

type memLecturers struct{ d *memData }

func (m memLecturers) FindByUserID(ctx context.Context, userID string) (*models.Lecturer, error) {
	for _, l := range m.d.lecturers {
		if l.UserID == userID {
			return &l, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memLecturers) Provision(ctx context.Context, lecturer *models.Lecturer) (bool, error) {
	if existing, err := m.FindByUserID(ctx, lecturer.UserID); err == nil {
		*lecturer = *existing
		return false, nil
	}
	lecturer.LecturerID = m.d.next()
	m.d.lecturers[lecturer.LecturerID] = *lecturer
	return true, nil
}

func (m memLecturers) Update(ctx context.Context, lecturer *models.Lecturer) error {
	m.d.lecturers[lecturer.LecturerID] = *lecturer
	return nil
}

type memCourses struct{ d *memData }

func (m memCourses) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	c, ok := m.d.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m memCourses) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	for _, c := range m.d.courses {
		if c.CourseCode == code {
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memCourses) ListByLecturer(ctx context.Context, lecturerID int64) ([]models.Course, error) {
	out := []models.Course{}
	for _, c := range m.d.courses {
		if c.OwnedBy(lecturerID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out, nil
}

func (m memCourses) ListByStudent(ctx context.Context, studentID int64) ([]models.Course, error) {
	out := []models.Course{}
	for _, e := range m.d.enrollments {
		if e.StudentID == studentID {
			out = append(out, m.d.courses[e.CourseID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out, nil
}

func (m memCourses) Create(ctx context.Context, course *models.Course) error {
	if _, err := m.FindByCode(ctx, course.CourseCode); err == nil {
		return violation(repository.ConstraintCourseCode)
	}
	course.CourseID = m.d.next()
	m.d.courses[course.CourseID] = *course
	return nil
}

func (m memCourses) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.d.courses[course.CourseID]; !ok {
		return sql.ErrNoRows
	}
	m.d.courses[course.CourseID] = *course
	return nil
}

func (m memCourses) Delete(ctx context.Context, id int64) error {
	if _, ok := m.d.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.d.courses, id)
	for sid, s := range m.d.sessions {
		if s.CourseID == id {
			delete(m.d.sessions, sid)
		}
	}
	return nil
}

type memSessions struct{ d *memData }

func (m memSessions) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	s, ok := m.d.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m memSessions) ListByCourse(ctx context.Context, courseID int64) ([]models.Session, error) {
	out := []models.Session{}
	for _, s := range m.d.sessions {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (m memSessions) ListForStudent(ctx context.Context, studentID int64) ([]models.StudentSession, error) {
	out := []models.StudentSession{}
	for _, e := range m.d.enrollments {
		if e.StudentID != studentID {
			continue
		}
		course := m.d.courses[e.CourseID]
		for _, s := range m.d.sessions {
			if s.CourseID != e.CourseID {
				continue
			}
			row := models.StudentSession{SessionID: s.SessionID, CourseCode: course.CourseCode, CourseName: course.CourseName, StartTime: s.StartTime, EndTime: s.EndTime}
			for _, a := range m.d.attendance {
				if a.SessionID == s.SessionID && a.StudentID == studentID {
					row.AttendanceStatus = a.Status
				}
			}
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (m memSessions) Create(ctx context.Context, session *models.Session) error {
	session.SessionID = m.d.next()
	m.d.sessions[session.SessionID] = *session
	return nil
}

type memEnrollments struct{ d *memData }

func (m memEnrollments) Ensure(ctx context.Context, studentID, courseID int64) (*models.Enrollment, bool, error) {
	for _, e := range m.d.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return &e, false, nil
		}
	}
	e := models.Enrollment{EnrollmentID: m.d.next(), StudentID: studentID, CourseID: courseID, EnrolledAt: time.Now().UTC()}
	m.d.enrollments[e.EnrollmentID] = e
	return &e, true, nil
}

func (m memEnrollments) Create(ctx context.Context, enrollment *models.Enrollment) error {
	for _, e := range m.d.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			return violation(repository.ConstraintEnrollmentStudentCourse)
		}
	}
	enrollment.EnrollmentID = m.d.next()
	m.d.enrollments[enrollment.EnrollmentID] = *enrollment
	return nil
}

type memAttendance struct{ d *memData }

func (m memAttendance) Upsert(ctx context.Context, attendance *models.Attendance, replaceTimestamp bool) (bool, error) {
	for id, a := range m.d.attendance {
		if a.SessionID == attendance.SessionID && a.StudentID == attendance.StudentID {
			a.Status = attendance.Status
			a.Verified = attendance.Verified
			if replaceTimestamp {
				a.Timestamp = attendance.Timestamp
			}
			m.d.attendance[id] = a
			*attendance = a
			return false, nil
		}
	}
	attendance.AttendanceID = m.d.next()
	m.d.attendance[attendance.AttendanceID] = *attendance
	return true, nil
}

func (m memAttendance) ListBySession(ctx context.Context, sessionID int64) ([]models.AttendanceRow, error) {
	out := []models.AttendanceRow{}
	for _, a := range m.d.attendance {
		if a.SessionID != sessionID {
			continue
		}
		st := m.d.students[a.StudentID]
		matric := st.MatricNo
		out = append(out, models.AttendanceRow{
			AttendanceID: a.AttendanceID,
			SessionID:    a.SessionID,
			Status:       a.Status,
			Timestamp:    a.Timestamp,
			Verified:     a.Verified,
			Student:      models.StudentSummary{StudentID: a.StudentID, MatricNo: &matric},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttendanceID < out[j].AttendanceID })
	return out, nil
}

type memAudit struct{ d *memData }

func (m memAudit) Create(ctx context.Context, log *models.AuditLog) error {
	m.d.audits = append(m.d.audits, *log)
	return nil
}

type auditRecorderStub struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (a *auditRecorderStub) Record(ctx context.Context, entry *models.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

type invalidatorStub struct {
	patterns []string
	err      error
}

func (i *invalidatorStub) Invalidate(ctx context.Context, pattern string) error {
	i.patterns = append(i.patterns, pattern)
	return i.err
}
