package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
)

func TestSessionCreateStartsNow(t *testing.T) {
	f := newCourseFixture()
	course := f.store.addCourse("CSC101", f.lecturer.LecturerID)
	svc := NewSessionService(f.store, nil, nil)
	svc.now = func() time.Time { return syncNow }

	session, err := svc.Create(context.Background(), &f.owner, dto.CreateSessionRequest{CourseID: course.CourseID})
	require.NoError(t, err)
	assert.Equal(t, syncNow, session.StartTime)
	assert.Equal(t, syncNow.Add(time.Hour), session.EndTime)
	assert.Nil(t, session.QRCode)

	_, err = svc.Create(context.Background(), &f.rival, dto.CreateSessionRequest{CourseID: course.CourseID})
	assert.Equal(t, "Course not found", appMessage(err))
	_, err = svc.Create(context.Background(), &f.student, dto.CreateSessionRequest{CourseID: course.CourseID})
	assert.Equal(t, "Only lecturers can start sessions", appMessage(err))
	_, err = svc.Create(context.Background(), &f.owner, dto.CreateSessionRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func attendanceFixture(t *testing.T) (*courseFixture, models.Session) {
	f := newCourseFixture()
	course := f.store.addCourse("CSC101", f.lecturer.LecturerID)
	session := f.store.addSession(course.CourseID, syncNow)
	student := f.store.addStudent(f.student.ID, "=U1")
	status := "present"
	_, err := f.store.Attendance().Upsert(context.Background(), &models.Attendance{
		SessionID: session.SessionID, StudentID: student.StudentID, CourseID: course.CourseID, Status: &status, Timestamp: syncNow, Verified: true,
	}, true)
	require.NoError(t, err)
	return f, session
}

func TestSessionAttendance(t *testing.T) {
	f, session := attendanceFixture(t)
	svc := NewSessionService(f.store, nil, nil)

	rows, err := svc.Attendance(context.Background(), &f.owner, session.SessionID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Verified)

	_, err = svc.Attendance(context.Background(), &f.rival, session.SessionID)
	assert.Equal(t, "Session not found", appMessage(err))
	_, err = svc.Attendance(context.Background(), &f.owner, 4040)
	assert.Equal(t, "Session not found", appMessage(err))
	_, err = svc.Attendance(context.Background(), &f.student, session.SessionID)
	assert.Equal(t, "Only lecturers can view attendance", appMessage(err))
}

func TestSessionExport(t *testing.T) {
	f, session := attendanceFixture(t)
	svc := NewSessionService(f.store, nil, nil)

	file, err := svc.Export(context.Background(), &f.owner, session.SessionID, "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "matric_no,name,email,status,verified,timestamp", lines[0])
	assert.Equal(t, "'=U1,,,present,true,2026-03-01T12:00:00Z", lines[1])

	file, err = svc.Export(context.Background(), &f.owner, session.SessionID, "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF-")))

	_, err = svc.Export(context.Background(), &f.owner, session.SessionID, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
