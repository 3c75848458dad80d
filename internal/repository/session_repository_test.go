package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

func TestSessionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(models.DefaultSessionLength)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO session (course_id, start_time, end_time, qr_code)")).
		WithArgs(int64(4), start, end, nil).
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}).AddRow(21))

	session := &models.Session{CourseID: 4, StartTime: start, EndTime: end}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.Equal(t, int64(21), session.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListForStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN attendance a ON a.session_id = se.session_id AND a.student_id = e.student_id")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "course_code", "course_name", "start_time", "end_time", "attendance_status"}).
			AddRow(2, "CSC101", "Intro", now, now.Add(time.Hour), "present").
			AddRow(1, "CSC101", "Intro", now.Add(-24*time.Hour), now.Add(-23*time.Hour), nil))

	sessions, err := repo.ListForStudent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.NotNil(t, sessions[0].AttendanceStatus)
	assert.Equal(t, "present", *sessions[0].AttendanceStatus)
	assert.Nil(t, sessions[1].AttendanceStatus)
}
