package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	lecturerID := int64(2)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO course (course_code, course_name, description, lecturer_id)")).
		WithArgs("CSC101", "Intro", nil, &lecturerID).
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}).AddRow(11))

	course := &models.Course{CourseCode: "CSC101", CourseName: "Intro", LecturerID: &lecturerID}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(11), course.CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO course")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: ConstraintCourseCode})

	err := repo.Create(context.Background(), &models.Course{CourseCode: "CSC101", CourseName: "Intro"})
	cv, ok := AsConstraintViolation(err)
	require.True(t, ok)
	assert.Equal(t, ConstraintCourseCode, cv.Constraint)
}

func TestCourseRepositoryListByLecturer(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM course WHERE lecturer_id = $1 ORDER BY course_code ASC")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "course_code", "course_name", "description", "lecturer_id"}).
			AddRow(1, "CSC101", "Intro", nil, 2))

	courses, err := repo.ListByLecturer(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.True(t, courses[0].OwnedBy(2))
}

func TestCourseRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course WHERE course_id = $1")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 99), sql.ErrNoRows)
}
