package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

func TestEnrollmentRepositoryEnsureIsIdempotent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	for _, affected := range []int64{1, 0} {
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, course_id) DO NOTHING")).
			WithArgs(int64(3), int64(4), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, affected))
		mock.ExpectQuery(regexp.QuoteMeta("FROM enrollment WHERE student_id = $1 AND course_id = $2")).
			WithArgs(int64(3), int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"enrollment_id", "student_id", "course_id", "enrolled_at"}).AddRow(9, 3, 4, now))
	}

	first, created, err := repo.Ensure(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.True(t, created)
	second, created, err := repo.Ensure(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.EnrollmentID, second.EnrollmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO enrollment")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: ConstraintEnrollmentStudentCourse})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: 3, CourseID: 4})
	cv, ok := AsConstraintViolation(err)
	require.True(t, ok)
	assert.Equal(t, ConstraintEnrollmentStudentCourse, cv.Constraint)
}
