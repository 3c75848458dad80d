package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestTranslateConstraintErrors(t *testing.T) {
	unique := translate(&pq.Error{Code: "23505", Constraint: ConstraintStudentMatricNo}, "provision student")
	cv, ok := AsConstraintViolation(unique)
	require.True(t, ok)
	assert.Equal(t, ConstraintStudentMatricNo, cv.Constraint)
	assert.Equal(t, ConstraintUnique, cv.Kind)
	assert.Contains(t, unique.Error(), "provision student")

	fk := translate(&pq.Error{Code: "23503", Constraint: "attendance_session_id_fkey"}, "upsert attendance")
	cv, ok = AsConstraintViolation(fk)
	require.True(t, ok)
	assert.Equal(t, ConstraintForeignKey, cv.Kind)

	other := translate(errors.New("connection reset"), "find user")
	_, ok = AsConstraintViolation(other)
	assert.False(t, ok)
	assert.EqualError(t, other, "find user: connection reset")

	assert.NoError(t, translate(nil, "noop"))
}

func TestStoreWithTxCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(repos Repositories) error {
		return repos.Audit().Create(context.Background(), newAuditLog())
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithTxRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	failure := errors.New("session not found")
	err := store.WithTx(context.Background(), func(repos Repositories) error {
		if err := repos.Audit().Create(context.Background(), newAuditLog()); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithTxBeginFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewStore(db)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))
	called := false
	err := store.WithTx(context.Background(), func(Repositories) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}
