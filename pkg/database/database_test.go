package database

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-sync-api/pkg/config"
)

func TestDSNPrefersURL(t *testing.T) {
	cases := map[string]string{
		"postgresql+psycopg://u:p@db:5432/app?sslmode=require": "postgresql://u:p@db:5432/app?sslmode=require",
		"postgres://u:p@db/app":                                "postgres://u:p@db/app",
	}
	for in, want := range cases {
		assert.Equal(t, want, DSN(config.DatabaseConfig{URL: in}))
	}
}

func TestDSNFromParts(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "secret", Name: "attendance", SSLMode: "disable"})
	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=attendance sslmode=disable", dsn)
}

func TestMigrationsOrdered(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 4)
	assert.Equal(t, "0001_core_schema", migrations[0].Version)
	assert.Equal(t, "0004_audit_logs", migrations[3].Version)
	assert.Contains(t, migrations[2].SQL, "uq_attendance_session_student")
}

func TestMigrateSkipsApplied(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_lock($1)")).WithArgs(migrationLockID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_core_schema").AddRow("0002_enrollment").AddRow("0003_attendance_unique"))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_logs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).WithArgs("0004_audit_logs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).WithArgs(migrationLockID).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
