package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

const userColumns = `id, firebase_uid, email, name, role, external_id, department, profile_completed, created_at, updated_at`

// UserRepository provides database access for users.
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, translate(err, "find user by id")
	}
	return &user, nil
}

// FindByFirebaseUID returns a user by identity provider subject.
func (r *UserRepository) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1 LIMIT 1`
	var user models.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, firebaseUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, translate(err, "find user by firebase uid")
	}
	return &user, nil
}

// Upsert inserts the user or refreshes email, name and role of the existing
// row with the same firebase uid. It reports whether a row was inserted and
// loads the stored record back into user.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `
INSERT INTO users (id, firebase_uid, email, name, role, profile_completed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)
ON CONFLICT (firebase_uid) DO UPDATE
SET email = EXCLUDED.email,
    name = EXCLUDED.name,
    role = EXCLUDED.role,
    updated_at = EXCLUDED.updated_at
RETURNING ` + userColumns + `, (xmax = 0) AS inserted`

	var row struct {
		models.User
		Inserted bool `db:"inserted"`
	}
	if err := sqlx.GetContext(ctx, r.db, &row, query, user.ID, user.FirebaseUID, user.Email, user.Name, user.Role, now); err != nil {
		return false, translate(err, "upsert user")
	}
	*user = row.User
	return row.Inserted, nil
}

// UpdateProfile stores profile fields and the derived completion flag.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.ProfileCompleted = user.HasCompleteProfile()
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET name = :name, external_id = :external_id, department = :department, profile_completed = :profile_completed, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, user)
	if err != nil {
		return translate(err, "update user profile")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
