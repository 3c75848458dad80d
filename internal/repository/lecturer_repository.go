package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

// LecturerRepository handles persistence for lecturer records.
type LecturerRepository struct {
	db sqlx.ExtContext
}

// NewLecturerRepository instantiates the repository.
func NewLecturerRepository(db sqlx.ExtContext) *LecturerRepository {
	return &LecturerRepository{db: db}
}

// FindByUserID returns the lecturer record owned by a user.
func (r *LecturerRepository) FindByUserID(ctx context.Context, userID string) (*models.Lecturer, error) {
	const query = `SELECT lecturer_id, user_id, department FROM lecturer WHERE user_id = $1 LIMIT 1`
	var lecturer models.Lecturer
	if err := sqlx.GetContext(ctx, r.db, &lecturer, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, translate(err, "find lecturer by user")
	}
	return &lecturer, nil
}

// Provision creates the lecturer record for lecturer.UserID unless one exists.
func (r *LecturerRepository) Provision(ctx context.Context, lecturer *models.Lecturer) (bool, error) {
	const insert = `INSERT INTO lecturer (user_id, department) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, insert, lecturer.UserID, lecturer.Department)
	if err != nil {
		return false, translate(err, "provision lecturer")
	}
	created := false
	if affected, err := res.RowsAffected(); err == nil {
		created = affected > 0
	}
	stored, err := r.FindByUserID(ctx, lecturer.UserID)
	if err != nil {
		return false, translate(err, "reload provisioned lecturer")
	}
	*lecturer = *stored
	return created, nil
}

// Update stores the lecturer department.
func (r *LecturerRepository) Update(ctx context.Context, lecturer *models.Lecturer) error {
	const query = `UPDATE lecturer SET department = $2 WHERE lecturer_id = $1`
	if _, err := r.db.ExecContext(ctx, query, lecturer.LecturerID, lecturer.Department); err != nil {
		return translate(err, "update lecturer")
	}
	return nil
}
