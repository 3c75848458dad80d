package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-sync-api/internal/models"
)

// AuditRepository appends audit trail entries.
type AuditRepository struct {
	db sqlx.ExtContext
}

// NewAuditRepository instantiates the repository.
func NewAuditRepository(db sqlx.ExtContext) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores an audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if len(log.Details) == 0 {
		log.Details = []byte("{}")
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, details, request_id, created_at) VALUES (:id, :user_id, :action, :resource, :resource_id, :details, :request_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, log); err != nil {
		return translate(err, "create audit log")
	}
	return nil
}
