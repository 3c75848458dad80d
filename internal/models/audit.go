package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded by the API.
const (
	AuditActionSyncPush        = "SYNC_PUSH"
	AuditActionProfileComplete = "PROFILE_COMPLETE"
	AuditActionProfileUpdate   = "PROFILE_UPDATE"
	AuditActionCourseCreate    = "COURSE_CREATE"
	AuditActionCourseUpdate    = "COURSE_UPDATE"
	AuditActionCourseDelete    = "COURSE_DELETE"
	AuditActionSessionCreate   = "SESSION_CREATE"
	AuditActionEnroll          = "ENROLL"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	UserID     *string         `db:"user_id" json:"user_id,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	Details    json.RawMessage `db:"details" json:"details"`
	RequestID  *string         `db:"request_id" json:"request_id,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
