package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/pkg/jobs"
	"github.com/noah-isme/attendance-sync-api/pkg/middleware/requestid"
)

const auditJobType = "audit.write"

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditConfig sizes the audit worker pool.
type AuditConfig struct {
	Workers    int
	MaxRetries int
	BufferSize int
	RetryDelay time.Duration
}

// AuditService persists audit entries off the request path through a job queue.
type AuditService struct {
	repo   auditWriter
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService builds the service and its queue. Call Start before recording.
func NewAuditService(repo auditWriter, cfg AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{repo: repo, logger: logger}
	svc.queue = jobs.NewQueue("audit", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the audit workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending entries until ctx expires.
func (s *AuditService) Stop(ctx context.Context) {
	s.queue.Stop(ctx)
}

// Record enqueues entry for persistence, stamping the request id carried by ctx.
// Entries that cannot be queued are logged and dropped.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditLog) {
	if s == nil || entry == nil {
		return
	}
	if entry.RequestID == nil {
		entry.RequestID = stringPtr(requestid.FromContext(ctx))
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{Type: auditJobType, Payload: entry}); err != nil {
		s.logger.Warn("audit entry dropped", zap.String("action", entry.Action), zap.Error(err))
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.AuditLog)
	if !ok {
		s.logger.Error("unexpected audit payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	return s.repo.Create(ctx, entry)
}
