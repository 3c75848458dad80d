package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	"github.com/noah-isme/attendance-sync-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
)

const (
	// DefaultSyncMaxOps caps the operations accepted in one push.
	DefaultSyncMaxOps = 500

	syncFailureMessage = "Failed to process operation"
	unknownMetricLabel = "unknown"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(repository.Repositories) error) error
}

// SyncService reconciles batches of offline-captured operations.
type SyncService struct {
	store     txRunner
	policy    models.DefaultingPolicy
	maxOps    int
	appliers  map[string]SyncApplier
	validator *validator.Validate
	metrics   *MetricsService
	audit     auditRecorder
	cache     cacheInvalidator
	now       func() time.Time
	logger    *zap.Logger
}

// SyncServiceOption configures the service.
type SyncServiceOption func(*SyncService)

// WithSyncAppliers registers appliers keyed by "entity/op", replacing built-ins with the same key.
func WithSyncAppliers(appliers map[string]SyncApplier) SyncServiceOption {
	return func(s *SyncService) {
		for k, v := range appliers {
			s.appliers[k] = v
		}
	}
}

// WithSyncMetrics records per-operation counters.
func WithSyncMetrics(metrics *MetricsService) SyncServiceOption {
	return func(s *SyncService) { s.metrics = metrics }
}

// WithSyncAudit records one audit entry per push.
func WithSyncAudit(audit auditRecorder) SyncServiceOption {
	return func(s *SyncService) { s.audit = audit }
}

// WithSyncCache invalidates student read caches touched by a push.
func WithSyncCache(cache cacheInvalidator) SyncServiceOption {
	return func(s *SyncService) { s.cache = cache }
}

// WithSyncClock overrides the time source used for defaulted timestamps.
func WithSyncClock(now func() time.Time) SyncServiceOption {
	return func(s *SyncService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSyncService constructs the service with the attendance and session appliers registered.
func NewSyncService(store txRunner, policy models.DefaultingPolicy, maxOps int, logger *zap.Logger, opts ...SyncServiceOption) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxOps <= 0 {
		maxOps = DefaultSyncMaxOps
	}
	svc := &SyncService{
		store:     store,
		policy:    policy,
		maxOps:    maxOps,
		appliers:  make(map[string]SyncApplier),
		validator: validator.New(),
		now:       time.Now,
		logger:    logger,
	}
	clock := func() time.Time { return svc.now() }
	svc.appliers[SyncAttendanceCreate] = &attendanceApplier{now: clock, logger: logger}
	svc.appliers[SyncSessionCreate] = &sessionApplier{now: clock, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Push applies req.Ops in order, each in its own transaction. Failures are
// reported per operation and never abort the batch.
func (s *SyncService) Push(ctx context.Context, identity *idtoken.Identity, req dto.SyncPushRequest) (*dto.SyncPushResponse, error) {
	if identity == nil || identity.Subject == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if len(req.Ops) > s.maxOps {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("At most %d operations are accepted per push", s.maxOps))
	}

	started := time.Now()
	agg := NewResultAggregator(len(req.Ops))
	touched := make(map[string]struct{})
	for _, op := range req.Ops {
		effect, err := s.apply(ctx, op)
		s.metrics.RecordSyncOperation(s.metricLabels(op, err == nil))
		if err != nil {
			agg.Fail(op.OpID, s.failureMessage(op, identity, err))
			continue
		}
		agg.Succeed(op.OpID)
		for _, id := range effect.UserIDs {
			touched[id] = struct{}{}
		}
	}
	s.metrics.ObserveSyncBatch(len(req.Ops), time.Since(started))

	s.logger.Info("sync push processed",
		zap.String("firebase_uid", identity.Subject),
		zap.Int("ops", len(req.Ops)),
		zap.Int("succeeded", agg.Succeeded()),
		zap.Int("failed", agg.Failed()),
	)
	s.recordAudit(ctx, identity, agg)
	s.invalidate(ctx, touched)
	return agg.Response(), nil
}

func (s *SyncService) apply(ctx context.Context, op dto.SyncOperation) (SyncEffect, error) {
	if err := s.validator.Struct(op); err != nil {
		return SyncEffect{}, appErrors.Clone(appErrors.ErrValidation, "Invalid operation")
	}
	applier, ok := s.appliers[SyncKey(op.Entity, op.Op)]
	if !ok {
		if s.policy.AcceptsUnknownOps() {
			s.logger.Debug("unknown sync operation accepted", zap.String("op_id", op.OpID), zap.String("operation", describeOp(op)))
			return SyncEffect{}, nil
		}
		return SyncEffect{}, appErrors.Clone(appErrors.ErrValidation, "Unsupported operation "+describeOp(op))
	}

	var effect SyncEffect
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var applyErr error
		effect, applyErr = applier.Apply(ctx, repos, op)
		return applyErr
	})
	return effect, err
}

// failureMessage maps err onto the message returned to the client. Typed
// errors keep their message, constraint violations become conflicts, and
// anything else is logged and reported opaquely.
func (s *SyncService) failureMessage(op dto.SyncOperation, identity *idtoken.Identity, err error) string {
	var typed *appErrors.Error
	if errors.As(err, &typed) && typed.Code != appErrors.ErrInternal.Code {
		return typed.Message
	}
	if cv, ok := repository.AsConstraintViolation(err); ok {
		switch cv.Constraint {
		case repository.ConstraintAttendanceSessionStudent:
			return "Attendance already recorded"
		case repository.ConstraintEnrollmentStudentCourse:
			return "Already enrolled in this course"
		default:
			return appErrors.ErrConflict.Message
		}
	}
	s.logger.Error("sync operation failed",
		zap.String("firebase_uid", identity.Subject),
		zap.String("op_id", op.OpID),
		zap.String("operation", describeOp(op)),
		zap.String("entity_id", op.EntityID),
		zap.Error(err),
	)
	return syncFailureMessage
}

func (s *SyncService) metricLabels(op dto.SyncOperation, ok bool) (string, string, bool) {
	key := SyncKey(op.Entity, op.Op)
	if _, registered := s.appliers[key]; !registered {
		return unknownMetricLabel, unknownMetricLabel, ok
	}
	entity, verb, _ := strings.Cut(key, "/")
	return entity, verb, ok
}

func (s *SyncService) recordAudit(ctx context.Context, identity *idtoken.Identity, agg *ResultAggregator) {
	if s.audit == nil {
		return
	}
	details, err := json.Marshal(map[string]interface{}{
		"firebase_uid": identity.Subject,
		"succeeded":    agg.Succeeded(),
		"failed":       agg.Failed(),
	})
	if err != nil {
		s.logger.Warn("failed to encode sync audit details", zap.Error(err))
		return
	}
	s.audit.Record(ctx, &models.AuditLog{
		Action:   models.AuditActionSyncPush,
		Resource: "sync",
		Details:  details,
	})
}

func (s *SyncService) invalidate(ctx context.Context, userIDs map[string]struct{}) {
	if s.cache == nil {
		return
	}
	for id := range userIDs {
		if err := s.cache.Invalidate(ctx, studentCachePattern(id)); err != nil {
			s.logger.Warn("failed to invalidate student cache", zap.String("user_id", id), zap.Error(err))
		}
	}
}
