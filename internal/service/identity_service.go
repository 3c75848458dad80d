package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-sync-api/internal/models"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
)

type userUpserter interface {
	Upsert(ctx context.Context, user *models.User) (bool, error)
}

// IdentityService maps verified identities onto local accounts.
type IdentityService struct {
	users  userUpserter
	policy models.DefaultingPolicy
	logger *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(users userUpserter, policy models.DefaultingPolicy, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{users: users, policy: policy, logger: logger}
}

// Bootstrap creates the account for identity or refreshes its email, name and
// role from the verified token. The boolean reports whether the account is new.
func (s *IdentityService) Bootstrap(ctx context.Context, identity *idtoken.Identity, requestedRole string) (*models.User, bool, error) {
	if identity == nil || identity.Subject == "" {
		return nil, false, appErrors.ErrUnauthorized
	}
	user := &models.User{
		FirebaseUID: identity.Subject,
		Email:       stringPtr(identity.Email),
		Name:        stringPtr(identity.Name),
		Role:        s.policy.NormalizeRole(requestedRole),
	}
	isNew, err := s.users.Upsert(ctx, user)
	if err != nil {
		s.logger.Error("bootstrap failed", zap.String("firebase_uid", identity.Subject), zap.Error(err))
		return nil, false, appErrors.Internal(err, "Bootstrap failed")
	}
	if isNew {
		s.logger.Info("user bootstrapped", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	}
	return user, isNew, nil
}
