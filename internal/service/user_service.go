package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
)

type userRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	IsAdmin(ctx context.Context, id int64) (bool, error)
	SetAdmin(ctx context.Context, id int64, admin bool) (bool, error)
	ListIDs(ctx context.Context) ([]int64, error)
	ListAdminIDs(ctx context.Context) ([]int64, error)
}

// UserService maintains the user registry. The configured allow-list is the only
// source of admin rights; the stored flag mirrors it.
type UserService struct {
	repo      userRepository
	allowList map[int64]struct{}
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, adminIDs []int64, metrics *MetricsService, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	allow := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		allow[id] = struct{}{}
	}
	return &UserService{repo: repo, allowList: allow, metrics: metrics, logger: logger}
}

// IsAdmin reports whether the user is on the allow-list.
func (s *UserService) IsAdmin(id int64) bool {
	_, ok := s.allowList[id]
	return ok
}

// Track records the user, refreshing its username and admin hint.
func (s *UserService) Track(ctx context.Context, id int64, username string) error {
	user := &models.User{ID: id, IsAdmin: s.IsAdmin(id)}
	if name := strings.TrimSpace(username); name != "" {
		user.Username = &name
	}
	start := time.Now()
	err := s.repo.Upsert(ctx, user)
	s.metrics.ObserveDBQuery("user_upsert", time.Since(start))
	if err != nil {
		return appErrors.Storage(err, "failed to record user")
	}
	return nil
}

// IsAdminRecorded reports the stored admin flag.
func (s *UserService) IsAdminRecorded(ctx context.Context, id int64) (bool, error) {
	admin, err := s.repo.IsAdmin(ctx, id)
	if err != nil {
		return false, appErrors.Storage(err, "failed to read user")
	}
	return admin, nil
}

// SetAdmin overrides the stored flag. Unknown users report NotFound.
func (s *UserService) SetAdmin(ctx context.Context, id int64, admin bool) error {
	updated, err := s.repo.SetAdmin(ctx, id, admin)
	if err != nil {
		return appErrors.Storage(err, "failed to update user")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return nil
}

// UserIDs returns every registered user id.
func (s *UserService) UserIDs(ctx context.Context) ([]int64, error) {
	start := time.Now()
	ids, err := s.repo.ListIDs(ctx)
	s.metrics.ObserveDBQuery("user_list_ids", time.Since(start))
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list users")
	}
	return ids, nil
}

// SyncAdmins revokes the stored flag of users that left the allow-list.
// It returns the ids that were revoked.
func (s *UserService) SyncAdmins(ctx context.Context) ([]int64, error) {
	stored, err := s.repo.ListAdminIDs(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list admins")
	}
	revoked := make([]int64, 0)
	for _, id := range stored {
		if s.IsAdmin(id) {
			continue
		}
		if err := s.SetAdmin(ctx, id, false); err != nil {
			if appErrors.HasCode(err, appErrors.CodeNotFound) {
				continue
			}
			return revoked, err
		}
		revoked = append(revoked, id)
	}
	if len(revoked) > 0 {
		s.logger.Info("stale admin flags revoked", zap.Int64s("user_ids", revoked))
	}
	return revoked, nil
}
