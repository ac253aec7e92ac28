package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
)

type resourceRepository interface {
	Create(ctx context.Context, res *models.Resource) error
	List(ctx context.Context, semester int, course, resourceType string) ([]models.ResourceSummary, error)
	FindByID(ctx context.Context, id int64) (*models.Resource, error)
	Delete(ctx context.Context, id int64) (*models.Resource, error)
	ListAll(ctx context.Context) ([]models.Resource, error)
	Count(ctx context.Context) (int, error)
}

// ResourceService coordinates the resource store, its listing cache and query metrics.
type ResourceService struct {
	repo    resourceRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewResourceService constructs a ResourceService. cache and metrics may be nil.
func NewResourceService(repo resourceRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// Add persists a new resource and returns its id.
func (s *ResourceService) Add(ctx context.Context, in models.NewResource) (int64, error) {
	res := &models.Resource{
		Semester:     in.Semester,
		Course:       in.Course,
		ResourceType: in.ResourceType,
		FileRef:      in.FileRef,
		FileName:     in.FileName,
		UploaderID:   in.UploaderID,
	}
	start := time.Now()
	err := s.repo.Create(ctx, res)
	s.metrics.ObserveDBQuery("resource_create", time.Since(start))
	if err != nil {
		return 0, appErrors.Storage(err, "failed to store resource")
	}
	s.invalidate(ctx, in.Semester)
	s.logger.Info("resource added",
		zap.Int64("resource_id", res.ID),
		zap.Int("semester", res.Semester),
		zap.String("course", res.Course),
		zap.String("resource_type", res.ResourceType),
		zap.Int64("uploader_id", res.UploaderID),
	)
	return res.ID, nil
}

// List returns the resources of one bucket, newest first.
func (s *ResourceService) List(ctx context.Context, semester int, course, resourceType string) ([]models.ResourceSummary, error) {
	// the generation is read before the store so a concurrent change retires this snapshot
	gen, cacheable := s.cache.ListingGeneration(ctx, semester)
	key := ListingKey(semester, gen, course, resourceType)
	if cacheable {
		var cached []models.ResourceSummary
		if s.cache.Get(ctx, key, &cached) {
			if cached == nil {
				cached = []models.ResourceSummary{}
			}
			return cached, nil
		}
	}

	start := time.Now()
	items, err := s.repo.List(ctx, semester, course, resourceType)
	s.metrics.ObserveDBQuery("resource_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list resources")
	}
	if cacheable {
		s.cache.Set(ctx, key, items, 0)
	}
	return items, nil
}

// Get returns a resource by id.
func (s *ResourceService) Get(ctx context.Context, id int64) (*models.Resource, error) {
	start := time.Now()
	res, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("resource_get", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Storage(err, "failed to load resource")
	}
	return res, nil
}

// Delete removes a resource. Deleting an id that no longer exists reports NotFound.
func (s *ResourceService) Delete(ctx context.Context, id int64) (*models.Resource, error) {
	start := time.Now()
	res, err := s.repo.Delete(ctx, id)
	s.metrics.ObserveDBQuery("resource_delete", time.Since(start))
	if err != nil {
		return nil, appErrors.Storage(err, "failed to delete resource")
	}
	if res == nil {
		return nil, appErrors.ErrNotFound
	}
	s.invalidate(ctx, res.Semester)
	s.logger.Info("resource deleted", zap.Int64("resource_id", res.ID), zap.String("file_name", res.FileName))
	return res, nil
}

// All returns every stored resource.
func (s *ResourceService) All(ctx context.Context) ([]models.Resource, error) {
	start := time.Now()
	items, err := s.repo.ListAll(ctx)
	s.metrics.ObserveDBQuery("resource_list_all", time.Since(start))
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list resources")
	}
	return items, nil
}

// Count returns the number of stored resources.
func (s *ResourceService) Count(ctx context.Context) (int, error) {
	start := time.Now()
	total, err := s.repo.Count(ctx)
	s.metrics.ObserveDBQuery("resource_count", time.Since(start))
	if err != nil {
		return 0, appErrors.Storage(err, "failed to count resources")
	}
	return total, nil
}

func (s *ResourceService) invalidate(ctx context.Context, semester int) {
	if err := s.cache.InvalidateListings(ctx, semester); err != nil {
		s.logger.Warn("listing cache bypassed until invalidation succeeds", zap.Int("semester", semester), zap.Error(err))
	}
}
