package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
)

const (
	listingKeyPrefix    = "resources:list"
	generationKeyPrefix = "resources:gen"
)

// CacheRepository abstracts persistence for cached payloads and generation counters.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Counter(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// CacheService orchestrates cache operations and related metrics.
//
// Listings are keyed by a per-semester generation. Every change to a semester
// bumps its generation, so snapshots read before the change are never served
// again, even when they are written back after the bump.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool

	mu sync.Mutex
	// semesters whose generation could not be bumped; bypassed until a bump succeeds
	stale map[int]struct{}
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		repo:       repo,
		metrics:    metrics,
		defaultTTL: defaultTTL,
		logger:     logger,
		enabled:    enabled,
		stale:      make(map[int]struct{}),
	}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
// Backend failures are logged and reported as a miss so callers fall through to the store.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	err := s.repo.Get(ctx, key, dest)
	if err != nil {
		s.metrics.RecordCacheOperation(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	s.metrics.RecordCacheOperation(true)
	return true
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if err := s.repo.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// ListingGeneration returns the current listing generation of a semester. ok is
// false when listings of the semester must bypass the cache.
func (s *CacheService) ListingGeneration(ctx context.Context, semester int) (gen int64, ok bool) {
	if !s.Enabled() {
		return 0, false
	}
	if s.isStale(semester) {
		if err := s.bump(ctx, semester); err != nil {
			return 0, false
		}
	}
	gen, err := s.repo.Counter(ctx, generationKey(semester))
	if err != nil {
		s.logger.Warn("cache generation read failed", zap.Int("semester", semester), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// InvalidateListings retires every cached listing of a semester. When the
// generation cannot be bumped the semester bypasses the cache until it can.
func (s *CacheService) InvalidateListings(ctx context.Context, semester int) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.bump(ctx, semester); err != nil {
		return err
	}
	// superseded generations are unreachable; this only reclaims memory early
	if err := s.repo.DeleteByPattern(ctx, SemesterListingPattern(semester)); err != nil {
		s.logger.Debug("cache cleanup failed", zap.Int("semester", semester), zap.Error(err))
	}
	return nil
}

func (s *CacheService) bump(ctx context.Context, semester int) error {
	if _, err := s.repo.Incr(ctx, generationKey(semester)); err != nil {
		s.mu.Lock()
		s.stale[semester] = struct{}{}
		s.mu.Unlock()
		s.logger.Warn("cache generation bump failed", zap.Int("semester", semester), zap.Error(err))
		return err
	}
	s.mu.Lock()
	delete(s.stale, semester)
	s.mu.Unlock()
	return nil
}

func (s *CacheService) isStale(semester int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stale[semester]
	return ok
}

// ListingKey is the cache key of one resource bucket at a generation.
func ListingKey(semester int, gen int64, course, resourceType string) string {
	return fmt.Sprintf("%s:%d:%d:%s:%s", listingKeyPrefix, semester, gen, escapeGlob(course), resourceType)
}

// SemesterListingPattern matches every cached bucket of a semester.
func SemesterListingPattern(semester int) string {
	return fmt.Sprintf("%s:%d:*", listingKeyPrefix, semester)
}

func generationKey(semester int) string {
	return fmt.Sprintf("%s:%d", generationKeyPrefix, semester)
}

// escapeGlob keeps course names from acting as SCAN patterns.
func escapeGlob(s string) string {
	return strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`).Replace(s)
}
