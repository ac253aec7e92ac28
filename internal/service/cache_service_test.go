package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis unreachable")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis unreachable")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("redis unreachable")
}

func (failingCacheRepo) Counter(ctx context.Context, key string) (int64, error) {
	return 0, errors.New("redis unreachable")
}

func (failingCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	return 0, errors.New("redis unreachable")
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest []models.ResourceSummary
	assert.False(t, svc.Get(ctx, "k", &dest))

	svc.Set(ctx, "k", []models.ResourceSummary{{ID: 1}}, 0)
	assert.True(t, svc.Get(ctx, "k", &dest))
	assert.Len(t, dest, 1)

	snap := metrics.Snapshot()
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
}

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(newMemoryCacheRepo(), nil, 0, nil, false)
	assert.False(t, svc.Enabled())

	var dest []models.ResourceSummary
	assert.False(t, svc.Get(context.Background(), "k", &dest))
	assert.NoError(t, svc.InvalidateListings(context.Background(), 1))
	_, ok := svc.ListingGeneration(context.Background(), 1)
	assert.False(t, ok)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceBackendFailureIsMiss(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest []models.ResourceSummary
	assert.False(t, svc.Get(ctx, "k", &dest))
	svc.Set(ctx, "k", dest, 0)
	assert.Error(t, svc.InvalidateListings(ctx, 1))
	_, ok := svc.ListingGeneration(ctx, 1)
	assert.False(t, ok)
}

func TestCacheServiceGenerationAdvancesOnInvalidate(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	before, ok := svc.ListingGeneration(ctx, 2)
	assert.True(t, ok)
	assert.NoError(t, svc.InvalidateListings(ctx, 2))
	after, ok := svc.ListingGeneration(ctx, 2)
	assert.True(t, ok)
	assert.Greater(t, after, before)

	other, ok := svc.ListingGeneration(ctx, 3)
	assert.True(t, ok)
	assert.Zero(t, other)
}

func TestCacheServiceStaleSemesterRecovers(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	repo.failIncr(errors.New("redis unreachable"))
	assert.Error(t, svc.InvalidateListings(ctx, 1))
	_, ok := svc.ListingGeneration(ctx, 1)
	assert.False(t, ok)
	_, ok = svc.ListingGeneration(ctx, 2)
	assert.True(t, ok)

	repo.failIncr(nil)
	gen, ok := svc.ListingGeneration(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), gen)
}
