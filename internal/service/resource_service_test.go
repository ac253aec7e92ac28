package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
)

type mockResourceRepo struct {
	mu        sync.Mutex
	nextID    int64
	items     map[int64]models.Resource
	clock     time.Time
	createErr error
	listErr   error
	listCalls int
	// afterList runs once, after a listing was read and before it is returned
	afterList func()
}

func newMockResourceRepo() *mockResourceRepo {
	return &mockResourceRepo{items: make(map[int64]models.Resource), clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (m *mockResourceRepo) Create(ctx context.Context, res *models.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	res.ID = m.nextID
	if res.UploadedAt.IsZero() {
		res.UploadedAt = m.clock
	}
	m.items[res.ID] = *res
	return nil
}

func (m *mockResourceRepo) List(ctx context.Context, semester int, course, resourceType string) ([]models.ResourceSummary, error) {
	out, err := m.list(semester, course, resourceType)
	m.mu.Lock()
	hook := m.afterList
	m.afterList = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, err
}

func (m *mockResourceRepo) list(semester int, course, resourceType string) ([]models.ResourceSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	matched := make([]models.Resource, 0)
	for _, item := range m.items {
		if item.Semester == semester && item.Course == course && item.ResourceType == resourceType {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].UploadedAt.Equal(matched[j].UploadedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].UploadedAt.After(matched[j].UploadedAt)
	})
	out := make([]models.ResourceSummary, 0, len(matched))
	for _, item := range matched {
		out = append(out, models.ResourceSummary{ID: item.ID, FileName: item.FileName, FileRef: item.FileRef})
	}
	return out, nil
}

func (m *mockResourceRepo) FindByID(ctx context.Context, id int64) (*models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (m *mockResourceRepo) Delete(ctx context.Context, id int64) (*models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	delete(m.items, id)
	return &item, nil
}

func (m *mockResourceRepo) ListAll(ctx context.Context) ([]models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Resource, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockResourceRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

type memoryCacheRepo struct {
	mu       sync.Mutex
	entries  map[string][]models.ResourceSummary
	counters map[string]int64
	deleted  []string
	incrErr  error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{
		entries:  make(map[string][]models.ResourceSummary),
		counters: make(map[string]int64),
	}
}

func (m *memoryCacheRepo) Counter(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key], nil
}

func (m *memoryCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memoryCacheRepo) failIncr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incrErr = err
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.ResourceSummary)) = append([]models.ResourceSummary(nil), val...)
	return nil
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]models.ResourceSummary(nil), value.([]models.ResourceSummary)...)
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	prefix := pattern[:len(pattern)-1]
	for key := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(m.entries, key)
		}
	}
	return nil
}

func newTestResourceService(repo resourceRepository, cacheRepo CacheRepository) *ResourceService {
	metrics := NewMetricsService()
	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), true)
	}
	return NewResourceService(repo, cache, metrics, zap.NewNop())
}

func upload(sem int, course, typ, name string) models.NewResource {
	return models.NewResource{Semester: sem, Course: course, ResourceType: typ, FileRef: "ref-" + name, FileName: name, UploaderID: 7}
}

func TestResourceServiceAddThenList(t *testing.T) {
	repo := newMockResourceRepo()
	svc := newTestResourceService(repo, nil)
	ctx := context.Background()

	id, err := svc.Add(ctx, upload(1, "LIN 111", "books", "intro.pdf"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	items, err := svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ResourceSummary{ID: id, FileName: "intro.pdf", FileRef: "ref-intro.pdf"}, items[0])

	other, err := svc.List(ctx, 1, "LIN 111", "notes")
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)
}

func TestResourceServiceListTiesNewestInsertFirst(t *testing.T) {
	repo := newMockResourceRepo()
	svc := newTestResourceService(repo, nil)
	ctx := context.Background()

	first, err := svc.Add(ctx, upload(2, "LIN 121", "notes", "a.pdf"))
	require.NoError(t, err)
	second, err := svc.Add(ctx, upload(2, "LIN 121", "notes", "b.pdf"))
	require.NoError(t, err)

	items, err := svc.List(ctx, 2, "LIN 121", "notes")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second, items[0].ID)
	assert.Equal(t, first, items[1].ID)
}

func TestResourceServiceAddStorageFailure(t *testing.T) {
	repo := newMockResourceRepo()
	repo.createErr = errors.New("connection refused")
	svc := newTestResourceService(repo, nil)

	_, err := svc.Add(context.Background(), upload(1, "LIN 111", "books", "x.pdf"))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.CodeStorageUnavailable))
	assert.ErrorIs(t, err, repo.createErr)
}

func TestResourceServiceGetNotFound(t *testing.T) {
	svc := newTestResourceService(newMockResourceRepo(), nil)

	_, err := svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestResourceServiceDeleteTwiceReportsNotFound(t *testing.T) {
	repo := newMockResourceRepo()
	svc := newTestResourceService(repo, nil)
	ctx := context.Background()

	id, err := svc.Add(ctx, upload(3, "LIN 211", "syllabus", "outline.pdf"))
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "outline.pdf", removed.FileName)

	_, err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	items, err := svc.List(ctx, 3, "LIN 211", "syllabus")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestResourceServiceListUsesCacheAndInvalidates(t *testing.T) {
	repo := newMockResourceRepo()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestResourceService(repo, cacheRepo)
	ctx := context.Background()

	_, err := svc.Add(ctx, upload(1, "LIN 111", "books", "a.pdf"))
	require.NoError(t, err)

	_, err = svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	_, err = svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	id, err := svc.Add(ctx, upload(1, "LIN 111", "books", "b.pdf"))
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deleted, SemesterListingPattern(1))

	items, err := svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	require.Len(t, items, 2)
	assert.Equal(t, id, items[0].ID)
}

func TestResourceServiceListStorageFailure(t *testing.T) {
	repo := newMockResourceRepo()
	repo.listErr = errors.New("timeout")
	svc := newTestResourceService(repo, nil)

	_, err := svc.List(context.Background(), 1, "LIN 111", "books")
	assert.True(t, appErrors.HasCode(err, appErrors.CodeStorageUnavailable))
}

func TestResourceServiceCountAndAll(t *testing.T) {
	repo := newMockResourceRepo()
	svc := newTestResourceService(repo, nil)
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := svc.Add(ctx, upload(1, "LIN 111", "books", name))
		require.NoError(t, err)
	}

	total, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestResourceServiceListBypassesCacheWhenInvalidationFails(t *testing.T) {
	repo := newMockResourceRepo()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestResourceService(repo, cacheRepo)
	ctx := context.Background()

	id, err := svc.Add(ctx, upload(1, "LIN 111", "books", "a.pdf"))
	require.NoError(t, err)
	items, err := svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	require.Len(t, items, 1)

	cacheRepo.failIncr(errors.New("redis unreachable"))
	_, err = svc.Delete(ctx, id)
	require.NoError(t, err)

	items, err = svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 2, repo.listCalls)

	cacheRepo.failIncr(nil)
	items, err = svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	assert.Empty(t, items)
	items, err = svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 3, repo.listCalls)
}

func TestResourceServiceListSnapshotRacingDelete(t *testing.T) {
	repo := newMockResourceRepo()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestResourceService(repo, cacheRepo)
	ctx := context.Background()

	id, err := svc.Add(ctx, upload(1, "LIN 111", "books", "a.pdf"))
	require.NoError(t, err)

	repo.afterList = func() {
		_, err := svc.Delete(ctx, id)
		require.NoError(t, err)
	}
	inFlight, err := svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	require.Len(t, inFlight, 1)

	items, err := svc.List(ctx, 1, "LIN 111", "books")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestListingKeyEscapesGlobCharacters(t *testing.T) {
	assert.Equal(t, `resources:list:1:7:LIN\*111:books`, ListingKey(1, 7, "LIN*111", "books"))
	assert.Equal(t, "resources:list:4:*", SemesterListingPattern(4))
	assert.Equal(t, "resources:gen:4", generationKey(4))
}
