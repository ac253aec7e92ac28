package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
)

const resourceColumns = `id, semester, course, resource_type, file_ref, file_name, uploader_id, uploaded_at`

// ResourceRepository provides database access for uploaded course resources.
type ResourceRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewResourceRepository creates a new instance of ResourceRepository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db, now: time.Now}
}

// Create inserts a resource and fills in its store-assigned id and upload time.
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	if res.UploadedAt.IsZero() {
		res.UploadedAt = r.now().UTC()
	}
	const query = `INSERT INTO resources (semester, course, resource_type, file_ref, file_name, uploader_id, uploaded_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		res.Semester, res.Course, res.ResourceType, res.FileRef, res.FileName, res.UploaderID, res.UploadedAt,
	).Scan(&res.ID); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// List returns the resources of one bucket, newest first.
func (r *ResourceRepository) List(ctx context.Context, semester int, course, resourceType string) ([]models.ResourceSummary, error) {
	const query = `SELECT id, file_name, file_ref FROM resources WHERE semester = $1 AND course = $2 AND resource_type = $3 ORDER BY uploaded_at DESC, id DESC`
	items := make([]models.ResourceSummary, 0)
	if err := r.db.SelectContext(ctx, &items, query, semester, course, resourceType); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return items, nil
}

// FindByID returns a resource by identifier. sql.ErrNoRows is returned unwrapped when absent.
func (r *ResourceRepository) FindByID(ctx context.Context, id int64) (*models.Resource, error) {
	const query = `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1 LIMIT 1`
	var res models.Resource
	if err := r.db.GetContext(ctx, &res, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find resource by id: %w", err)
	}
	return &res, nil
}

// Delete removes a resource in a single statement and returns the removed row.
// Deleting an unknown id is not an error: it yields a nil resource.
func (r *ResourceRepository) Delete(ctx context.Context, id int64) (*models.Resource, error) {
	const query = `DELETE FROM resources WHERE id = $1 RETURNING ` + resourceColumns
	var res models.Resource
	if err := r.db.GetContext(ctx, &res, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete resource: %w", err)
	}
	return &res, nil
}

// ListAll returns every resource ordered by catalog coordinates.
func (r *ResourceRepository) ListAll(ctx context.Context) ([]models.Resource, error) {
	const query = `SELECT ` + resourceColumns + ` FROM resources ORDER BY semester, course, resource_type, uploaded_at DESC, id DESC`
	items := make([]models.Resource, 0)
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list all resources: %w", err)
	}
	return items, nil
}

// Count returns the number of stored resources.
func (r *ResourceRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM resources`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count resources: %w", err)
	}
	return total, nil
}
