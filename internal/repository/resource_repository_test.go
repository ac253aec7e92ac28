package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var resourceRowColumns = []string{"id", "semester", "course", "resource_type", "file_ref", "file_name", "uploader_id", "uploaded_at"}

func TestResourceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO resources (semester, course, resource_type, file_ref, file_name, uploader_id, uploaded_at)")).
		WithArgs(int64(3), "UG2301 Syntax 1", "books", "file-ref-1", "syntax.pdf", int64(42), fixed).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	res := &models.Resource{Semester: 3, Course: "UG2301 Syntax 1", ResourceType: "books", FileRef: "file-ref-1", FileName: "syntax.pdf", UploaderID: 42}
	require.NoError(t, repo.Create(context.Background(), res))
	assert.Equal(t, int64(7), res.ID)
	assert.Equal(t, fixed, res.UploadedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryCreateFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)

	mock.ExpectQuery("INSERT INTO resources").WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), &models.Resource{Semester: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create resource")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListOrdersNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "file_name", "file_ref"}).
		AddRow(int64(9), "newer.pdf", "ref-9").
		AddRow(int64(4), "older.pdf", "ref-4")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, file_name, file_ref FROM resources WHERE semester = $1 AND course = $2 AND resource_type = $3 ORDER BY uploaded_at DESC, id DESC")).
		WithArgs(int64(3), "UG2301 Syntax 1", "books").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), 3, "UG2301 Syntax 1", "books")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(9), items[0].ID)
	assert.Equal(t, "ref-4", items[1].FileRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)

	mock.ExpectQuery("SELECT id, file_name, file_ref FROM resources").
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_name", "file_ref"}))

	items, err := repo.List(context.Background(), 3, "UG2301 Syntax 1", "books")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM resources WHERE id = $1 LIMIT 1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(resourceRowColumns))

	res, err := repo.FindByID(context.Background(), 99)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryDeleteIsConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM resources WHERE id = $1 RETURNING")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(resourceRowColumns).AddRow(int64(7), 3, "UG2301 Syntax 1", "books", "ref", "syntax.pdf", int64(42), now))
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM resources WHERE id = $1 RETURNING")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(resourceRowColumns))

	removed, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, "syntax.pdf", removed.FileName)
	assert.Equal(t, 3, removed.Semester)

	removed, err = repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM resources")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
