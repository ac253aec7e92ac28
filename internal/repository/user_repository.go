package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
)

// UserRepository provides database access for the user registry.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts the user or refreshes its username. The admin flag is OR-ed so
// an upsert never revokes admin status.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (user_id, username, is_admin) VALUES (:user_id, :username, :is_admin)
ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, is_admin = (users.is_admin OR EXCLUDED.is_admin)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// IsAdmin reports the stored admin flag; unknown users are not admins.
func (r *UserRepository) IsAdmin(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT is_admin FROM users WHERE user_id = $1`
	var admin bool
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check admin flag: %w", err)
	}
	return admin, nil
}

// SetAdmin overrides the admin flag. It reports whether a user row was updated.
func (r *UserRepository) SetAdmin(ctx context.Context, id int64, admin bool) (bool, error) {
	const query = `UPDATE users SET is_admin = $2 WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, id, admin)
	if err != nil {
		return false, fmt.Errorf("set admin flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set admin flag rows: %w", err)
	}
	return affected > 0, nil
}

// ListIDs returns the ids of every known user, admins included.
func (r *UserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT user_id FROM users ORDER BY user_id`
	ids := make([]int64, 0)
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

// ListAdminIDs returns the ids of users whose stored flag is set.
func (r *UserRepository) ListAdminIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT user_id FROM users WHERE is_admin = TRUE ORDER BY user_id`
	ids := make([]int64, 0)
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list admin ids: %w", err)
	}
	return ids, nil
}
