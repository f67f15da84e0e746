package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/duty-reconciler/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	helper *QueryHelper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{helper: NewQueryHelper(pool)}
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, display_name, role, override_enabled, override_expires_at, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	var user persistence.User
	var overrideEnabled int
	var overrideExpiresStr sql.NullString
	var createdAtStr, updatedAtStr string

	err := r.helper.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Role,
		&overrideEnabled,
		&overrideExpiresStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, MapError(err)
	}

	user.OverrideEnabled = overrideEnabled != 0
	if overrideExpiresStr.Valid && overrideExpiresStr.String != "" {
		expiry, err := time.Parse(time.RFC3339, overrideExpiresStr.String)
		if err != nil {
			return persistence.User{}, fmt.Errorf("failed to parse override_expires_at: %w", err)
		}
		user.OverrideExpiresAt = &expiry
	}
	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return user, nil
}

// InsertUser stores a user row. Used by fixtures and tests; the reconciler
// itself never creates users.
func (r *UserRepository) InsertUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	var expiry any
	if user.OverrideExpiresAt != nil {
		expiry = user.OverrideExpiresAt.UTC().Format(time.RFC3339)
	}

	query := `
		INSERT INTO users (id, display_name, role, override_enabled, override_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		user.ID,
		user.DisplayName,
		user.Role,
		user.OverrideEnabled,
		expiry,
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}
