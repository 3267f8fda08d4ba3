// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// Repository defines the user directory
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, u *User) (*User, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, program, year_level, bio, instagram_handle,
	phone_number, contact_preference, is_active, created_at, updated_at`

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = $1`
	if err := r.db.GetContext(ctx, &u, query, strings.ToLower(strings.TrimSpace(email))); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, u *User) (*User, error) {
	var updated User
	query := `
		UPDATE users SET
			bio = $2,
			program = $3,
			year_level = $4,
			instagram_handle = $5,
			phone_number = $6,
			contact_preference = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	err := r.db.GetContext(ctx, &updated, query,
		u.ID, u.Bio, u.Program, u.YearLevel, u.InstagramHandle, u.PhoneNumber, u.ContactPreference,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &updated, nil
}
