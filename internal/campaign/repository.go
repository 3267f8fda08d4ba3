package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// Repository reads campaign configuration. Campaign CRUD lives elsewhere.
type Repository interface {
	GetActive(ctx context.Context) (*Campaign, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error)
	GetStats(ctx context.Context, id uuid.UUID) (*Stats, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const campaignColumns = `id, name, survey_open_date, survey_close_date, profile_update_start_date,
	profile_update_end_date, results_release_date, algorithm_version, is_active`

func (r *postgresRepository) GetActive(ctx context.Context) (*Campaign, error) {
	var c Campaign
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE is_active = TRUE
		ORDER BY survey_open_date DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &c, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("active campaign")
		}
		return nil, fmt.Errorf("failed to get active campaign: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	var c Campaign
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("campaign")
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) GetStats(ctx context.Context, id uuid.UUID) (*Stats, error) {
	var s Stats
	query := `
		SELECT
			$1::uuid AS campaign_id,
			(SELECT COUNT(DISTINCT user_id) FROM survey_responses WHERE campaign_id = $1) AS total_participants,
			(SELECT COUNT(*) FROM survey_completions WHERE campaign_id = $1) AS survey_completed_count,
			(SELECT COUNT(*) FROM matches WHERE campaign_id = $1) AS total_matches,
			(SELECT COUNT(*) FROM matches WHERE campaign_id = $1 AND is_mutual_interest) AS mutual_matches`

	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, fmt.Errorf("failed to get campaign stats: %w", err)
	}
	return &s, nil
}
