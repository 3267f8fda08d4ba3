package interest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/database"
)

type Repository interface {
	// ReplaceCrushList swaps the owner's list for entries atomically.
	ReplaceCrushList(ctx context.Context, campaignID, ownerID uuid.UUID, entries []*CrushEntry) error
	ListCrushEntries(ctx context.Context, campaignID, ownerID uuid.UUID) ([]*CrushEntry, error)
	// ListAdmirers returns the owners whose lists contain email, which must
	// already be normalized.
	ListAdmirers(ctx context.Context, campaignID uuid.UUID, email string) ([]Admirer, error)

	UpsertInteraction(ctx context.Context, in *Interaction) error
	GetInteraction(ctx context.Context, campaignID, actorID, targetID uuid.UUID) (*Interaction, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ReplaceCrushList(ctx context.Context, campaignID, ownerID uuid.UUID, entries []*CrushEntry) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM crush_entries WHERE campaign_id = $1 AND owner_user_id = $2`,
			campaignID, ownerID,
		); err != nil {
			return fmt.Errorf("failed to clear crush list: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}

		query := `
			INSERT INTO crush_entries (id, owner_user_id, campaign_id, target_email, target_name, created_at)
			VALUES (:id, :owner_user_id, :campaign_id, :target_email, :target_name, :created_at)`
		rows := make([]CrushEntry, len(entries))
		for i, e := range entries {
			rows[i] = *e
		}
		if _, err := tx.NamedExecContext(ctx, query, rows); err != nil {
			return fmt.Errorf("failed to insert crush entries: %w", err)
		}
		return nil
	})
}

func (r *postgresRepository) ListCrushEntries(ctx context.Context, campaignID, ownerID uuid.UUID) ([]*CrushEntry, error) {
	entries := []*CrushEntry{}
	query := `
		SELECT id, owner_user_id, campaign_id, target_email, target_name, created_at
		FROM crush_entries
		WHERE campaign_id = $1 AND owner_user_id = $2
		ORDER BY created_at, target_email`

	if err := r.db.SelectContext(ctx, &entries, query, campaignID, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list crush entries: %w", err)
	}
	return entries, nil
}

func (r *postgresRepository) ListAdmirers(ctx context.Context, campaignID uuid.UUID, email string) ([]Admirer, error) {
	var admirers []Admirer
	query := `
		SELECT c.owner_user_id, u.email
		FROM crush_entries c
		JOIN users u ON u.id = c.owner_user_id
		WHERE c.campaign_id = $1 AND c.target_email = $2 AND u.is_active = TRUE`

	if err := r.db.SelectContext(ctx, &admirers, query, campaignID, email); err != nil {
		return nil, fmt.Errorf("failed to list admirers: %w", err)
	}
	return admirers, nil
}

func (r *postgresRepository) UpsertInteraction(ctx context.Context, in *Interaction) error {
	query := `
		INSERT INTO interactions (campaign_id, actor_id, target_id, kind, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (campaign_id, actor_id, target_id)
		DO UPDATE SET kind = EXCLUDED.kind, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, in.CampaignID, in.ActorID, in.TargetID, in.Kind, in.UpdatedAt); err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetInteraction(ctx context.Context, campaignID, actorID, targetID uuid.UUID) (*Interaction, error) {
	var in Interaction
	query := `
		SELECT campaign_id, actor_id, target_id, kind, updated_at
		FROM interactions
		WHERE campaign_id = $1 AND actor_id = $2 AND target_id = $3`

	if err := r.db.GetContext(ctx, &in, query, campaignID, actorID, targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("interaction")
		}
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}
	return &in, nil
}
