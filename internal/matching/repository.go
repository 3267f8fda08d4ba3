package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/database"
)

type Repository interface {
	// ReplaceCampaignMatches swaps in next as the campaign's match set in a
	// single transaction, carrying user state forward from the rows it
	// replaces (see CarryForward).
	ReplaceCampaignMatches(ctx context.Context, campaignID uuid.UUID, next []*Match) (*ReplaceResult, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Match, error)
	GetByPair(ctx context.Context, campaignID uuid.UUID, pair Pair) (*Match, error)
	ListForUser(ctx context.Context, campaignID, userID uuid.UUID) ([]*UserMatch, error)
	GetForUser(ctx context.Context, matchID, userID uuid.UUID) (*UserMatch, error)

	Reveal(ctx context.Context, id uuid.UUID, at time.Time) (*Match, error)

	// SetMutualInterest flips the flag on an existing row. changed is false
	// when the row was already mutual.
	SetMutualInterest(ctx context.Context, campaignID uuid.UUID, pair Pair) (m *Match, changed bool, err error)
	// EnsureMutualMatch inserts m if its pair has no row yet, otherwise
	// flips the existing row to mutual.
	EnsureMutualMatch(ctx context.Context, m *Match) (stored *Match, changed bool, err error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const matchColumns = `id, campaign_id, user1_id, user2_id, compatibility_score, match_tier, shared_interests,
	rank_for_user1, rank_for_user2, is_revealed, is_mutual_interest, generation_id, created_at, revealed_at`

// insertBatchSize keeps a batch well under the 65535 bind parameter limit.
const insertBatchSize = 500

func (r *postgresRepository) ReplaceCampaignMatches(ctx context.Context, campaignID uuid.UUID, next []*Match) (*ReplaceResult, error) {
	var result ReplaceResult

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Row locks make the snapshot consistent against reveals and
		// reconciler updates to existing rows until commit.
		var previous []*Match
		query := `SELECT ` + matchColumns + ` FROM matches WHERE campaign_id = $1 FOR UPDATE`
		if err := tx.SelectContext(ctx, &previous, query, campaignID); err != nil {
			return fmt.Errorf("failed to snapshot matches: %w", err)
		}

		merged, res := CarryForward(previous, next)
		result = res

		keep := make([]string, len(merged))
		for i, m := range merged {
			keep[i] = m.ID.String()
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM matches WHERE campaign_id = $1 AND NOT (id = ANY($2::uuid[]))`,
			campaignID, pq.Array(keep),
		); err != nil {
			return fmt.Errorf("failed to remove superseded matches: %w", err)
		}

		for start := 0; start < len(merged); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(merged) {
				end = len(merged)
			}
			if err := upsertMatches(ctx, tx, merged[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func upsertMatches(ctx context.Context, tx *sqlx.Tx, batch []*Match) error {
	const cols = 14
	var sb strings.Builder
	args := make([]interface{}, 0, len(batch)*cols)

	sb.WriteString(`INSERT INTO matches (` + matchColumns + `) VALUES `)
	for i, m := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 0; c < cols; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*cols+c+1)
		}
		sb.WriteString(")")

		args = append(args,
			m.ID, m.CampaignID, m.User1ID, m.User2ID, m.CompatibilityScore, m.MatchTier, m.SharedInterests,
			m.RankForUser1, m.RankForUser2, m.IsRevealed, m.IsMutualInterest, m.GenerationID, m.CreatedAt, m.RevealedAt,
		)
	}
	sb.WriteString(`
		ON CONFLICT (campaign_id, user1_id, user2_id) DO UPDATE SET
			compatibility_score = EXCLUDED.compatibility_score,
			match_tier = EXCLUDED.match_tier,
			shared_interests = EXCLUDED.shared_interests,
			rank_for_user1 = EXCLUDED.rank_for_user1,
			rank_for_user2 = EXCLUDED.rank_for_user2,
			is_revealed = EXCLUDED.is_revealed,
			is_mutual_interest = EXCLUDED.is_mutual_interest,
			generation_id = EXCLUDED.generation_id,
			revealed_at = EXCLUDED.revealed_at`)

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to write matches: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Match, error) {
	var m Match
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("match")
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

func (r *postgresRepository) GetByPair(ctx context.Context, campaignID uuid.UUID, pair Pair) (*Match, error) {
	var m Match
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE campaign_id = $1 AND user1_id = $2 AND user2_id = $3`
	if err := r.db.GetContext(ctx, &m, query, campaignID, pair.User1, pair.User2); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("match")
		}
		return nil, fmt.Errorf("failed to get match by pair: %w", err)
	}
	return &m, nil
}

const userMatchSelect = `
	SELECT m.id, m.campaign_id, m.user1_id, m.user2_id, m.compatibility_score, m.match_tier, m.shared_interests,
		m.rank_for_user1, m.rank_for_user2, m.is_revealed, m.is_mutual_interest, m.generation_id,
		m.created_at, m.revealed_at,
		u.id AS "partner.id",
		u.first_name AS "partner.first_name",
		u.last_name AS "partner.last_name",
		u.program AS "partner.program",
		u.year_level AS "partner.year_level",
		u.bio AS "partner.bio",
		u.instagram_handle AS "partner.instagram_handle"
	FROM matches m
	JOIN users u ON u.id = CASE WHEN m.user1_id = $2 THEN m.user2_id ELSE m.user1_id END`

func (r *postgresRepository) ListForUser(ctx context.Context, campaignID, userID uuid.UUID) ([]*UserMatch, error) {
	var matches []*UserMatch
	query := userMatchSelect + `
		WHERE m.campaign_id = $1 AND (m.user1_id = $2 OR m.user2_id = $2)
		ORDER BY NULLIF(CASE WHEN m.user1_id = $2 THEN m.rank_for_user1 ELSE m.rank_for_user2 END, 0) NULLS LAST,
			m.compatibility_score DESC, m.id`

	if err := r.db.SelectContext(ctx, &matches, query, campaignID, userID); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (r *postgresRepository) GetForUser(ctx context.Context, matchID, userID uuid.UUID) (*UserMatch, error) {
	var m UserMatch
	query := userMatchSelect + `
		WHERE m.id = $1 AND (m.user1_id = $2 OR m.user2_id = $2)`

	if err := r.db.GetContext(ctx, &m, query, matchID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("match")
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

func (r *postgresRepository) Reveal(ctx context.Context, id uuid.UUID, at time.Time) (*Match, error) {
	var m Match
	query := `UPDATE matches
		SET is_revealed = TRUE, revealed_at = COALESCE(revealed_at, $2)
		WHERE id = $1
		RETURNING ` + matchColumns

	if err := r.db.GetContext(ctx, &m, query, id, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("match")
		}
		return nil, fmt.Errorf("failed to reveal match: %w", err)
	}
	return &m, nil
}

func (r *postgresRepository) SetMutualInterest(ctx context.Context, campaignID uuid.UUID, pair Pair) (*Match, bool, error) {
	var m Match
	query := `UPDATE matches SET is_mutual_interest = TRUE
		WHERE campaign_id = $1 AND user1_id = $2 AND user2_id = $3 AND is_mutual_interest = FALSE
		RETURNING ` + matchColumns

	err := r.db.GetContext(ctx, &m, query, campaignID, pair.User1, pair.User2)
	if err == nil {
		return &m, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to set mutual interest: %w", err)
	}

	existing, err := r.GetByPair(ctx, campaignID, pair)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

type ensuredMatch struct {
	Match
	Changed bool `db:"changed"`
}

func (r *postgresRepository) EnsureMutualMatch(ctx context.Context, m *Match) (*Match, bool, error) {
	var out ensuredMatch
	query := `
		WITH prev AS (
			SELECT is_mutual_interest FROM matches
			WHERE campaign_id = $2 AND user1_id = $3 AND user2_id = $4
		)
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11, $12, $13)
		ON CONFLICT (campaign_id, user1_id, user2_id) DO UPDATE SET is_mutual_interest = TRUE
		RETURNING ` + matchColumns + `,
			COALESCE((SELECT NOT is_mutual_interest FROM prev), TRUE) AS changed`

	err := r.db.GetContext(ctx, &out, query,
		m.ID, m.CampaignID, m.User1ID, m.User2ID, m.CompatibilityScore, m.MatchTier, m.SharedInterests,
		m.RankForUser1, m.RankForUser2, m.IsRevealed, m.GenerationID, m.CreatedAt, m.RevealedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record mutual match: %w", err)
	}
	return &out.Match, out.Changed, nil
}
