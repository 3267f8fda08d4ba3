// internal/common/database/migrations.go
// Idempotent schema setup run at startup

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// schema is applied in order; every statement must be safe to re-run.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

	// Users are provisioned by the identity service; this service reads
	// them and edits the profile columns only.
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) UNIQUE NOT NULL,
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		program VARCHAR(100) NOT NULL DEFAULT '',
		year_level INTEGER NOT NULL DEFAULT 0,
		bio TEXT NOT NULL DEFAULT '',
		instagram_handle VARCHAR(100) NOT NULL DEFAULT '',
		phone_number VARCHAR(20) NOT NULL DEFAULT '',
		contact_preference VARCHAR(20) NOT NULL DEFAULT 'email',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS campaigns (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(200) NOT NULL,
		survey_open_date TIMESTAMPTZ NOT NULL,
		survey_close_date TIMESTAMPTZ NOT NULL,
		profile_update_start_date TIMESTAMPTZ NOT NULL,
		profile_update_end_date TIMESTAMPTZ NOT NULL,
		results_release_date TIMESTAMPTZ NOT NULL,
		algorithm_version VARCHAR(20) NOT NULL DEFAULT 'v1',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (survey_open_date <= survey_close_date),
		CHECK (survey_close_date <= profile_update_start_date),
		CHECK (profile_update_start_date <= profile_update_end_date),
		CHECK (profile_update_end_date <= results_release_date)
	)`,

	`CREATE TABLE IF NOT EXISTS questions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		category VARCHAR(50) NOT NULL,
		question_text TEXT NOT NULL,
		question_type VARCHAR(20) NOT NULL,
		options JSONB NOT NULL DEFAULT '{}'::jsonb,
		weight NUMERIC(4,2) NOT NULL DEFAULT 1.00,
		order_index INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS survey_responses (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		answer_type VARCHAR(20) NOT NULL,
		answer_text TEXT,
		answer_value INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, question_id)
	)`,

	`CREATE TABLE IF NOT EXISTS survey_completions (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, campaign_id)
	)`,

	`CREATE TABLE IF NOT EXISTS matches (
		id UUID PRIMARY KEY,
		campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		user1_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user2_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		compatibility_score NUMERIC(5,2) NOT NULL DEFAULT 0,
		match_tier VARCHAR(20) NOT NULL DEFAULT 'fair',
		shared_interests JSONB NOT NULL DEFAULT '[]'::jsonb,
		rank_for_user1 INTEGER NOT NULL DEFAULT 0,
		rank_for_user2 INTEGER NOT NULL DEFAULT 0,
		is_revealed BOOLEAN NOT NULL DEFAULT FALSE,
		is_mutual_interest BOOLEAN NOT NULL DEFAULT FALSE,
		generation_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		revealed_at TIMESTAMPTZ,
		UNIQUE (campaign_id, user1_id, user2_id),
		CHECK (user1_id < user2_id)
	)`,

	`CREATE TABLE IF NOT EXISTS crush_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		target_email VARCHAR(255) NOT NULL,
		target_name VARCHAR(200) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (owner_user_id, campaign_id, target_email)
	)`,

	`CREATE TABLE IF NOT EXISTS interactions (
		campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		actor_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		target_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		kind VARCHAR(20) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (campaign_id, actor_id, target_id),
		CHECK (actor_id <> target_id)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		read_at TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_campaigns_active ON campaigns(is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_campaign ON questions(campaign_id, is_active, order_index)`,
	`CREATE INDEX IF NOT EXISTS idx_survey_responses_campaign ON survey_responses(campaign_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_user1 ON matches(campaign_id, user1_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches(campaign_id, user2_id)`,
	`CREATE INDEX IF NOT EXISTS idx_crush_entries_target ON crush_entries(campaign_id, target_email)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_match ON messages(match_id, sent_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(recipient_id) WHERE is_read = FALSE`,
}

// RunMigrations applies the schema.
func RunMigrations(ctx context.Context, db *sqlx.DB, log *zap.Logger) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Debug("migration skipped", zap.Int("step", i+1))
				continue
			}
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	log.Info("database migrations completed", zap.Int("statements", len(schema)))
	return nil
}
