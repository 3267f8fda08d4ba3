package survey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

type Repository interface {
	ListActiveQuestions(ctx context.Context, campaignID uuid.UUID) ([]*Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error)

	UpsertResponse(ctx context.Context, response *Response) error
	ListUserResponses(ctx context.Context, campaignID, userID uuid.UUID) ([]*Response, error)
	ListCampaignResponses(ctx context.Context, campaignID uuid.UUID) ([]*Response, error)

	MarkCompleted(ctx context.Context, campaignID, userID uuid.UUID, at time.Time) (time.Time, error)
	GetCompletion(ctx context.Context, campaignID, userID uuid.UUID) (*time.Time, error)
	ListEligibleUserIDs(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const questionColumns = `id, campaign_id, category, question_text, question_type, options, weight, order_index, is_active`

func (r *postgresRepository) ListActiveQuestions(ctx context.Context, campaignID uuid.UUID) ([]*Question, error) {
	var questions []*Question
	query := `SELECT ` + questionColumns + ` FROM questions
		WHERE campaign_id = $1 AND is_active = TRUE
		ORDER BY order_index, id`

	if err := r.db.SelectContext(ctx, &questions, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (r *postgresRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	var q Question
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	if err := r.db.GetContext(ctx, &q, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("question")
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

func (r *postgresRepository) UpsertResponse(ctx context.Context, response *Response) error {
	query := `
		INSERT INTO survey_responses (id, user_id, campaign_id, question_id, answer_type, answer_text, answer_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id, question_id) DO UPDATE SET
			answer_type = EXCLUDED.answer_type,
			answer_text = EXCLUDED.answer_text,
			answer_value = EXCLUDED.answer_value,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		response.ID,
		response.UserID,
		response.CampaignID,
		response.QuestionID,
		response.AnswerType,
		response.AnswerText,
		response.AnswerValue,
		response.UpdatedAt,
	).Scan(&response.ID, &response.CreatedAt, &response.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}

const responseColumns = `id, user_id, campaign_id, question_id, answer_type, answer_text, answer_value, created_at, updated_at`

func (r *postgresRepository) ListUserResponses(ctx context.Context, campaignID, userID uuid.UUID) ([]*Response, error) {
	var responses []*Response
	query := `SELECT ` + responseColumns + ` FROM survey_responses
		WHERE campaign_id = $1 AND user_id = $2
		ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &responses, query, campaignID, userID); err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

func (r *postgresRepository) ListCampaignResponses(ctx context.Context, campaignID uuid.UUID) ([]*Response, error) {
	var responses []*Response
	query := `SELECT ` + responseColumns + ` FROM survey_responses
		WHERE campaign_id = $1
		ORDER BY user_id, question_id`

	if err := r.db.SelectContext(ctx, &responses, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to list campaign responses: %w", err)
	}
	return responses, nil
}

// MarkCompleted is idempotent and returns the first completion time.
func (r *postgresRepository) MarkCompleted(ctx context.Context, campaignID, userID uuid.UUID, at time.Time) (time.Time, error) {
	var completedAt time.Time
	query := `
		INSERT INTO survey_completions (user_id, campaign_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, campaign_id) DO UPDATE SET completed_at = survey_completions.completed_at
		RETURNING completed_at`

	if err := r.db.QueryRowxContext(ctx, query, userID, campaignID, at).Scan(&completedAt); err != nil {
		return time.Time{}, fmt.Errorf("failed to mark survey completed: %w", err)
	}
	return completedAt, nil
}

func (r *postgresRepository) GetCompletion(ctx context.Context, campaignID, userID uuid.UUID) (*time.Time, error) {
	var completedAt time.Time
	query := `SELECT completed_at FROM survey_completions WHERE user_id = $1 AND campaign_id = $2`

	if err := r.db.GetContext(ctx, &completedAt, query, userID, campaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get survey completion: %w", err)
	}
	return &completedAt, nil
}

func (r *postgresRepository) ListEligibleUserIDs(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `
		SELECT sc.user_id
		FROM survey_completions sc
		JOIN users u ON u.id = sc.user_id
		WHERE sc.campaign_id = $1 AND u.is_active = TRUE
		ORDER BY sc.user_id`

	if err := r.db.SelectContext(ctx, &ids, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to list eligible users: %w", err)
	}
	return ids, nil
}
