package survey

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

const maxTextAnswerLength = 1000

var (
	ErrSurveyIncomplete = errors.New("answer every question before completing the survey")
)

// Gate authorizes phase-dependent actions for a campaign.
type Gate interface {
	Authorize(ctx context.Context, campaignID uuid.UUID, action campaign.Action) error
}

// AnswerInput is the untyped wire form of an answer; the question type
// decides which field is read.
type AnswerInput struct {
	AnswerText  *string
	AnswerValue *int
}

type Service interface {
	ListQuestions(ctx context.Context, campaignID uuid.UUID) ([]*Question, error)
	SubmitAnswer(ctx context.Context, campaignID, userID, questionID uuid.UUID, input AnswerInput) (*Response, error)
	ListResponses(ctx context.Context, campaignID, userID uuid.UUID) ([]*Response, error)
	GetProgress(ctx context.Context, campaignID, userID uuid.UUID) (*Progress, error)
	CompleteSurvey(ctx context.Context, campaignID, userID uuid.UUID) (*Progress, error)
}

type service struct {
	repo  Repository
	gate  Gate
	clock campaign.Clock
}

func NewService(repo Repository, gate Gate, clock campaign.Clock) Service {
	if clock == nil {
		clock = campaign.SystemClock()
	}
	return &service{repo: repo, gate: gate, clock: clock}
}

func (s *service) ListQuestions(ctx context.Context, campaignID uuid.UUID) ([]*Question, error) {
	return s.repo.ListActiveQuestions(ctx, campaignID)
}

func (s *service) SubmitAnswer(ctx context.Context, campaignID, userID, questionID uuid.UUID, input AnswerInput) (*Response, error) {
	if err := s.gate.Authorize(ctx, campaignID, campaign.ActionTakeSurvey); err != nil {
		return nil, err
	}

	q, err := s.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.CampaignID != campaignID || !q.IsActive {
		return nil, apperr.NotFound("question")
	}

	answer, err := ParseAnswer(q, input)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resp := &Response{
		ID:         uuid.New(),
		UserID:     userID,
		CampaignID: campaignID,
		QuestionID: questionID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	resp.setAnswer(answer)

	if err := s.repo.UpsertResponse(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ParseAnswer validates input against the question and returns the typed answer.
func ParseAnswer(q *Question, input AnswerInput) (Answer, error) {
	switch q.QuestionType {
	case TypeMultipleChoice:
		if input.AnswerText == nil {
			return nil, apperr.Validation("answerText", "multiple choice answers need answerText")
		}
		if !q.Options.HasChoice(*input.AnswerText) {
			return nil, apperr.Validation("answerText", fmt.Sprintf("%q is not an option for this question", *input.AnswerText))
		}
		return ChoiceAnswer{Option: *input.AnswerText}, nil

	case TypeScale:
		if input.AnswerValue == nil {
			return nil, apperr.Validation("answerValue", "scale answers need answerValue")
		}
		v := *input.AnswerValue
		if q.Options.Max <= q.Options.Min {
			return nil, apperr.DataIntegrity("scale question has invalid bounds", fmt.Errorf("question %s: min=%d max=%d", q.ID, q.Options.Min, q.Options.Max))
		}
		if v < q.Options.Min || v > q.Options.Max {
			return nil, apperr.Validation("answerValue", fmt.Sprintf("answerValue must be between %d and %d", q.Options.Min, q.Options.Max))
		}
		return ScaleAnswer{Value: v}, nil

	case TypeText:
		if input.AnswerText == nil || strings.TrimSpace(*input.AnswerText) == "" {
			return nil, apperr.Validation("answerText", "text answers must not be empty")
		}
		text := strings.TrimSpace(*input.AnswerText)
		if len(text) > maxTextAnswerLength {
			return nil, apperr.Validation("answerText", fmt.Sprintf("answerText must be at most %d characters", maxTextAnswerLength))
		}
		return TextAnswer{Text: text}, nil

	default:
		return nil, apperr.DataIntegrity("question has an unknown type", fmt.Errorf("question %s: type %q", q.ID, q.QuestionType))
	}
}

func (s *service) ListResponses(ctx context.Context, campaignID, userID uuid.UUID) ([]*Response, error) {
	return s.repo.ListUserResponses(ctx, campaignID, userID)
}

func (s *service) GetProgress(ctx context.Context, campaignID, userID uuid.UUID) (*Progress, error) {
	questions, err := s.repo.ListActiveQuestions(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	responses, err := s.repo.ListUserResponses(ctx, campaignID, userID)
	if err != nil {
		return nil, err
	}
	completedAt, err := s.repo.GetCompletion(ctx, campaignID, userID)
	if err != nil {
		return nil, err
	}

	p := progressOf(questions, responses)
	p.Completed = completedAt != nil
	p.CompletedAt = completedAt
	return p, nil
}

func (s *service) CompleteSurvey(ctx context.Context, campaignID, userID uuid.UUID) (*Progress, error) {
	if err := s.gate.Authorize(ctx, campaignID, campaign.ActionTakeSurvey); err != nil {
		return nil, err
	}

	p, err := s.GetProgress(ctx, campaignID, userID)
	if err != nil {
		return nil, err
	}
	if p.Total == 0 || p.Answered < p.Total {
		return nil, apperr.Validation("", ErrSurveyIncomplete.Error())
	}

	completedAt, err := s.repo.MarkCompleted(ctx, campaignID, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	p.Completed = true
	p.CompletedAt = &completedAt
	return p, nil
}

// progressOf counts answers to currently active questions only.
func progressOf(questions []*Question, responses []*Response) *Progress {
	active := make(map[uuid.UUID]struct{}, len(questions))
	for _, q := range questions {
		if q.IsActive {
			active[q.ID] = struct{}{}
		}
	}

	answered := 0
	for _, r := range responses {
		if _, ok := active[r.QuestionID]; ok {
			answered++
		}
	}

	p := &Progress{Total: len(active), Answered: answered}
	if p.Total > 0 {
		p.Percentage = answered * 100 / p.Total
	}
	return p
}
