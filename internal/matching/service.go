package matching

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// Gate authorizes phase-dependent actions for a campaign.
type Gate interface {
	Authorize(ctx context.Context, campaignID uuid.UUID, action campaign.Action) error
}

type Service interface {
	GetMatchesForUser(ctx context.Context, campaignID, userID uuid.UUID) ([]*MatchView, error)
	GetMatch(ctx context.Context, matchID, userID uuid.UUID) (*MatchView, error)
	RevealMatch(ctx context.Context, matchID, userID uuid.UUID) (*MatchView, error)
	GenerateMatches(ctx context.Context, campaignID uuid.UUID) (*GenerationSummary, error)
}

type service struct {
	repo      Repository
	gate      Gate
	generator *Generator
	clock     campaign.Clock
	log       *zap.Logger
}

func NewService(repo Repository, gate Gate, generator *Generator, clock campaign.Clock, log *zap.Logger) Service {
	if clock == nil {
		clock = campaign.SystemClock()
	}
	return &service{
		repo:      repo,
		gate:      gate,
		generator: generator,
		clock:     clock,
		log:       log.Named("matching"),
	}
}

func (s *service) GetMatchesForUser(ctx context.Context, campaignID, userID uuid.UUID) ([]*MatchView, error) {
	matches, err := s.repo.ListForUser(ctx, campaignID, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, newMatchView(m, userID))
	}
	return views, nil
}

func (s *service) GetMatch(ctx context.Context, matchID, userID uuid.UUID) (*MatchView, error) {
	m, err := s.repo.GetForUser(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	return newMatchView(m, userID), nil
}

// RevealMatch is idempotent: revealing twice keeps the first revealedAt.
func (s *service) RevealMatch(ctx context.Context, matchID, userID uuid.UUID) (*MatchView, error) {
	m, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.Pair().Has(userID) {
		return nil, apperr.Forbidden("you are not part of this match")
	}
	if err := s.gate.Authorize(ctx, m.CampaignID, campaign.ActionRevealMatch); err != nil {
		return nil, err
	}

	if !m.IsRevealed {
		if _, err := s.repo.Reveal(ctx, matchID, s.clock.Now()); err != nil {
			return nil, err
		}
		revealsTotal.Inc()
		s.log.Info("match revealed",
			zap.String("match_id", matchID.String()),
			zap.String("user_id", userID.String()),
		)
	}

	return s.GetMatch(ctx, matchID, userID)
}

func (s *service) GenerateMatches(ctx context.Context, campaignID uuid.UUID) (*GenerationSummary, error) {
	return s.generator.Generate(ctx, campaignID)
}
