package campaign

import (
	"context"

	"github.com/google/uuid"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// Service resolves phases for stored campaigns and enforces the gate.
type Service interface {
	GetActive(ctx context.Context) (*Campaign, error)
	ActiveView(ctx context.Context) (*ActiveCampaignView, error)
	CurrentPhase(ctx context.Context, campaignID uuid.UUID) (Phase, error)
	Check(ctx context.Context, campaignID uuid.UUID, action Action) (Decision, error)
	Authorize(ctx context.Context, campaignID uuid.UUID, action Action) error
	Stats(ctx context.Context, campaignID uuid.UUID) (*Stats, error)
}

type service struct {
	repo  Repository
	clock Clock
}

func NewService(repo Repository, clock Clock) Service {
	if clock == nil {
		clock = SystemClock()
	}
	return &service{repo: repo, clock: clock}
}

func (s *service) load(ctx context.Context, campaignID uuid.UUID) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, apperr.DataIntegrity("campaign schedule is out of order", err)
	}
	return c, nil
}

func (s *service) GetActive(ctx context.Context) (*Campaign, error) {
	c, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, apperr.DataIntegrity("campaign schedule is out of order", err)
	}
	return c, nil
}

func (s *service) ActiveView(ctx context.Context) (*ActiveCampaignView, error) {
	c, err := s.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return &ActiveCampaignView{Campaign: c, PhaseInfo: ResolvePhase(c, s.clock.Now())}, nil
}

func (s *service) CurrentPhase(ctx context.Context, campaignID uuid.UUID) (Phase, error) {
	c, err := s.load(ctx, campaignID)
	if err != nil {
		return "", err
	}
	return ResolvePhase(c, s.clock.Now()).Phase, nil
}

// Check reads the clock once so the phase and the decision agree.
func (s *service) Check(ctx context.Context, campaignID uuid.UUID, action Action) (Decision, error) {
	phase, err := s.CurrentPhase(ctx, campaignID)
	if err != nil {
		return Decision{}, err
	}
	d := CheckAction(action, phase)
	recordDecision(d)
	return d, nil
}

func (s *service) Authorize(ctx context.Context, campaignID uuid.UUID, action Action) error {
	d, err := s.Check(ctx, campaignID, action)
	if err != nil {
		return err
	}
	return d.Err()
}

func (s *service) Stats(ctx context.Context, campaignID uuid.UUID) (*Stats, error) {
	if _, err := s.repo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.repo.GetStats(ctx, campaignID)
}

// ActiveFinder resolves the campaign that HTTP requests act on. Core
// operations still take the campaign id explicitly.
type ActiveFinder interface {
	GetActive(ctx context.Context) (*Campaign, error)
}
