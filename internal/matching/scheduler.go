package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// ActiveCampaigns resolves the active campaign and its phase.
type ActiveCampaigns interface {
	GetActive(ctx context.Context) (*campaign.Campaign, error)
	CurrentPhase(ctx context.Context, campaignID uuid.UUID) (campaign.Phase, error)
}

type generateFunc func(ctx context.Context, campaignID uuid.UUID) (*GenerationSummary, error)

// Scheduler generates matches automatically when the active campaign
// enters survey_closed. Admins can still regenerate by hand afterwards.
//
// Generation is otherwise only ever triggered by an admin. Running a
// Scheduler deliberately departs from that, which is why it is only
// started when AUTO_GENERATE_MATCHES is set; it defaults to off.
type Scheduler struct {
	campaigns ActiveCampaigns
	generate  generateFunc
	interval  time.Duration
	seen      map[uuid.UUID]campaign.Phase
	log       *zap.Logger
}

func NewScheduler(campaigns ActiveCampaigns, generator *Generator, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		campaigns: campaigns,
		generate:  generator.Generate,
		interval:  interval,
		seen:      make(map[uuid.UUID]campaign.Phase),
		log:       log.Named("matching.scheduler"),
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// tick reports whether a generation ran.
func (s *Scheduler) tick(ctx context.Context) bool {
	c, err := s.campaigns.GetActive(ctx)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			s.log.Warn("failed to load active campaign", zap.Error(err))
		}
		return false
	}

	phase, err := s.campaigns.CurrentPhase(ctx, c.ID)
	if err != nil {
		s.log.Warn("failed to resolve phase", zap.String("campaign_id", c.ID.String()), zap.Error(err))
		return false
	}

	prev, known := s.seen[c.ID]
	s.seen[c.ID] = phase
	if known && prev != phase {
		s.log.Info("campaign phase changed",
			zap.String("campaign_id", c.ID.String()),
			zap.String("from", string(prev)),
			zap.String("to", string(phase)),
		)
	}
	if phase != campaign.PhaseSurveyClosed || prev == campaign.PhaseSurveyClosed {
		return false
	}

	summary, err := s.generate(ctx, c.ID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConcurrencyConflict {
			s.log.Info("generation already running", zap.String("campaign_id", c.ID.String()))
			return false
		}
		s.log.Error("scheduled generation failed", zap.String("campaign_id", c.ID.String()), zap.Error(err))
		if apperr.KindOf(err) == apperr.KindInternal {
			// Infrastructure failures retry on the next tick; bad data waits for an admin.
			delete(s.seen, c.ID)
		}
		return false
	}

	s.log.Info("scheduled generation finished",
		zap.String("campaign_id", c.ID.String()),
		zap.Int("matches", summary.MatchesWritten),
	)
	return true
}
