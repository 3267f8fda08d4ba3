package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
	"github.com/kurtgav/wizardmatch-sub001/internal/survey"
)

// ActionGenerateMatches names generation in phase-denied errors. It is an
// admin operation and not part of the participant action table.
const ActionGenerateMatches = "generate_matches"

// PhaseReader resolves the current phase of a campaign.
type PhaseReader interface {
	CurrentPhase(ctx context.Context, campaignID uuid.UUID) (campaign.Phase, error)
}

// SurveySource is the read side of the survey store that generation needs.
type SurveySource interface {
	ListActiveQuestions(ctx context.Context, campaignID uuid.UUID) ([]*survey.Question, error)
	ListCampaignResponses(ctx context.Context, campaignID uuid.UUID) ([]*survey.Response, error)
	ListEligibleUserIDs(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
}

type GeneratorConfig struct {
	Workers  int
	MinScore float64
}

// Generator rebuilds a campaign's match set from survey answers.
type Generator struct {
	phases   PhaseReader
	surveys  SurveySource
	repo     Repository
	locker   Locker
	archiver Archiver
	clock    campaign.Clock
	cfg      GeneratorConfig
	log      *zap.Logger
}

func NewGenerator(
	phases PhaseReader,
	surveys SurveySource,
	repo Repository,
	locker Locker,
	archiver Archiver,
	clock campaign.Clock,
	cfg GeneratorConfig,
	log *zap.Logger,
) *Generator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if archiver == nil {
		archiver = NoopArchiver()
	}
	if clock == nil {
		clock = campaign.SystemClock()
	}
	return &Generator{
		phases:   phases,
		surveys:  surveys,
		repo:     repo,
		locker:   locker,
		archiver: archiver,
		clock:    clock,
		cfg:      cfg,
		log:      log.Named("matching.generator"),
	}
}

func generationAllowed(p campaign.Phase) bool {
	switch p {
	case campaign.PhaseSurveyClosed, campaign.PhaseProfileUpdate, campaign.PhaseResultsReleased:
		return true
	}
	return false
}

// Generate scores every eligible pair and replaces the campaign's match
// set. Either the whole set is written or nothing is.
func (g *Generator) Generate(ctx context.Context, campaignID uuid.UUID) (*GenerationSummary, error) {
	summary, err := g.generate(ctx, campaignID)
	RecordGeneration(generationOutcome(err))
	if err != nil {
		g.log.Warn("match generation failed",
			zap.String("campaign_id", campaignID.String()),
			zap.Error(err),
		)
	}
	return summary, err
}

func generationOutcome(err error) string {
	if err == nil {
		return "success"
	}
	switch apperr.KindOf(err) {
	case apperr.KindPhaseDenied:
		return "phase_denied"
	case apperr.KindConcurrencyConflict:
		return "conflict"
	case apperr.KindDataIntegrity:
		return "data_integrity"
	default:
		return "error"
	}
}

func (g *Generator) generate(ctx context.Context, campaignID uuid.UUID) (*GenerationSummary, error) {
	started := g.clock.Now()
	log := g.log.With(zap.String("campaign_id", campaignID.String()))

	phase, err := g.phases.CurrentPhase(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !generationAllowed(phase) {
		return nil, apperr.PhaseDenied(ActionGenerateMatches, string(phase), "Matches can only be generated after the survey closes")
	}

	unlock, ok, err := g.locker.TryLock(ctx, generationLockKey(campaignID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("a match generation is already running for this campaign")
	}
	defer unlock()

	questions, err := g.surveys.ListActiveQuestions(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	catalog := survey.NewCatalog(questions)
	if catalog.Len() == 0 {
		return nil, apperr.DataIntegrity("campaign has no active scorable questions", nil)
	}

	eligible, err := g.surveys.ListEligibleUserIDs(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if len(eligible) < 2 {
		return nil, apperr.DataIntegrity(fmt.Sprintf("need at least two eligible users with answers, found %d", len(eligible)), nil)
	}
	responses, err := g.surveys.ListCampaignResponses(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	agg := survey.Aggregate(catalog, responses, eligible)
	if len(agg.Users) < 2 {
		return nil, apperr.DataIntegrity(fmt.Sprintf("need at least two eligible users with answers, found %d", len(agg.Users)), nil)
	}

	generationID := uuid.New()
	scored, considered, err := g.scoreAll(ctx, campaignID, generationID, started, catalog, agg)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, apperr.DataIntegrity("no eligible pair shares an answered question", nil)
	}

	matches := make([]*Match, 0, len(scored))
	for _, m := range scored {
		if m.CompatibilityScore >= g.cfg.MinScore {
			matches = append(matches, m)
		}
	}
	result, err := g.repo.ReplaceCampaignMatches(ctx, campaignID, matches)
	if err != nil {
		return nil, err
	}
	recordScores(matches)

	duration := g.clock.Now().Sub(started)
	generationDuration.Observe(duration.Seconds())

	summary := &GenerationSummary{
		GenerationID:    generationID,
		CampaignID:      campaignID,
		Phase:           string(phase),
		EligibleUsers:   len(agg.Users),
		PairsConsidered: considered,
		PairsScored:     len(scored),
		PairsSkipped:    considered - len(scored),
		MatchesWritten:  result.Written,
		CarriedForward:  result.CarriedForward,
		Retained:        result.Retained,
		Removed:         result.Removed,
		StartedAt:       started,
		DurationMs:      duration.Milliseconds(),
	}

	log.Info("match generation completed",
		zap.String("generation_id", generationID.String()),
		zap.Int("eligible_users", summary.EligibleUsers),
		zap.Int("pairs_scored", summary.PairsScored),
		zap.Int("pairs_skipped", summary.PairsSkipped),
		zap.Int("matches_written", summary.MatchesWritten),
		zap.Int("carried_forward", summary.CarriedForward),
		zap.Int64("duration_ms", summary.DurationMs),
	)

	if err := g.archiver.Archive(ctx, summary); err != nil {
		log.Warn("failed to archive generation summary", zap.Error(err))
	}

	return summary, nil
}

// scoreAll scores every unordered pair across a bounded worker pool. The
// output order follows the sorted user list, independent of scheduling.
// Any scoring error aborts the run.
func (g *Generator) scoreAll(
	ctx context.Context,
	campaignID, generationID uuid.UUID,
	now time.Time,
	catalog *survey.Catalog,
	agg *survey.Aggregation,
) ([]*Match, int, error) {
	users := agg.Users
	n := len(users)
	considered := n * (n - 1) / 2

	// rows[i] holds the matches of users[i] with every users[j], j > i.
	rows := make([][]*Match, n)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)

	for i := 0; i < n-1; i++ {
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			a := users[i]
			var row []*Match
			for j := i + 1; j < n; j++ {
				b := users[j]
				res, ok, err := Score(catalog, agg.Vectors[a], agg.Vectors[b])
				if err != nil {
					return apperr.DataIntegrity("failed to score pair", fmt.Errorf("pair %s: %w", NewPair(a, b), err))
				}
				if !ok {
					continue
				}
				pair := NewPair(a, b)
				row = append(row, &Match{
					ID:                 uuid.New(),
					CampaignID:         campaignID,
					User1ID:            pair.User1,
					User2ID:            pair.User2,
					CompatibilityScore: res.Score,
					MatchTier:          res.Tier,
					SharedInterests:    QuestionIDs(res.SharedInterests),
					GenerationID:       uuid.NullUUID{UUID: generationID, Valid: true},
					CreatedAt:          now,
				})
			}
			rows[i] = row
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	var out []*Match
	for _, row := range rows {
		out = append(out, row...)
	}
	return out, considered, nil
}
