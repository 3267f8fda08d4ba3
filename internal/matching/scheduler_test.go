package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

type fakeActiveCampaigns struct {
	id    uuid.UUID
	phase campaign.Phase
	err   error
}

func (f *fakeActiveCampaigns) GetActive(context.Context) (*campaign.Campaign, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &campaign.Campaign{ID: f.id}, nil
}

func (f *fakeActiveCampaigns) CurrentPhase(context.Context, uuid.UUID) (campaign.Phase, error) {
	return f.phase, nil
}

func newTestScheduler(campaigns *fakeActiveCampaigns, gen generateFunc) *Scheduler {
	return &Scheduler{
		campaigns: campaigns,
		generate:  gen,
		seen:      make(map[uuid.UUID]campaign.Phase),
		log:       zap.NewNop(),
	}
}

func TestSchedulerGeneratesOnceWhenSurveyCloses(t *testing.T) {
	campaigns := &fakeActiveCampaigns{id: uuid.New(), phase: campaign.PhaseSurveyOpen}
	runs := 0
	s := newTestScheduler(campaigns, func(context.Context, uuid.UUID) (*GenerationSummary, error) {
		runs++
		return &GenerationSummary{MatchesWritten: 3}, nil
	})
	ctx := context.Background()

	assert.False(t, s.tick(ctx))

	campaigns.phase = campaign.PhaseSurveyClosed
	assert.True(t, s.tick(ctx))
	assert.False(t, s.tick(ctx))

	campaigns.phase = campaign.PhaseProfileUpdate
	assert.False(t, s.tick(ctx))
	assert.Equal(t, 1, runs)
}

func TestSchedulerRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantRetry bool
	}{
		{"infrastructure failure retries", errors.New("connection reset"), true},
		{"data integrity waits", apperr.DataIntegrity("no questions", nil), false},
		{"conflict does not retry", apperr.Conflict("busy"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			campaigns := &fakeActiveCampaigns{id: uuid.New(), phase: campaign.PhaseSurveyClosed}
			runs := 0
			s := newTestScheduler(campaigns, func(context.Context, uuid.UUID) (*GenerationSummary, error) {
				runs++
				return nil, tt.err
			})

			s.tick(context.Background())
			s.tick(context.Background())

			want := 1
			if tt.wantRetry {
				want = 2
			}
			assert.Equal(t, want, runs)
		})
	}
}

func TestSchedulerWithoutActiveCampaign(t *testing.T) {
	campaigns := &fakeActiveCampaigns{err: apperr.NotFound("campaign")}
	s := newTestScheduler(campaigns, func(context.Context, uuid.UUID) (*GenerationSummary, error) {
		t.Fatal("generation must not run")
		return nil, nil
	})
	assert.False(t, s.tick(context.Background()))
}
