package campaign

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

type mockRepository struct {
	getActiveFn func(ctx context.Context) (*Campaign, error)
	getByIDFn   func(ctx context.Context, id uuid.UUID) (*Campaign, error)
}

func (m *mockRepository) GetActive(ctx context.Context) (*Campaign, error) {
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx)
	}
	return nil, apperr.NotFound("active campaign")
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, apperr.NotFound("campaign")
}

func (m *mockRepository) GetStats(ctx context.Context, id uuid.UUID) (*Stats, error) {
	return &Stats{CampaignID: id}, nil
}

func repoWith(c *Campaign) *mockRepository {
	return &mockRepository{
		getActiveFn: func(context.Context) (*Campaign, error) { return c, nil },
		getByIDFn: func(_ context.Context, id uuid.UUID) (*Campaign, error) {
			if id != c.ID {
				return nil, apperr.NotFound("campaign")
			}
			return c, nil
		},
	}
}

func TestAuthorizeFollowsClock(t *testing.T) {
	c := febCampaign()
	c.ID = uuid.New()
	clock := NewFixedClock(day(5))
	svc := NewService(repoWith(c), clock)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, c.ID, ActionTakeSurvey))

	clock.Set(day(10))
	err := svc.Authorize(ctx, c.ID, ActionTakeSurvey)
	require.Equal(t, apperr.KindPhaseDenied, apperr.KindOf(err))

	require.NoError(t, svc.Authorize(ctx, c.ID, ActionSubmitCrushList))

	clock.Set(day(12))
	require.NoError(t, svc.Authorize(ctx, c.ID, ActionRevealMatch))
	require.NoError(t, svc.Authorize(ctx, c.ID, ActionEditProfile))
}

func TestAuthorizeUnknownCampaign(t *testing.T) {
	c := febCampaign()
	c.ID = uuid.New()
	svc := NewService(repoWith(c), NewFixedClock(day(5)))

	err := svc.Authorize(context.Background(), uuid.New(), ActionTakeSurvey)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAuthorizeRejectsUnorderedSchedule(t *testing.T) {
	c := febCampaign()
	c.ID = uuid.New()
	c.SurveyCloseDate = day(20)
	svc := NewService(repoWith(c), NewFixedClock(day(5)))

	err := svc.Authorize(context.Background(), c.ID, ActionTakeSurvey)
	require.Equal(t, apperr.KindDataIntegrity, apperr.KindOf(err))
}

func TestActiveCampaignHandler(t *testing.T) {
	c := febCampaign()
	c.ID = uuid.New()
	h := NewHandler(NewService(repoWith(c), NewFixedClock(day(12))))

	rec := httptest.NewRecorder()
	h.GetActiveCampaign(rec, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/active", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			ID             uuid.UUID `json:"id"`
			Phase          Phase     `json:"phase"`
			TimeRemaining  int64     `json:"timeRemaining"`
			NextPhaseLabel string    `json:"nextPhaseLabel"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, c.ID, body.Data.ID)
	require.Equal(t, PhaseProfileUpdate, body.Data.Phase)
	require.Equal(t, int64(172800), body.Data.TimeRemaining)
	require.Equal(t, LabelUntilResults, body.Data.NextPhaseLabel)
}

func TestCheckActionHandler(t *testing.T) {
	c := febCampaign()
	c.ID = uuid.New()
	h := NewHandler(NewService(repoWith(c), NewFixedClock(day(12))))

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/campaigns/active/check-action/{action}", h.CheckAction)

	tests := []struct {
		action  string
		allowed bool
	}{
		{"take_survey", false},
		{"send_message", true},
		{"bogus", false},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/active/check-action/"+tt.action, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data Decision `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, tt.allowed, body.Data.Allowed, tt.action)
		require.Equal(t, PhaseProfileUpdate, body.Data.Phase)
	}
}

func TestCheckActionHandlerWithoutCampaign(t *testing.T) {
	h := NewHandler(NewService(&mockRepository{}, NewFixedClock(day(12))))

	router := mux.NewRouter()
	router.HandleFunc("/check/{action}", h.CheckAction)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/check/take_survey", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No active campaign")
}
