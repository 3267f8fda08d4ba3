package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/auth"
	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

func newTestService(f *generatorFixture) Service {
	clock := campaign.NewFixedClock(time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC))
	return NewService(f.repo, f.phases, f.generator, clock, zap.NewNop())
}

func TestRevealMatch(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	svc := newTestService(f)

	_, err := svc.GenerateMatches(ctx, f.campaignID)
	require.NoError(t, err)
	m, err := f.repo.GetByPair(ctx, f.campaignID, NewPair(f.users[0], f.users[1]))
	require.NoError(t, err)

	view, err := svc.GetMatch(ctx, m.ID, f.users[0])
	require.NoError(t, err)
	assert.Nil(t, view.Partner, "partner is hidden before reveal")

	// Still survey_closed.
	_, err = svc.RevealMatch(ctx, m.ID, f.users[0])
	assert.Equal(t, apperr.KindPhaseDenied, apperr.KindOf(err))

	f.phases.phase = campaign.PhaseProfileUpdate

	_, err = svc.RevealMatch(ctx, m.ID, f.users[2])
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	view, err = svc.RevealMatch(ctx, m.ID, f.users[0])
	require.NoError(t, err)
	assert.True(t, view.IsRevealed)
	require.NotNil(t, view.Partner)
	assert.Equal(t, f.users[1], view.Partner.ID)
	firstRevealedAt := *view.RevealedAt

	view, err = svc.RevealMatch(ctx, m.ID, f.users[1])
	require.NoError(t, err)
	assert.Equal(t, firstRevealedAt, *view.RevealedAt)
	assert.Equal(t, f.users[0], view.Partner.ID)
}

func TestRevealMatchNotFound(t *testing.T) {
	f := newGeneratorFixture(t)
	svc := newTestService(f)

	_, err := svc.RevealMatch(context.Background(), uuid.New(), f.users[0])
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetMatchesForUserOrdersByRank(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	svc := newTestService(f)

	_, err := svc.GenerateMatches(ctx, f.campaignID)
	require.NoError(t, err)

	views, err := svc.GetMatchesForUser(ctx, f.campaignID, f.users[0])
	require.NoError(t, err)
	require.Len(t, views, 2)

	ranks := map[int]bool{}
	for _, v := range views {
		ranks[v.Rank] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true}, ranks)
}

type activeCampaign struct {
	c *campaign.Campaign
}

func (a activeCampaign) GetActive(context.Context) (*campaign.Campaign, error) {
	return a.c, nil
}

func TestGenerateMatchesHandler(t *testing.T) {
	f := newGeneratorFixture(t)
	h := NewHandler(newTestService(f), activeCampaign{c: &campaign.Campaign{ID: f.campaignID}})

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/admin/campaigns/{id}/generate-matches", h.GenerateMatches).Methods("POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/campaigns/"+f.campaignID.String()+"/generate-matches", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data GenerationSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.MatchesWritten)

	f.phases.phase = campaign.PhaseSurveyOpen
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/campaigns/"+f.campaignID.String()+"/generate-matches", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"survey_open"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/campaigns/nope/generate-matches", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMatchesHandler(t *testing.T) {
	f := newGeneratorFixture(t)
	svc := newTestService(f)
	_, err := svc.GenerateMatches(context.Background(), f.campaignID)
	require.NoError(t, err)

	h := NewHandler(svc, activeCampaign{c: &campaign.Campaign{ID: f.campaignID}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	req = req.WithContext(auth.WithUser(req.Context(), f.users[2], "c@example.com"))
	rec := httptest.NewRecorder()
	h.GetMatches(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []MatchView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)

	rec = httptest.NewRecorder()
	h.GetMatches(rec, httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakeS3) PutObjectWithContext(_ context.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.input = in
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(in.Body); err != nil {
		return nil, err
	}
	f.body = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archiver(t *testing.T) {
	client := &fakeS3{}
	archiver := NewS3ArchiverWithClient(client, "wizardmatch-archive")

	summary := &GenerationSummary{GenerationID: uuid.New(), CampaignID: uuid.New(), MatchesWritten: 4}
	require.NoError(t, archiver.Archive(context.Background(), summary))

	require.NotNil(t, client.input)
	assert.Equal(t, "wizardmatch-archive", *client.input.Bucket)
	assert.Equal(t, "generations/"+summary.CampaignID.String()+"/"+summary.GenerationID.String()+".json", *client.input.Key)

	var decoded GenerationSummary
	require.NoError(t, json.Unmarshal(client.body, &decoded))
	assert.Equal(t, 4, decoded.MatchesWritten)
}
