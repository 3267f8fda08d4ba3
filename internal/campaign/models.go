package campaign

import (
	"time"

	"github.com/google/uuid"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// Phase is the campaign stage derived from the schedule and the clock.
type Phase string

const (
	PhasePreLaunch       Phase = "pre_launch"
	PhaseSurveyOpen      Phase = "survey_open"
	PhaseSurveyClosed    Phase = "survey_closed"
	PhaseProfileUpdate   Phase = "profile_update"
	PhaseResultsReleased Phase = "results_released"
)

// Order gives the position of p in the campaign timeline.
func (p Phase) Order() int {
	switch p {
	case PhasePreLaunch:
		return 0
	case PhaseSurveyOpen:
		return 1
	case PhaseSurveyClosed:
		return 2
	case PhaseProfileUpdate:
		return 3
	case PhaseResultsReleased:
		return 4
	default:
		return -1
	}
}

// Campaign is one run of the event. The five dates are non-decreasing.
type Campaign struct {
	ID                     uuid.UUID `db:"id" json:"id"`
	Name                   string    `db:"name" json:"name"`
	SurveyOpenDate         time.Time `db:"survey_open_date" json:"surveyOpenDate"`
	SurveyCloseDate        time.Time `db:"survey_close_date" json:"surveyCloseDate"`
	ProfileUpdateStartDate time.Time `db:"profile_update_start_date" json:"profileUpdateStartDate"`
	ProfileUpdateEndDate   time.Time `db:"profile_update_end_date" json:"profileUpdateEndDate"`
	ResultsReleaseDate     time.Time `db:"results_release_date" json:"resultsReleaseDate"`
	AlgorithmVersion       string    `db:"algorithm_version" json:"algorithmVersion"`
	IsActive               bool      `db:"is_active" json:"isActive"`
}

// Validate checks the schedule is ordered.
func (c *Campaign) Validate() error {
	dates := []struct {
		name string
		at   time.Time
	}{
		{"surveyOpenDate", c.SurveyOpenDate},
		{"surveyCloseDate", c.SurveyCloseDate},
		{"profileUpdateStartDate", c.ProfileUpdateStartDate},
		{"profileUpdateEndDate", c.ProfileUpdateEndDate},
		{"resultsReleaseDate", c.ResultsReleaseDate},
	}
	for i := 1; i < len(dates); i++ {
		if dates[i].at.Before(dates[i-1].at) {
			return apperr.Validation(dates[i].name, dates[i].name+" must not be before "+dates[i-1].name)
		}
	}
	return nil
}

// PhaseInfo is the resolver output.
type PhaseInfo struct {
	Phase                Phase      `json:"phase"`
	TimeRemainingSeconds int64      `json:"timeRemaining"`
	NextPhaseLabel       string     `json:"nextPhaseLabel"`
	NextTransitionAt     *time.Time `json:"nextTransitionAt,omitempty"`
}

// ActiveCampaignView is returned by GET /campaigns/active.
type ActiveCampaignView struct {
	*Campaign
	PhaseInfo
}

// Stats summarizes participation for admins.
type Stats struct {
	CampaignID           uuid.UUID `db:"campaign_id" json:"campaignId"`
	TotalParticipants    int64     `db:"total_participants" json:"totalParticipants"`
	SurveyCompletedCount int64     `db:"survey_completed_count" json:"surveyCompletedCount"`
	TotalMatches         int64     `db:"total_matches" json:"totalMatches"`
	MutualMatches        int64     `db:"mutual_matches" json:"mutualMatches"`
}
