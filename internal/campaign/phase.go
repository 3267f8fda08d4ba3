package campaign

import (
	"time"
)

// Labels shown next to the countdown.
const (
	LabelUntilSurveyOpens   = "Until survey opens"
	LabelUntilSurveyCloses  = "Until survey closes"
	LabelUntilProfileUpdate = "Until profile update period"
	LabelUntilResults       = "Until results reveal"
	LabelResultsRevealed    = "Results revealed!"
)

// ResolvePhase maps a schedule and an instant onto a phase. Boundaries are
// closed-open: at exactly surveyOpenDate the phase is already survey_open.
// The interval between profileUpdateEndDate and resultsReleaseDate stays
// in profile_update, so profileUpdateEndDate is not a transition.
//
// c is assumed valid (see Campaign.Validate).
func ResolvePhase(c *Campaign, now time.Time) PhaseInfo {
	var (
		phase Phase
		next  time.Time
		label string
	)

	switch {
	case now.Before(c.SurveyOpenDate):
		phase, next, label = PhasePreLaunch, c.SurveyOpenDate, LabelUntilSurveyOpens
	case now.Before(c.SurveyCloseDate):
		phase, next, label = PhaseSurveyOpen, c.SurveyCloseDate, LabelUntilSurveyCloses
	case now.Before(c.ProfileUpdateStartDate):
		phase, next, label = PhaseSurveyClosed, c.ProfileUpdateStartDate, LabelUntilProfileUpdate
	case now.Before(c.ResultsReleaseDate):
		phase, next, label = PhaseProfileUpdate, c.ResultsReleaseDate, LabelUntilResults
	default:
		return PhaseInfo{Phase: PhaseResultsReleased, NextPhaseLabel: LabelResultsRevealed}
	}

	return PhaseInfo{
		Phase:                phase,
		TimeRemainingSeconds: secondsUntil(now, next),
		NextPhaseLabel:       label,
		NextTransitionAt:     &next,
	}
}

// secondsUntil rounds up so a non-terminal phase never reports zero.
func secondsUntil(now, next time.Time) int64 {
	d := next.Sub(now)
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
