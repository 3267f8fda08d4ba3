package campaign

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

var allPhases = []Phase{PhasePreLaunch, PhaseSurveyOpen, PhaseSurveyClosed, PhaseProfileUpdate, PhaseResultsReleased}

func TestCheckActionTable(t *testing.T) {
	allowed := map[Action][]Phase{
		ActionTakeSurvey:      {PhaseSurveyOpen},
		ActionSubmitCrushList: {PhaseSurveyOpen, PhaseSurveyClosed},
		ActionEditProfile:     {PhaseSurveyOpen, PhaseProfileUpdate},
		ActionSendMessage:     {PhaseProfileUpdate, PhaseResultsReleased},
		ActionRevealMatch:     {PhaseProfileUpdate, PhaseResultsReleased},
	}

	for _, action := range Actions() {
		for _, phase := range allPhases {
			want := false
			for _, p := range allowed[action] {
				if p == phase {
					want = true
				}
			}

			d := CheckAction(action, phase)
			require.Equal(t, want, d.Allowed, "%s in %s", action, phase)
			if want {
				require.Empty(t, d.Reason)
				require.NoError(t, d.Err())
			} else {
				require.NotEmpty(t, d.Reason)
				require.Equal(t, apperr.KindPhaseDenied, apperr.KindOf(d.Err()))
			}
		}
	}
}

func TestCheckActionUnknown(t *testing.T) {
	for _, phase := range allPhases {
		d := CheckAction("delete_everything", phase)
		require.False(t, d.Allowed)
		require.Equal(t, "unsupported action", d.Reason)
	}
}

func TestDecisionErrCarriesContext(t *testing.T) {
	err := CheckAction(ActionSendMessage, PhaseSurveyOpen).Err()
	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, "send_message", e.Action)
	require.Equal(t, "survey_open", e.Phase)
}
