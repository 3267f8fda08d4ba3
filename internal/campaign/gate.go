package campaign

import (
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// Action is a user-facing operation whose availability depends on the phase.
type Action string

const (
	ActionTakeSurvey      Action = "take_survey"
	ActionSubmitCrushList Action = "submit_crush_list"
	ActionEditProfile     Action = "edit_profile"
	ActionSendMessage     Action = "send_message"
	ActionRevealMatch     Action = "reveal_match"
)

const reasonUnsupported = "unsupported action"

type actionRule struct {
	phases []Phase
	denied string
}

// actionRules is the whole policy. Anything absent is denied.
var actionRules = map[Action]actionRule{
	ActionTakeSurvey: {
		phases: []Phase{PhaseSurveyOpen},
		denied: "The survey is only available while it is open",
	},
	ActionSubmitCrushList: {
		phases: []Phase{PhaseSurveyOpen, PhaseSurveyClosed},
		denied: "Crush lists can only be submitted until the profile update period starts",
	},
	ActionEditProfile: {
		phases: []Phase{PhaseSurveyOpen, PhaseProfileUpdate},
		denied: "Profiles can only be edited while the survey is open or during the profile update period",
	},
	ActionSendMessage: {
		phases: []Phase{PhaseProfileUpdate, PhaseResultsReleased},
		denied: "Messaging unlocks once the profile update period starts",
	},
	ActionRevealMatch: {
		phases: []Phase{PhaseProfileUpdate, PhaseResultsReleased},
		denied: "Matches can be revealed once the profile update period starts",
	},
}

// Actions lists the known actions.
func Actions() []Action {
	return []Action{ActionTakeSurvey, ActionSubmitCrushList, ActionEditProfile, ActionSendMessage, ActionRevealMatch}
}

// Decision is the gate outcome for one action in one phase.
type Decision struct {
	Action  Action `json:"action"`
	Phase   Phase  `json:"phase"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CheckAction is a pure lookup; it never touches the clock.
func CheckAction(action Action, phase Phase) Decision {
	d := Decision{Action: action, Phase: phase}

	rule, ok := actionRules[action]
	if !ok {
		d.Reason = reasonUnsupported
		return d
	}

	for _, p := range rule.phases {
		if p == phase {
			d.Allowed = true
			return d
		}
	}
	d.Reason = rule.denied
	return d
}

// Err converts a denied decision into a phase-denied error, nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.PhaseDenied(string(d.Action), string(d.Phase), d.Reason)
}
