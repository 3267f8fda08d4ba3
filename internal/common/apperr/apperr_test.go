package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("email", "invalid"), KindValidation},
		{"phase denied", PhaseDenied("take_survey", "pre_launch", "survey not open"), KindPhaseDenied},
		{"conflict", Conflict("generation running"), KindConcurrencyConflict},
		{"integrity", DataIntegrity("no overlap", nil), KindDataIntegrity},
		{"not found", NotFound("match"), KindNotFound},
		{"forbidden", Forbidden("not a participant"), KindForbidden},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("user")), KindNotFound},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPhaseDeniedCarriesActionAndPhase(t *testing.T) {
	err := fmt.Errorf("submit: %w", PhaseDenied("take_survey", "survey_closed", "survey is closed"))

	e, ok := As(err)
	require.True(t, ok)
	require.Equal(t, "take_survey", e.Action)
	require.Equal(t, "survey_closed", e.Phase)
	require.Equal(t, "survey is closed", e.Message)
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("match"))
	require.True(t, errors.Is(err, &Error{Kind: KindNotFound}))
	require.False(t, errors.Is(err, &Error{Kind: KindValidation}))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("scale bounds inverted")
	err := DataIntegrity("cannot score", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "scale bounds inverted")
}
