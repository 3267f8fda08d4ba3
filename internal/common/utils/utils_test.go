package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestJWTRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateJWT(&JWTClaims{
		UserID:    userID,
		Email:     "ana@school.edu",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, "secret")
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "ana@school.edu", claims.Email)

	_, err = ValidateJWT(token, "other-secret")
	require.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(&JWTClaims{
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, "secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret")
	require.Error(t, err)
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
		Kind  string `json:"kind" validate:"required,oneof=pass interest"`
	}

	require.NoError(t, ValidateStruct(payload{Email: "a@b.co", Kind: "pass"}))

	err := ValidateStruct(payload{Email: "nope", Kind: "pass"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	e, _ := apperr.As(err)
	require.Equal(t, "Email", e.Field)
	require.Contains(t, e.Message, "must be a valid email")

	err = ValidateStruct(payload{Email: "a@b.co", Kind: "maybe"})
	require.Contains(t, err.Error(), "must be one of [pass interest]")
}

func TestValidateVar(t *testing.T) {
	require.NoError(t, ValidateVar("email", "x@y.org", "email"))
	err := ValidateVar("email", "x@", "email")
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRespondWithAppErrorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   apperr.Kind
	}{
		{apperr.Validation("kind", "bad"), http.StatusBadRequest, apperr.KindValidation},
		{apperr.PhaseDenied("take_survey", "pre_launch", "Survey has not opened yet"), http.StatusForbidden, apperr.KindPhaseDenied},
		{apperr.Conflict("busy"), http.StatusConflict, apperr.KindConcurrencyConflict},
		{apperr.DataIntegrity("no overlap", errors.New("cause")), http.StatusUnprocessableEntity, apperr.KindDataIntegrity},
		{apperr.NotFound("match"), http.StatusNotFound, apperr.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondWithAppError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)
			require.Equal(t, tt.status, rec.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.False(t, body.Success)
			require.Equal(t, tt.kind, body.Kind)
		})
	}
}

func TestRespondWithAppErrorHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithAppError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("pq: connection refused"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "pq:")
}

func TestPhaseDeniedBodyCarriesActionAndPhase(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithAppError(rec, httptest.NewRequest(http.MethodPost, "/x", nil),
		apperr.PhaseDenied("send_message", "survey_open", "Messaging unlocks during the profile update period"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "send_message", body.Action)
	require.Equal(t, "survey_open", body.Phase)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Kind string `json:"kind"`
	}
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"kind":"pass","extra":1}`))
	err := DecodeJSON(r, &dst)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
