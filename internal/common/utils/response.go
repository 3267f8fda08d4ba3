// internal/common/utils/response.go
// Standardized API responses ensure consistency across all endpoints

package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
)

// Response is the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorBody is returned for apperr failures so clients can branch on kind.
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Kind    apperr.Kind `json:"kind"`
	Field   string      `json:"field,omitempty"`
	Action  string      `json:"action,omitempty"`
	Phase   string      `json:"phase,omitempty"`
}

// RespondWithError sends an error response with the specified status code and message
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Success: false, Error: message})
}

// RespondWithJSON sends a JSON response with the specified status code and payload
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithData sends a success response with data wrapped in a standard format
func RespondWithData(w http.ResponseWriter, code int, data interface{}) {
	RespondWithJSON(w, code, Response{Success: true, Data: data})
}

// RespondWithMessage sends a success response with a message and optional data
func RespondWithMessage(w http.ResponseWriter, code int, message string, data interface{}) {
	RespondWithJSON(w, code, Response{Success: true, Message: message, Data: data})
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden, apperr.KindPhaseDenied:
		return http.StatusForbidden
	case apperr.KindConcurrencyConflict:
		return http.StatusConflict
	case apperr.KindDataIntegrity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err using its apperr kind. Errors without a
// kind are logged and hidden behind a generic message.
func RespondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := e.Message
	if e.Kind == apperr.KindDataIntegrity && e.Err != nil {
		zap.L().Warn("data integrity failure", zap.String("path", r.URL.Path), zap.Error(e.Err))
	}

	RespondWithJSON(w, StatusFor(e.Kind), ErrorBody{
		Success: false,
		Error:   message,
		Kind:    e.Kind,
		Field:   e.Field,
		Action:  e.Action,
		Phase:   e.Phase,
	})
}

// DecodeJSON decodes the request body into dst, reporting malformed
// payloads as validation errors.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("", "Invalid request payload")
	}
	return nil
}
