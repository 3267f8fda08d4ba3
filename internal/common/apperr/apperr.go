// Package apperr defines the error kinds shared by every domain package.
// Handlers translate kinds into HTTP statuses; services and repositories
// only ever construct them.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindPhaseDenied         Kind = "phase_denied"
	KindConcurrencyConflict Kind = "concurrency_conflict"
	KindDataIntegrity       Kind = "data_integrity"
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindInternal            Kind = "internal"
)

// Error is the single error type returned across package boundaries.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`

	// Populated for KindPhaseDenied.
	Action string `json:"action,omitempty"`
	Phase  string `json:"phase,omitempty"`

	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, &apperr.Error{Kind: apperr.KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Validation reports malformed input. field may be empty.
func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// PhaseDenied reports an action attempted outside its allowed phases.
func PhaseDenied(action, phase, reason string) error {
	return &Error{Kind: KindPhaseDenied, Action: action, Phase: phase, Message: reason}
}

// Conflict reports a concurrent operation already holding the resource.
func Conflict(message string) error {
	return &Error{Kind: KindConcurrencyConflict, Message: message}
}

// DataIntegrity reports stored data that cannot support the requested operation.
func DataIntegrity(message string, err error) error {
	return &Error{Kind: KindDataIntegrity, Message: message, Err: err}
}

// NotFound reports a missing entity, e.g. NotFound("match").
func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Forbidden reports a caller acting on something they do not participate in.
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As unwraps err into an *Error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
