package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// Kind identifies the failure class of a MatchError
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindStrategy    Kind = "strategy"
	KindPersistence Kind = "persistence"
	KindCancelled   Kind = "cancelled"
	KindConflict    Kind = "conflict"
)

// MatchError is the error type returned by the matching pipeline
type MatchError struct {
	Kind     Kind
	Strategy string
	Message  string
	cause    error
}

func (e *MatchError) Error() string {
	msg := e.Message
	if e.Strategy != "" {
		msg = fmt.Sprintf("strategy '%s': %s", e.Strategy, msg)
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *MatchError) Unwrap() error {
	return e.cause
}

// AddStrategy tags the error with the strategy that produced it
func (e *MatchError) AddStrategy(name string) *MatchError {
	e.Strategy = name
	return e
}

// ToHTTPError maps the error onto an ectoerror HTTP error for layers that
// report status codes
func (e *MatchError) ToHTTPError() *httperror.HTTPError {
	status := http.StatusInternalServerError
	switch e.Kind {
	case KindValidation:
		status = http.StatusBadRequest
	case KindNotFound:
		status = http.StatusNotFound
	case KindConflict:
		status = http.StatusConflict
	case KindCancelled:
		status = http.StatusRequestTimeout
	}
	return httperror.NewHTTPError(status, e.Error()).AddMetaValue("kind", string(e.Kind)).AddMetaValue("strategy", e.Strategy)
}

func newError(kind Kind, msg string, cause error) *MatchError {
	return &MatchError{Kind: kind, Message: msg, cause: cause}
}

// NewValidationError reports a record that cannot be matched as given
func NewValidationError(msg string) *MatchError {
	return newError(KindValidation, msg, nil)
}

// NewNotFoundError reports a missing record
func NewNotFoundError(msg string) *MatchError {
	return newError(KindNotFound, msg, nil)
}

// NewStrategyError wraps a failure inside a single matching strategy
func NewStrategyError(strategy string, cause error) *MatchError {
	err := newError(KindStrategy, "strategy failed", cause)
	err.Strategy = strategy
	return err
}

// NewPersistenceError wraps a failure storing results or advancing status
func NewPersistenceError(msg string, cause error) *MatchError {
	return newError(KindPersistence, msg, cause)
}

// NewCancelledError reports a resolution cut short by context cancellation
func NewCancelledError(cause error) *MatchError {
	return newError(KindCancelled, "resolution cancelled", cause)
}

// NewConflictError reports a resolution already in flight for the record
func NewConflictError(msg string) *MatchError {
	return newError(KindConflict, msg, nil)
}

func isKind(err error, kind Kind) bool {
	var matchErr *MatchError
	if errors.As(err, &matchErr) {
		return matchErr.Kind == kind
	}
	return false
}

func IsValidationError(err error) bool  { return isKind(err, KindValidation) }
func IsNotFoundError(err error) bool    { return isKind(err, KindNotFound) }
func IsStrategyError(err error) bool    { return isKind(err, KindStrategy) }
func IsPersistenceError(err error) bool { return isKind(err, KindPersistence) }
func IsCancelledError(err error) bool   { return isKind(err, KindCancelled) }
func IsConflictError(err error) bool    { return isKind(err, KindConflict) }
