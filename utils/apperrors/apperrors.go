// Package apperrors defines the error kinds surfaced to API callers. Every
// error carries a stable numeric code and, for validation, the list of
// offending fields.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindUnauthorized
	KindValidationFailed
	KindNotFound
	KindConflict
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindUnauthorized:
		return "Unauthorized"
	case KindValidationFailed:
		return "ValidationFailed"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindUpstreamFailure:
		return "UpstreamFailure"
	default:
		return "Unknown"
	}
}

// Code maps a kind to its HTTP status.
func (k Kind) Code() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindValidationFailed:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FieldError is a single field-level violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the typed error returned by the services.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Reason != "" {
		b.WriteString("/" + e.Reason)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and, when the target has one, on reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// Code is the stable numeric code of the error.
func (e *Error) Code() int { return e.Kind.Code() }

// Conflict reasons
var (
	ErrGameFull                    = &Error{Kind: KindConflict, Reason: "GameFull", Message: "there are no open spots left"}
	ErrAlreadyJoined               = &Error{Kind: KindConflict, Reason: "AlreadyJoined", Message: "user already joined the game"}
	ErrAlreadySubscribed           = &Error{Kind: KindConflict, Reason: "AlreadySubscribed", Message: "user already follows the game"}
	ErrHostCannotLeave             = &Error{Kind: KindConflict, Reason: "HostCannotLeave", Message: "the host cannot leave the game"}
	ErrClaimedSpotsCannotBeRemoved = &Error{Kind: KindConflict, Reason: "ClaimedSpotsCannotBeRemoved", Message: "reserved spots already claimed cannot be removed"}
	ErrReservationExceedsCapacity  = &Error{Kind: KindConflict, Reason: "ReservationExceedsCapacity", Message: "reserved spots must leave at least one open spot"}
	ErrCannotUnsubscribeAsPlayer   = &Error{Kind: KindConflict, Reason: "CannotUnsubscribeAsPlayer", Message: "players must leave the game instead"}
)

// Unauthenticated reasons
var (
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Reason: "InvalidCredentials", Message: "invalid phone or password"}
)

// NotFound reasons
var (
	ErrNotAPlayer    = &Error{Kind: KindNotFound, Reason: "NotAPlayer", Message: "user is not a player of the game"}
	ErrNotSubscribed = &Error{Kind: KindNotFound, Reason: "NotSubscribed", Message: "user does not follow the game"}
)

// Sentinels for kind-only matching with errors.Is
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrValidation      = &Error{Kind: KindValidationFailed}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrUpstream        = &Error{Kind: KindUpstreamFailure}
)

func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "you must be logged in"}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Reason: entity + "NotFound", Message: strings.ToLower(entity) + " not found"}
}

func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidationFailed, Message: "invalid input", Fields: fields}
}

// Upstream wraps a failure of an external dependency (store, cache...).
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: op, Err: err}
}

// As returns the typed error in err's chain, or wraps unknown errors as
// upstream failures.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknown, Err: err}
}

// Validator accumulates field errors so all of them are reported at once.
type Validator struct {
	fields []FieldError
}

func (v *Validator) Add(field, format string, args ...any) {
	v.fields = append(v.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Check adds the message when ok is false.
func (v *Validator) Check(ok bool, field, format string, args ...any) {
	if !ok {
		v.Add(field, format, args...)
	}
}

// Err returns nil when nothing was collected.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return Validation(v.fields)
}
