// Package apperrors defines the typed error taxonomy shared by every COE
// component. Agents and the Orchestrator never let these escape Process —
// they translate them into an AgentResponse. ScriptPipeline and OrderBook
// raise them to the transport layer, which maps them onto the response
// envelope (see pkg/api).
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the transport/agent layer should react to
// it, in increasing severity.
type Kind string

const (
	KindTransientDependency Kind = "transient_dependency"
	KindValidationFailure   Kind = "validation_failure"
	KindNotFound            Kind = "not_found"
	KindAuthorizationDenied Kind = "authorization_denied"
	KindConflict            Kind = "conflict"
	KindInternal            Kind = "internal"
)

// Error is a typed, wrapped application error carrying a Kind so callers can
// branch on severity without string-matching messages.
type Error struct {
	Kind    Kind
	Message string
	Field   string // populated for ValidationFailure
	Err     error  // wrapped cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, apperrors.New(kind, "")) style sentinel checks
// by kind alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New creates an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a ValidationFailure naming the offending field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidationFailure, Field: field, Message: message}
}

// KindOf extracts the Kind of err, defaulting to KindInternal when err is
// not an *Error (e.g. a raw driver error that escaped a boundary).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if err == nil {
		return ""
	}
	return KindInternal
}

// Domain-specific sentinels used with errors.Is across package boundaries.
var (
	ErrProductNotFound    = New(KindNotFound, "product not found")
	ErrOrderNotFound      = New(KindNotFound, "order not found")
	ErrSessionNotFound    = New(KindNotFound, "session not found")
	ErrInsufficientStock  = New(KindConflict, "insufficient stock")
	ErrInvalidOrderState  = New(KindConflict, "invalid order state transition")
	ErrDependencyTimeout  = New(KindTransientDependency, "dependency timed out")
	ErrStorageError       = New(KindTransientDependency, "storage error")
	ErrAuthorizationDeny  = New(KindAuthorizationDenied, "authorization denied")
)

// InsufficientStock builds a detailed conflict error for a specific product.
func InsufficientStock(productID string, available, requested int) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("product %s: available %d, requested %d", productID, available, requested),
		Err:     ErrInsufficientStock,
	}
}

// ProductNotFound builds a NotFound error for a specific product id.
func ProductNotFound(productID string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("product %s not found or inactive", productID),
		Err:     ErrProductNotFound,
	}
}

// InvalidOrderState builds a Conflict error describing a bad transition.
func InvalidOrderState(from, to string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("cannot transition order from %q to %q", from, to),
		Err:     ErrInvalidOrderState,
	}
}
