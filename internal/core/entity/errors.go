package entity

import (
	"errors"
	"fmt"
)

// Kind is the stable, wire-visible error taxonomy from the system's error
// handling design. Request Surface handlers switch on Kind, never on the
// underlying message, so internal details never leak to a client.
type Kind string

const (
	KindUnauthenticated     Kind = "Unauthenticated"
	KindForbidden           Kind = "Forbidden"
	KindNotFound            Kind = "NotFound"
	KindConflict            Kind = "Conflict"
	KindInvalid             Kind = "Invalid"
	KindTooLarge            Kind = "TooLarge"
	KindForbiddenType       Kind = "ForbiddenType"
	KindIO                  Kind = "IO"
	KindPartialFailure      Kind = "PartialFailure"
	KindProviderUnreachable Kind = "ProviderUnreachable"
)

// DomainError is the single error type returned by every core component.
// It carries a stable Kind for HTTP mapping and a human message, and wraps
// the underlying cause for logging without ever exposing the cause on the
// wire response.
type DomainError struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewError builds a DomainError with no wrapped cause.
func NewError(kind Kind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// Wrap builds a DomainError around an underlying cause. The cause is never
// rendered on the wire (see dto.NewErrorResponse) — it exists for
// server-side logging only.
func Wrap(kind Kind, message string, cause error) *DomainError {
	return &DomainError{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the Kind of err, defaulting to KindIO for anything that
// isn't a *DomainError: an unclassified failure is treated as transient
// infrastructure trouble rather than silently mapped to success.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindIO
}

// Is reports whether err is a DomainError of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Sentinel errors checked structurally (e.g. with errors.Is in tests).
var (
	ErrDraftNotFound      = NewError(KindNotFound, "draft not found")
	ErrSubmissionNotFound = NewError(KindNotFound, "submission not found")
	ErrStagedFileNotFound = NewError(KindNotFound, "staged file not found")
	ErrSOPNotFound        = NewError(KindNotFound, "sop descriptor not found")
	ErrNotOwner           = NewError(KindForbidden, "caller does not own this resource")
	ErrFilenameConflict   = NewError(KindConflict, "filename already exists")
	ErrDelimiterInField   = NewError(KindInvalid, "component contains reserved delimiter")
)
