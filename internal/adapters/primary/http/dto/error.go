package dto

import (
	"net/http"

	"github.com/elnvault/eln-core/internal/core/entity"
)

// ErrorResponse is the wire shape for every error response. Message is
// always the DomainError's own message — never the wrapped cause, which
// may reference storage internals.
type ErrorResponse struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewErrorResponse builds the wire body for err.
func NewErrorResponse(err error) ErrorResponse {
	var resp ErrorResponse
	resp.Error.Kind = string(entity.KindOf(err))
	resp.Error.Message = err.Error()
	if de, ok := asDomainError(err); ok {
		resp.Error.Message = de.Message
	}
	return resp
}

func asDomainError(err error) (*entity.DomainError, bool) {
	de, ok := err.(*entity.DomainError)
	return de, ok
}

// StatusForKind maps a domain error Kind to its HTTP status code per
// spec §7's error-kind-to-status table.
func StatusForKind(kind entity.Kind) int {
	switch kind {
	case entity.KindUnauthenticated:
		return http.StatusUnauthorized
	case entity.KindForbidden:
		return http.StatusForbidden
	case entity.KindNotFound:
		return http.StatusNotFound
	case entity.KindConflict:
		return http.StatusConflict
	case entity.KindInvalid:
		return http.StatusBadRequest
	case entity.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case entity.KindForbiddenType:
		return http.StatusUnsupportedMediaType
	case entity.KindPartialFailure:
		return http.StatusMultiStatus
	case entity.KindProviderUnreachable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
