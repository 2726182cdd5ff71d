package dto

import (
	"net/http"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/cockroachdb/errors"
)

// Error codes returned in the error envelope
const (
	ErrCodeInternal         = "ERR_INTERNAL"
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists    = "ERR_ALREADY_EXISTS"
	ErrCodeBusinessRule     = "ERR_BUSINESS_RULE"
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited      = "ERR_RATE_LIMITED"
	ErrCodeUnavailable      = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeBusinessRule:     http.StatusUnprocessableEntity,
	ErrCodeDuplicateRequest: http.StatusConflict,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodeUnavailable:      http.StatusServiceUnavailable,
}

// kindErrorCodes maps a domain error kind to its envelope code
var kindErrorCodes = map[shared.ErrorKind]string{
	shared.KindValidation:   ErrCodeValidation,
	shared.KindNotFound:     ErrCodeNotFound,
	shared.KindDuplicate:    ErrCodeAlreadyExists,
	shared.KindBusinessRule: ErrCodeBusinessRule,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// CodeForKind returns the envelope code for a domain error kind
func CodeForKind(kind shared.ErrorKind) string {
	if code, ok := kindErrorCodes[kind]; ok {
		return code
	}
	return ErrCodeInternal
}

// MappedError is an error resolved to everything the envelope needs
type MappedError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

// FromError resolves err to a status, envelope code and client-safe message.
// Anything that is not a domain error becomes a generic 500.
func FromError(err error) MappedError {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := CodeForKind(domainErr.Kind)
		details := make(map[string]any, len(domainErr.Details)+1)
		for k, v := range domainErr.Details {
			details[k] = v
		}
		details["reason"] = domainErr.Code
		return MappedError{
			Status:  GetHTTPStatus(code),
			Code:    code,
			Message: domainErr.Message,
			Details: details,
		}
	}
	return MappedError{
		Status:  http.StatusInternalServerError,
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred",
	}
}
