package errors

import (
	"encoding/json"
	"strings"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"
	ErrCodeForbidden        ErrorCode = "forbidden"
	ErrCodeAlreadyTokenized ErrorCode = "already_tokenized"
	ErrCodeUserRejected     ErrorCode = "user_rejected"
	ErrCodeRateLimited      ErrorCode = "rate_limited"

	// Server and chain errors (5xx)
	ErrCodeInternalError         ErrorCode = "internal_error"
	ErrCodeServiceUnavailable    ErrorCode = "service_unavailable"
	ErrCodeDatabaseError         ErrorCode = "database_error"
	ErrCodeWalletUnavailable     ErrorCode = "wallet_unavailable"
	ErrCodeWrongNetwork          ErrorCode = "wrong_network"
	ErrCodeChainRejected         ErrorCode = "chain_rejected"
	ErrCodeConfirmationTimedOut  ErrorCode = "confirmation_timed_out"
	ErrCodeConfirmedNotPersisted ErrorCode = "confirmed_not_persisted"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// New creates an API error with the given code
func New(code ErrorCode, message string, details ...string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return New(ErrCodeBadRequest, message, details...)
}

func NewNotFoundError(message string, details ...string) *APIError {
	return New(ErrCodeNotFound, message, details...)
}

func NewValidationError(details ...string) *APIError {
	return New(ErrCodeValidationFailed, "Validation failed", details...)
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return New(ErrCodeUnauthorized, message, details...)
}

func NewInternalError(message string, details ...string) *APIError {
	return New(ErrCodeInternalError, message, details...)
}

func NewDatabaseError(message string, details ...string) *APIError {
	return New(ErrCodeDatabaseError, message, details...)
}

func NewRateLimitedError(message string, details ...string) *APIError {
	return New(ErrCodeRateLimited, message, details...)
}
