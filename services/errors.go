package services

import (
	"errors"
	"fmt"

	"github.com/rm/user-service/utils"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Code    utils.ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Errors match on their response code when the target carries one, otherwise on type.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code.Code != "" {
		return e.Code.Code == t.Code.Code
	}
	return e.Type == t.Type
}

// Wrap returns a copy of e carrying err as its cause. Package level errors stay untouched.
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

func newCodedError(errType ErrorType, code utils.ErrorCode) *DomainError {
	return &DomainError{
		Type:    errType,
		Code:    code,
		Message: code.Msg,
	}
}

// Domain error variables

var (
	// Authentication and authorization
	ErrNotAuthenticated   = newCodedError(ErrorTypeUnauthorized, utils.CodeNotAuthenticated)
	ErrIdentityMissing    = newCodedError(ErrorTypeUnauthorized, utils.CodeIdentityMissing)
	ErrAccessDenied       = newCodedError(ErrorTypeForbidden, utils.CodeAccessDenied)
	ErrCredentialMismatch = newCodedError(ErrorTypeForbidden, utils.CodeCredentialMismatch)

	// Not Found Errors
	ErrUserNotFound = newCodedError(ErrorTypeNotFound, utils.CodeUserNotFound)

	// Conflict Errors
	ErrDuplicateUID   = newCodedError(ErrorTypeConflict, utils.CodeDuplicateUID)
	ErrDuplicateEmail = newCodedError(ErrorTypeConflict, utils.CodeDuplicateEmail)

	// Validation Errors
	ErrInvalidInput = newCodedError(ErrorTypeValidation, utils.CodeInvalidInput)

	// Internal Errors
	ErrInternal = newCodedError(ErrorTypeInternal, utils.CodeInternal)
)

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorCode returns the response code of a domain error; anything unclassified maps to the server error code
func GetErrorCode(err error) utils.ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrInternal.Code
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	wrapped := ErrInternal.Wrap(err)
	wrapped.Message = message
	return wrapped
}
