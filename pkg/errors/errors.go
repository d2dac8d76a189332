package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Common error codes used across all packages
const (
	// Generic errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeConflict     ErrorCode = "CONFLICT"

	// Validation errors. Write-path and read-path validation are kept
	// distinct: callers treat a malformed query differently from a
	// malformed mutation.
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeQueryValidationFailed ErrorCode = "QUERY_VALIDATION_FAILED"

	// Domain errors
	ErrCodeDomainRuleViolation ErrorCode = "DOMAIN_RULE_VIOLATION"

	// Persistence errors
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
)

// FieldError is a single (field, message) validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code       ErrorCode              // Unique error code
	Message    string                 // Human-readable error message
	Details    map[string]interface{} // Optional additional details
	Violations []FieldError           // Validation violations, if any
	Err        error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// GetViolations extracts validation violations from an error
// Returns nil if the error carries none
func GetViolations(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Violations
	}
	return nil
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	// 400 Bad Request
	case ErrCodeInvalidInput, ErrCodeValidationFailed, ErrCodeQueryValidationFailed:
		return http.StatusBadRequest

	// 404 Not Found
	case ErrCodeNotFound:
		return http.StatusNotFound

	// 409 Conflict
	case ErrCodeConflict:
		return http.StatusConflict

	// 422 Unprocessable Entity
	case ErrCodeDomainRuleViolation:
		return http.StatusUnprocessableEntity

	// 503 Service Unavailable
	case ErrCodeStorageFailure:
		return http.StatusServiceUnavailable

	// 500 Internal Server Error (default)
	case ErrCodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors for frequently used errors

// NotFound creates a "not found" error for an entity or relationship
func NotFound(entityType, id string) *Error {
	return Newf(ErrCodeNotFound, "%s not found: %s", entityType, id).
		WithDetail("entity_type", entityType).
		WithDetail("id", id)
}

// Conflict creates a "conflict" error for a resource that already exists
func Conflict(resourceType, details string) *Error {
	return Newf(ErrCodeConflict, "%s already exists: %s", resourceType, details).
		WithDetail("resource_type", resourceType)
}

// ValidationFailed creates a write-path validation error carrying all violations
func ValidationFailed(violations []FieldError) *Error {
	e := New(ErrCodeValidationFailed, "validation failed")
	e.Violations = violations
	return e
}

// QueryValidationFailed creates a read-path validation error carrying all violations
func QueryValidationFailed(violations []FieldError) *Error {
	e := New(ErrCodeQueryValidationFailed, "query validation failed")
	e.Violations = violations
	return e
}

// DomainRuleViolation creates a business-rule violation error
func DomainRuleViolation(message string) *Error {
	return New(ErrCodeDomainRuleViolation, message)
}

// CrossOrganisationMembership creates the domain error raised when a user is
// added to a group of an organisation the user does not belong to
func CrossOrganisationMembership(groupID, organisationID, userID string) *Error {
	return Newf(ErrCodeDomainRuleViolation,
		"user %s is not a member of organisation %s owning group %s", userID, organisationID, groupID).
		WithDetail("group_id", groupID).
		WithDetail("organisation_id", organisationID).
		WithDetail("user_id", userID)
}

// StorageFailure wraps a persistence-layer failure
func StorageFailure(err error) *Error {
	return Wrap(err, ErrCodeStorageFailure, "storage failure")
}

// Internal creates an "internal error"
func Internal(message string) *Error {
	return New(ErrCodeInternal, message)
}
