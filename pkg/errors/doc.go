// Package errors provides structured error handling with error codes for simple-acm.
//
// This package standardizes error handling across all services with typed error codes,
// structured error details, validation violations, and automatic HTTP status code mapping.
//
// # Basic Usage
//
// Creating errors with codes:
//
//	import "github.com/tendant/simple-acm/pkg/errors"
//
//	// Use convenience constructors
//	err := errors.NotFound("User", userID)
//	err := errors.Conflict("Membership", "user already in group")
//	err := errors.ValidationFailed(violations)
//	err := errors.StorageFailure(dbErr)
//
//	// Wrap an existing error
//	err := errors.Wrap(dbErr, errors.ErrCodeStorageFailure, "failed to commit")
//
// # Error Codes
//
// Generic:
//   - ErrCodeInternal
//   - ErrCodeInvalidInput
//   - ErrCodeNotFound
//   - ErrCodeConflict
//
// Validation (write path vs read path, kept distinct on purpose):
//   - ErrCodeValidationFailed
//   - ErrCodeQueryValidationFailed
//
// Domain and persistence:
//   - ErrCodeDomainRuleViolation
//   - ErrCodeStorageFailure
//
// # HTTP Mapping
//
// MapErrorCodeToHTTPStatus translates each code into the matching HTTP status;
// WriteHTTP renders a structured JSON error response for HTTP handlers.
package errors
