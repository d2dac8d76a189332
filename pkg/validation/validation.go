// Package validation runs the declarative rule sets attached to command and
// query structs. Validation always runs to completion and reports every
// violation; handlers never see a fail-fast partial result.
package validation

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tendant/simple-acm/pkg/errors"
)

// Validator wraps a configured validator instance. Services require one at
// construction so a mutating handler cannot be built without validation.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator. Field names in violations follow the struct's
// json tags so they line up with the wire format.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Command validates a write-path request, returning a VALIDATION_FAILED
// error carrying all violations, or nil.
func (v *Validator) Command(req interface{}) error {
	violations := v.collect(req)
	if len(violations) == 0 {
		return nil
	}
	return errors.ValidationFailed(violations)
}

// Query validates a read-path request, returning a QUERY_VALIDATION_FAILED
// error carrying all violations, or nil.
func (v *Validator) Query(req interface{}) error {
	violations := v.collect(req)
	if len(violations) == 0 {
		return nil
	}
	return errors.QueryValidationFailed(violations)
}

func (v *Validator) collect(req interface{}) []errors.FieldError {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return []errors.FieldError{{Field: "", Message: err.Error()}}
	}

	violations := make([]errors.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, errors.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return violations
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
