package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InvalidAmountError signals a payment amount that is not positive or exceeds
// the account's current balance
type InvalidAmountError struct {
	Amount  float64
	Balance float64
	Message string
}

func (e *InvalidAmountError) Error() string {
	return e.Message
}

// InvalidMethodError signals an unrecognized payment method
type InvalidMethodError struct {
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("unknown payment method: %s", e.Method)
}

// MissingFieldError signals an absent method-specific required field
type MissingFieldError struct {
	Field  string
	Method string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required for %s payments", e.Field, e.Method)
}

// ConflictError signals a mutation that the current state forbids, such as
// editing a locked fee structure or paying an account that is already settled
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError signals invalid input caught before any persistence
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError signals a missing record
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// translateValidationErrors converts validator errors into a single
// human-readable ValidationError
func translateValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &ValidationError{Message: err.Error()}
	}
	var errorMessages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			errorMessages = append(errorMessages, "field "+e.Field()+" is required")
		case "gt":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be greater than "+e.Param())
		case "gte":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be at least "+e.Param())
		case "min":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be at least "+e.Param()+" characters")
		case "max":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be at most "+e.Param()+" characters")
		case "oneof":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be one of: "+e.Param())
		case "email":
			errorMessages = append(errorMessages, "field "+e.Field()+" must be a valid email address")
		default:
			errorMessages = append(errorMessages, "field "+e.Field()+" is invalid")
		}
	}
	return &ValidationError{Message: strings.Join(errorMessages, "; ")}
}
