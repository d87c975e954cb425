package envguard

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/eugenenazirov/envguard/internal/validation"
)

var (
	// ErrValidation marks a construction that failed schema validation.
	ErrValidation = errors.New("invalid environment variables")
	// ErrAsyncValidation marks a validator that did not resolve synchronously.
	ErrAsyncValidation = errors.New("validation must be synchronous")
	// ErrUndefinedKey marks a read of a variable the container does not declare.
	ErrUndefinedKey = errors.New("environment variable is not defined in the schema")
	// ErrImmutable marks an attempt to set or delete a variable.
	ErrImmutable = errors.New("environment variables are immutable")
	// ErrConversion marks a typed read whose value cannot be converted.
	ErrConversion = errors.New("environment variable has an incompatible type")
)

// InvalidEnvironmentError is returned for every failed construction and every
// guard violation on a Container. Use errors.Is with ErrValidation,
// ErrAsyncValidation, ErrUndefinedKey, ErrImmutable or ErrConversion to tell
// the conditions apart.
type InvalidEnvironmentError struct {
	// Key is the variable involved in a guard violation, empty otherwise.
	Key string
	// Issues holds the validator issues for validation failures, in order.
	Issues []validation.Issue

	reason  error
	message string
	cause   error
}

func (e *InvalidEnvironmentError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap returns the underlying cause, if any.
func (e *InvalidEnvironmentError) Unwrap() error {
	return e.cause
}

// Is reports whether target is the sentinel describing this error's condition.
func (e *InvalidEnvironmentError) Is(target error) bool {
	return target == e.reason
}

// Reason returns the sentinel describing this error's condition.
func (e *InvalidEnvironmentError) Reason() error {
	return e.reason
}

func validationError(issues []validation.Issue) *InvalidEnvironmentError {
	errs := make([]error, 0, len(issues))
	for _, issue := range issues {
		errs = append(errs, issue)
	}
	return &InvalidEnvironmentError{
		Issues:  issues,
		reason:  ErrValidation,
		message: ErrValidation.Error(),
		cause:   multierr.Combine(errs...),
	}
}

func asyncValidationError() *InvalidEnvironmentError {
	return &InvalidEnvironmentError{
		reason:  ErrAsyncValidation,
		message: ErrAsyncValidation.Error(),
	}
}

func undefinedKeyError(key string) *InvalidEnvironmentError {
	return &InvalidEnvironmentError{
		Key:     key,
		reason:  ErrUndefinedKey,
		message: fmt.Sprintf("environment variable %q is not defined in the schema", key),
	}
}

func immutableError(op, key string) *InvalidEnvironmentError {
	return &InvalidEnvironmentError{
		Key:     key,
		reason:  ErrImmutable,
		message: fmt.Sprintf("cannot %s environment variable %q: %s", op, key, ErrImmutable),
	}
}

func conversionError(key, kind string, cause error) *InvalidEnvironmentError {
	return &InvalidEnvironmentError{
		Key:     key,
		reason:  ErrConversion,
		message: fmt.Sprintf("environment variable %q cannot be read as %s", key, kind),
		cause:   cause,
	}
}
