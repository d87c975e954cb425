package validation

import "errors"

var (
	// ErrRequired is reported when a required variable is absent.
	ErrRequired = errors.New("required")
	// ErrNotString is reported when a field validator receives a non-string input.
	ErrNotString = errors.New("expected a string value")
	// ErrEmpty is reported when a non-empty value is blank.
	ErrEmpty = errors.New("must not be empty")
	// ErrNotInteger is reported when a value cannot be parsed as an integer.
	ErrNotInteger = errors.New("must be an integer")
	// ErrNotNumber is reported when a value cannot be parsed as a number.
	ErrNotNumber = errors.New("must be a number")
	// ErrNotBool is reported when a value cannot be parsed as a boolean.
	ErrNotBool = errors.New("must be a boolean")
	// ErrNotDuration is reported when a value cannot be parsed as a duration.
	ErrNotDuration = errors.New("must be a duration")
	// ErrNotURL is reported when a value is not an absolute URL.
	ErrNotURL = errors.New("must be an absolute URL")
	// ErrPortRange is reported when a port falls outside 1-65535.
	ErrPortRange = errors.New("must be a port between 1 and 65535")
	// ErrNotAllowed is reported when a value is not one of the allowed options.
	ErrNotAllowed = errors.New("must be one of the allowed values")
	// ErrNotMapping is reported when Combine receives input that is not a string mapping.
	ErrNotMapping = errors.New("expected a mapping of strings")
	// ErrNoValidator is reported when a schema entry has a nil validator.
	ErrNoValidator = errors.New("no validator declared")
	// ErrValidationFailed is the generic message used by Failure without issues.
	ErrValidationFailed = errors.New("validation failed")
)
