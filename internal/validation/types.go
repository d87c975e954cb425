package validation

import (
	"sort"
	"strings"
)

// Validator is the validation contract consumed by the envguard pipeline.
// Validate must return synchronously; a Pending result is treated by callers
// as a contract violation.
type Validator interface {
	Validate(input any) Result
}

// Func adapts an ordinary function to the Validator interface.
type Func func(input any) Result

// Validate calls f(input).
func (f Func) Validate(input any) Result {
	return f(input)
}

// Schema maps environment variable names to the validators for their values.
type Schema map[string]Validator

// Keys returns the schema keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Issue describes a single validation problem. Path locates the offending
// value, starting with the variable name when produced by Combine.
type Issue struct {
	Message string
	Path    []string
}

// Error implements error so issues can be aggregated with multierr.
func (i Issue) Error() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return strings.Join(i.Path, ".") + ": " + i.Message
}

// WithPrefix returns a copy of the issue with segment prepended to its path.
func (i Issue) WithPrefix(segment string) Issue {
	path := make([]string, 0, len(i.Path)+1)
	path = append(path, segment)
	path = append(path, i.Path...)
	return Issue{Message: i.Message, Path: path}
}

// Result is the outcome of a single Validate call: a value on success, an
// ordered list of issues on failure, or a deferred result that has not
// resolved yet.
type Result struct {
	Value  any
	Issues []Issue

	deferred <-chan Result
}

// Success wraps a validated value.
func Success(value any) Result {
	return Result{Value: value}
}

// Failure wraps one or more issues. Calling it without issues still yields a
// failed result.
func Failure(issues ...Issue) Result {
	if len(issues) == 0 {
		issues = []Issue{{Message: ErrValidationFailed.Error()}}
	}
	return Result{Issues: issues}
}

// Pending wraps a result that will only be available later on ch.
func Pending(ch <-chan Result) Result {
	if ch == nil {
		ch = make(chan Result)
	}
	return Result{deferred: ch}
}

// IsPending reports whether the result was not resolved at call time.
func (r Result) IsPending() bool {
	return r.deferred != nil
}

// Deferred returns the channel of a pending result, or nil.
func (r Result) Deferred() <-chan Result {
	return r.deferred
}

// Failed reports whether the result carries at least one issue.
func (r Result) Failed() bool {
	return len(r.Issues) > 0
}
