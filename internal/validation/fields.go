package validation

import (
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

// String accepts any present string value.
func String() Validator {
	return text(func(s string) Result {
		return Success(s)
	})
}

// NonEmpty accepts a string that is not blank.
func NonEmpty() Validator {
	return text(func(s string) Result {
		if strings.TrimSpace(s) == "" {
			return Failure(Issue{Message: ErrEmpty.Error()})
		}
		return Success(s)
	})
}

// Int coerces the value to an int. Only base-10 digits with an optional sign
// are accepted; leading zeros do not switch to octal.
func Int() Validator {
	return text(func(s string) Result {
		v, err := decimal(s)
		if err != nil {
			return Failure(Issue{Message: ErrNotInteger.Error()})
		}
		return Success(v)
	})
}

// Float coerces the value to a float64.
func Float() Validator {
	return text(func(s string) Result {
		v, err := cast.ToFloat64E(strings.TrimSpace(s))
		if err != nil {
			return Failure(Issue{Message: ErrNotNumber.Error()})
		}
		return Success(v)
	})
}

// Bool coerces the value to a bool. Accepted spellings are those of
// strconv.ParseBool.
func Bool() Validator {
	return text(func(s string) Result {
		v, err := cast.ToBoolE(strings.TrimSpace(s))
		if err != nil {
			return Failure(Issue{Message: ErrNotBool.Error()})
		}
		return Success(v)
	})
}

// Duration coerces the value to a time.Duration. A bare number is read as
// nanoseconds.
func Duration() Validator {
	return text(func(s string) Result {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return Failure(Issue{Message: ErrNotDuration.Error()})
		}
		v, err := cast.ToDurationE(trimmed)
		if err != nil {
			return Failure(Issue{Message: ErrNotDuration.Error()})
		}
		return Success(v)
	})
}

// URL accepts an absolute URL with a scheme and host and yields a *url.URL.
func URL() Validator {
	return text(func(s string) Result {
		u, err := url.Parse(strings.TrimSpace(s))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Failure(Issue{Message: ErrNotURL.Error()})
		}
		return Success(u)
	})
}

// Port coerces the value to an int in the TCP port range, read in base 10.
func Port() Validator {
	return text(func(s string) Result {
		v, err := decimal(s)
		if err != nil {
			return Failure(Issue{Message: ErrNotInteger.Error()})
		}
		if v < 1 || v > 65535 {
			return Failure(Issue{Message: ErrPortRange.Error()})
		}
		return Success(v)
	})
}

// OneOf accepts only the listed values.
func OneOf(allowed ...string) Validator {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	message := ErrNotAllowed.Error() + " (" + strings.Join(allowed, ", ") + ")"
	return text(func(s string) Result {
		if _, ok := set[s]; !ok {
			return Failure(Issue{Message: message})
		}
		return Success(s)
	})
}

// List splits the value on sep, trims each element and drops empty ones.
func List(sep string) Validator {
	if sep == "" {
		sep = ","
	}
	return text(func(s string) Result {
		parts := strings.Split(s, sep)
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
		return Success(out)
	})
}

// Optional lets v's variable be absent; an absent value yields a nil result
// value and is omitted by Combine.
func Optional(v Validator) Validator {
	return Func(func(input any) Result {
		if input == nil {
			return Success(nil)
		}
		return v.Validate(input)
	})
}

// Default validates fallback through v when the variable is absent.
func Default(v Validator, fallback string) Validator {
	return Func(func(input any) Result {
		if input == nil {
			input = fallback
		}
		return v.Validate(input)
	})
}

// decimal reads s as a base-10 integer, rejecting radix prefixes and '_'
// separators.
func decimal(s string) (int, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, ErrNotInteger
	}
	if trimmed := strings.TrimLeft(digits, "0"); trimmed != digits {
		if trimmed == "" {
			trimmed = "0"
		}
		s = s[:len(s)-len(digits)] + trimmed
	}
	return cast.ToIntE(s)
}

func text(fn func(s string) Result) Validator {
	return Func(func(input any) Result {
		if input == nil {
			return Failure(Issue{Message: ErrRequired.Error()})
		}
		s, ok := input.(string)
		if !ok {
			return Failure(Issue{Message: ErrNotString.Error()})
		}
		return fn(s)
	})
}
