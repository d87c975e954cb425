package validation

import (
	"errors"
	"net/url"
	"slices"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func TestFieldValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		validator Validator
		input     any
		want      any
		wantIssue error
	}{
		{name: "StringAccepts", validator: String(), input: "x", want: "x"},
		{name: "StringAcceptsEmpty", validator: String(), input: "", want: ""},
		{name: "StringRequired", validator: String(), input: nil, wantIssue: ErrRequired},
		{name: "StringRejectsNonString", validator: String(), input: 5, wantIssue: ErrNotString},
		{name: "NonEmptyRejectsBlank", validator: NonEmpty(), input: "  ", wantIssue: ErrEmpty},
		{name: "IntParses", validator: Int(), input: " 42 ", want: 42},
		{name: "IntRejectsText", validator: Int(), input: "forty", wantIssue: ErrNotInteger},
		{name: "IntLeadingZeroIsDecimal", validator: Int(), input: "010", want: 10},
		{name: "IntSigned", validator: Int(), input: "-007", want: -7},
		{name: "IntZero", validator: Int(), input: "000", want: 0},
		{name: "IntRejectsHex", validator: Int(), input: "0x1F", wantIssue: ErrNotInteger},
		{name: "IntRejectsBinary", validator: Int(), input: "0b11", wantIssue: ErrNotInteger},
		{name: "IntRejectsUnderscore", validator: Int(), input: "1_000", wantIssue: ErrNotInteger},
		{name: "IntRejectsDoubleSign", validator: Int(), input: "+-1", wantIssue: ErrNotInteger},
		{name: "FloatParses", validator: Float(), input: "1.5", want: 1.5},
		{name: "FloatRejectsText", validator: Float(), input: "x", wantIssue: ErrNotNumber},
		{name: "BoolParsesTrue", validator: Bool(), input: "true", want: true},
		{name: "BoolParsesZero", validator: Bool(), input: "0", want: false},
		{name: "BoolRejectsYes", validator: Bool(), input: "yes", wantIssue: ErrNotBool},
		{name: "DurationParses", validator: Duration(), input: "1m30s", want: 90 * time.Second},
		{name: "DurationRejectsText", validator: Duration(), input: "soon", wantIssue: ErrNotDuration},
		{name: "PortParses", validator: Port(), input: "8080", want: 8080},
		{name: "PortLeadingZero", validator: Port(), input: "08080", want: 8080},
		{name: "PortRejectsHex", validator: Port(), input: "0x1F90", wantIssue: ErrNotInteger},
		{name: "PortRejectsZero", validator: Port(), input: "0", wantIssue: ErrPortRange},
		{name: "PortRejectsHuge", validator: Port(), input: "70000", wantIssue: ErrPortRange},
		{name: "OneOfAccepts", validator: OneOf("dev", "prod"), input: "prod", want: "prod"},
		{name: "URLRejectsRelative", validator: URL(), input: "/just/a/path", wantIssue: ErrNotURL},
		{name: "OptionalAbsent", validator: Optional(Int()), input: nil, want: nil},
		{name: "OptionalPresent", validator: Optional(Int()), input: "7", want: 7},
		{name: "DefaultAbsent", validator: Default(Port(), "3000"), input: nil, want: 3000},
		{name: "DefaultPresent", validator: Default(Port(), "3000"), input: "4000", want: 4000},
		{name: "DefaultStillValidates", validator: Default(Port(), "nope"), input: nil, wantIssue: ErrNotInteger},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := tc.validator.Validate(tc.input)
			if tc.wantIssue != nil {
				if !res.Failed() {
					t.Fatalf("expected failure %q, got value %v", tc.wantIssue, res.Value)
				}
				if res.Issues[0].Message != tc.wantIssue.Error() {
					t.Fatalf("expected issue %q, got %q", tc.wantIssue, res.Issues[0].Message)
				}
				return
			}
			if res.Failed() {
				t.Fatalf("unexpected issues: %v", res.Issues)
			}
			if res.Value != tc.want {
				t.Fatalf("expected %v (%T), got %v (%T)", tc.want, tc.want, res.Value, res.Value)
			}
		})
	}
}

func TestOneOfRejectsUnknownValue(t *testing.T) {
	t.Parallel()

	res := OneOf("dev", "prod").Validate("staging")
	if !res.Failed() {
		t.Fatalf("expected failure for value outside the allowed set")
	}
	if want := "must be one of the allowed values (dev, prod)"; res.Issues[0].Message != want {
		t.Fatalf("expected %q, got %q", want, res.Issues[0].Message)
	}
}

func TestURLYieldsParsedURL(t *testing.T) {
	t.Parallel()

	res := URL().Validate("postgres://db.internal:5432/app")
	if res.Failed() {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
	u, ok := res.Value.(*url.URL)
	if !ok {
		t.Fatalf("expected *url.URL, got %T", res.Value)
	}
	if u.Host != "db.internal:5432" {
		t.Fatalf("unexpected host %q", u.Host)
	}
}

func TestListSplitsAndTrims(t *testing.T) {
	t.Parallel()

	res := List("").Validate(" a, b ,,c ")
	got, ok := res.Value.([]string)
	if !ok {
		t.Fatalf("expected []string, got %T", res.Value)
	}
	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCombine(t *testing.T) {
	t.Parallel()

	schema := Schema{
		"PORT":  Default(Port(), "8080"),
		"DEBUG": Optional(Bool()),
		"NAME":  String(),
	}

	t.Run("success", func(t *testing.T) {
		res := Combine(schema).Validate(map[string]string{"NAME": "svc", "EXTRA": "ignored"})
		if res.Failed() {
			t.Fatalf("unexpected issues: %v", res.Issues)
		}
		value, ok := res.Value.(map[string]any)
		if !ok {
			t.Fatalf("expected map value, got %T", res.Value)
		}
		if value["PORT"] != 8080 || value["NAME"] != "svc" {
			t.Fatalf("unexpected value: %v", value)
		}
		if _, present := value["DEBUG"]; present {
			t.Fatalf("absent optional field should be omitted, got %v", value)
		}
		if _, present := value["EXTRA"]; present {
			t.Fatalf("undeclared raw key leaked into value: %v", value)
		}
	})

	t.Run("collects every issue with its key", func(t *testing.T) {
		res := Combine(schema).Validate(map[string]string{"PORT": "x", "DEBUG": "maybe"})
		if !res.Failed() {
			t.Fatalf("expected failure")
		}
		if len(res.Issues) != 3 {
			t.Fatalf("expected 3 issues, got %v", res.Issues)
		}
		gotPaths := []string{res.Issues[0].Path[0], res.Issues[1].Path[0], res.Issues[2].Path[0]}
		if want := []string{"DEBUG", "NAME", "PORT"}; !slices.Equal(gotPaths, want) {
			t.Fatalf("expected issue order %v, got %v", want, gotPaths)
		}
		if res.Value != nil {
			t.Fatalf("failed result must not carry a value")
		}
	})

	t.Run("rejects non-mapping input", func(t *testing.T) {
		res := Combine(schema).Validate(42)
		if !res.Failed() || res.Issues[0].Message != ErrNotMapping.Error() {
			t.Fatalf("expected mapping issue, got %v", res.Issues)
		}
	})

	t.Run("nil validator is an issue", func(t *testing.T) {
		res := Combine(Schema{"X": nil}).Validate(map[string]string{"X": "1"})
		if !res.Failed() || res.Issues[0].Message != ErrNoValidator.Error() {
			t.Fatalf("expected missing validator issue, got %v", res.Issues)
		}
	})

	t.Run("propagates pending field results", func(t *testing.T) {
		async := Func(func(any) Result { return Pending(nil) })
		res := Combine(Schema{"X": async}).Validate(map[string]string{"X": "1"})
		if !res.IsPending() {
			t.Fatalf("expected pending result")
		}
	})
}

func TestIssuesAggregateWithMultierr(t *testing.T) {
	t.Parallel()

	a := Issue{Message: ErrRequired.Error(), Path: []string{"A"}}
	b := Issue{Message: ErrNotBool.Error(), Path: []string{"B"}}

	err := multierr.Combine(a, b)
	if got := multierr.Errors(err); len(got) != 2 {
		t.Fatalf("expected 2 aggregated errors, got %d", len(got))
	}
	var issue Issue
	if !errors.As(err, &issue) {
		t.Fatalf("expected an Issue inside the aggregate")
	}
	if a.Error() != "A: required" {
		t.Fatalf("unexpected issue text %q", a.Error())
	}
}

func TestFailureWithoutIssuesStillFails(t *testing.T) {
	t.Parallel()

	if !Failure().Failed() {
		t.Fatalf("expected Failure() to report failure")
	}
}
