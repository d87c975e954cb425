package envguard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/eugenenazirov/envguard/internal/environ"
	"github.com/eugenenazirov/envguard/internal/validation"
)

// Create builds a guarded Container.
//
// When initial is non-nil it is the only raw source: files are not read and
// the global table is not consulted. Otherwise the global table snapshot is
// merged with the pairs read from opts.Path, file values taking precedence.
//
// The merged mapping is validated in a single synchronous call. On success
// the extended containers and the validated value are combined, shared
// variables are written to the global table, every other combined variable is
// removed from it, and the Container is returned. A validation failure returns
// an *InvalidEnvironmentError and leaves the global table untouched.
func Create(opts Options, initial Raw) (*Container, error) {
	if opts.Schema == nil {
		return nil, validationError([]validation.Issue{{Message: "schema is required"}})
	}
	opts = opts.withDefaults()

	raw := resolveRaw(opts, initial)

	value, err := validate(opts, raw)
	if err != nil {
		return nil, err
	}

	combined := mergeExtends(opts.Extends, value)
	declared := declaredKeys(opts.Schema, opts.Extends, combined)
	shared := make(map[string]struct{}, len(opts.Shared))
	for _, key := range opts.Shared {
		shared[key] = struct{}{}
	}

	if err := project(opts.Table, combined, shared); err != nil {
		return nil, err
	}

	opts.Logger.Debug("environment constructed",
		zap.Int("declared", len(declared)),
		zap.Int("extends", len(opts.Extends)),
		zap.Strings("shared", sortedKeys(shared)),
	)

	return newContainer(combined, declared, shared), nil
}

func resolveRaw(opts Options, initial Raw) map[string]string {
	if initial != nil {
		raw := make(map[string]string, len(initial))
		for k, v := range initial {
			raw[k] = v
		}
		return raw
	}

	raw := opts.Table.Snapshot()
	loaded, err := opts.Loader.Load(opts.Path, opts.Encoding, opts.Quiet)
	if err != nil {
		opts.Logger.Error("failed to load environment files", zap.Error(err))
	}
	for k, v := range loaded {
		raw[k] = v
	}
	return raw
}

func validate(opts Options, raw map[string]string) (map[string]any, error) {
	res := opts.finalValidator().Validate(raw)

	if res.IsPending() {
		opts.Logger.Error("validator returned a pending result")
		return nil, asyncValidationError()
	}

	if res.Failed() {
		for _, issue := range res.Issues {
			opts.Logger.Error("invalid environment variable",
				zap.String("path", strings.Join(issue.Path, ".")),
				zap.String("message", issue.Message),
			)
		}
		return nil, validationError(res.Issues)
	}

	switch v := res.Value.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		issue := validation.Issue{Message: fmt.Sprintf("validator returned %T, expected a mapping", res.Value)}
		opts.Logger.Error("invalid environment variable", zap.String("message", issue.Message))
		return nil, validationError([]validation.Issue{issue})
	}
}

// mergeExtends folds the extended containers in order and then the validated
// value on top, so the current value always wins.
func mergeExtends(extends []*Container, value map[string]any) map[string]any {
	combined := make(map[string]any)
	for _, ext := range extends {
		if ext == nil {
			continue
		}
		for k, v := range ext.values {
			combined[k] = v
		}
	}
	for k, v := range value {
		combined[k] = v
	}
	return combined
}

func declaredKeys(schema validation.Schema, extends []*Container, combined map[string]any) map[string]struct{} {
	declared := make(map[string]struct{}, len(schema)+len(combined))
	for key := range schema {
		declared[key] = struct{}{}
	}
	for _, ext := range extends {
		if ext == nil {
			continue
		}
		for key := range ext.declared {
			declared[key] = struct{}{}
		}
	}
	for key := range combined {
		declared[key] = struct{}{}
	}
	return declared
}

// project mirrors shared variables into the table and removes every other
// combined variable from it. Declared variables that ended up absent are left
// alone. Keys are visited in sorted order so repeated runs touch the table
// identically.
func project(table environ.Table, combined map[string]any, shared map[string]struct{}) error {
	for _, key := range sortedKeys(combined) {
		value := combined[key]
		_, isShared := shared[key]

		if isShared && value != nil {
			if err := table.Set(key, canonicalString(value)); err != nil {
				return fmt.Errorf("share %s: %w", key, err)
			}
			continue
		}

		if _, set := table.Lookup(key); set {
			if err := table.Unset(key); err != nil {
				return fmt.Errorf("hide %s: %w", key, err)
			}
		}
	}
	return nil
}

// canonicalString renders a validated value the way it is written to the
// global table. Lists are joined with ','.
func canonicalString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, canonicalString(item))
		}
		return strings.Join(parts, ",")
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
