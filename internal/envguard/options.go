package envguard

import (
	"go.uber.org/zap"

	"github.com/eugenenazirov/envguard/internal/environ"
	"github.com/eugenenazirov/envguard/internal/loader"
	"github.com/eugenenazirov/envguard/internal/validation"
)

// Raw is an unvalidated mapping of variable names to values. A missing key is
// an absent value.
type Raw map[string]string

// Loader resolves raw pairs from on-disk sources.
type Loader interface {
	Load(paths []string, encoding string, quiet bool) (map[string]string, error)
}

// Options describes one construction of a Container.
type Options struct {
	// Path lists the files to read when no explicit Raw is supplied. Empty
	// means the loader default.
	Path []string
	// Encoding of the files. Defaults to UTF-8.
	Encoding string
	// Quiet suppresses informational loader output. Errors are still logged.
	Quiet bool
	// Schema maps each variable to its validator. Required.
	Schema validation.Schema
	// Extends lists previously built containers; later entries override
	// earlier ones and the current Schema's values override them all.
	Extends []*Container
	// Shared lists the variables mirrored into the global environment table.
	Shared []string
	// CreateFinalSchema replaces the default per-field combination of Schema
	// with a single validator.
	CreateFinalSchema func(schema validation.Schema) validation.Validator

	// Table is the global environment table. Defaults to the process
	// environment.
	Table environ.Table
	// Loader reads Path. Defaults to loader.New.
	Loader Loader
	// Logger receives loader and validation diagnostics. Defaults to a no-op
	// logger.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Table == nil {
		o.Table = environ.OS()
	}
	if o.Loader == nil {
		o.Loader = loader.New(o.Logger)
	}
	if o.Encoding == "" {
		o.Encoding = loader.DefaultEncoding
	}
	return o
}

func (o Options) finalValidator() validation.Validator {
	if o.CreateFinalSchema != nil {
		if v := o.CreateFinalSchema(o.Schema); v != nil {
			return v
		}
	}
	return validation.Combine(o.Schema)
}
