package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/envguard/internal/envguard"
	"github.com/eugenenazirov/envguard/internal/validation"
)

var (
	// ErrUnknownType is returned for a variable type the manifest does not know.
	ErrUnknownType = errors.New("unknown variable type")
	// ErrMissingValues is returned for an enum variable without values.
	ErrMissingValues = errors.New("enum variable needs at least one value")
	// ErrCycle is returned when manifests extend each other in a loop.
	ErrCycle = errors.New("manifest extends itself")
)

// Document is the YAML form of a manifest.
type Document struct {
	Extends   []string            `yaml:"extends"`
	Shared    []string            `yaml:"shared"`
	Variables map[string]Variable `yaml:"variables"`
}

// Variable declares one environment variable.
type Variable struct {
	Type        string   `yaml:"type"`
	Required    *bool    `yaml:"required"`
	Default     *string  `yaml:"default"`
	Values      []string `yaml:"values"`
	Separator   string   `yaml:"separator"`
	Shared      bool     `yaml:"shared"`
	Description string   `yaml:"description"`
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &doc, nil
}

// LoadFile reads and decodes the manifest at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Schema builds the validation schema described by the document.
func (d *Document) Schema() (validation.Schema, error) {
	schema := make(validation.Schema, len(d.Variables))
	for _, name := range d.names() {
		v, err := d.Variables[name].validator()
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		schema[name] = v
	}
	return schema, nil
}

// SharedKeys returns the union of the top-level shared list and the variables
// flagged shared, sorted.
func (d *Document) SharedKeys() []string {
	set := make(map[string]struct{}, len(d.Shared))
	for _, key := range d.Shared {
		set[key] = struct{}{}
	}
	for name, v := range d.Variables {
		if v.Shared {
			set[name] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (d *Document) names() []string {
	names := make([]string, 0, len(d.Variables))
	for name := range d.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v Variable) validator() (validation.Validator, error) {
	var base validation.Validator
	switch strings.ToLower(strings.TrimSpace(v.Type)) {
	case "", "string":
		base = validation.String()
	case "nonempty":
		base = validation.NonEmpty()
	case "int", "integer":
		base = validation.Int()
	case "float", "number":
		base = validation.Float()
	case "bool", "boolean":
		base = validation.Bool()
	case "duration":
		base = validation.Duration()
	case "url":
		base = validation.URL()
	case "port":
		base = validation.Port()
	case "enum":
		if len(v.Values) == 0 {
			return nil, ErrMissingValues
		}
		base = validation.OneOf(v.Values...)
	case "list":
		base = validation.List(v.Separator)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, v.Type)
	}

	switch {
	case v.Default != nil:
		return validation.Default(base, *v.Default), nil
	case v.Required != nil && !*v.Required:
		return validation.Optional(base), nil
	default:
		return base, nil
	}
}

// Build creates the container described by the manifest at path. Extended
// manifests are resolved relative to the manifest that names them, built
// first in listed order, and passed as opts.Extends. Schema, Shared and
// Extends in opts are replaced; every other option applies to each build.
func Build(path string, opts envguard.Options, initial envguard.Raw) (*envguard.Container, error) {
	return build(path, opts, initial, nil)
}

func build(path string, opts envguard.Options, initial envguard.Raw, stack []string) (*envguard.Container, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}
	if slices.Contains(stack, abs) {
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(stack, abs), " -> "))
	}

	doc, err := LoadFile(abs)
	if err != nil {
		return nil, err
	}
	schema, err := doc.Schema()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	next := append(slices.Clone(stack), abs)
	extends := make([]*envguard.Container, 0, len(doc.Extends))
	for _, ext := range doc.Extends {
		if !filepath.IsAbs(ext) {
			ext = filepath.Join(filepath.Dir(abs), ext)
		}
		c, err := build(ext, opts, initial, next)
		if err != nil {
			return nil, err
		}
		extends = append(extends, c)
	}

	opts.Schema = schema
	opts.Shared = doc.SharedKeys()
	opts.Extends = extends
	return envguard.Create(opts, initial)
}
