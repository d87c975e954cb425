// Package manifest describes an environment schema in YAML (variable types,
// requirements, defaults, shared flags and extended manifests) and builds
// guarded containers from it.
package manifest
