// Package config loads the envguard tool's runtime configuration from
// multiple sources (YAML files, ENVGUARD_* environment variables, CLI flags)
// with precedence: CLI flags > YAML config > Environment variables > Defaults.
// It does not describe the guarded variables themselves; see the manifest
// package for that.
package config
