// Package validation defines the synchronous validation contract used to
// check and coerce raw environment values, the default combiner that applies
// a per-variable Schema, and a small set of field validators (strings,
// numbers, booleans, durations, URLs, ports, enums and lists).
package validation
