// Package application wires a manifest-built environment container into the
// HTTP view and server, keeping the main package focused on CLI parsing and
// orchestration.
package application
