// Package environ abstracts the process-wide environment table behind the
// Table interface so that code which mirrors variables into it can run
// against the real process environment or an isolated in-memory table.
package environ
