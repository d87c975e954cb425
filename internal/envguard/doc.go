// Package envguard builds a private, validated and immutable view over a
// process's environment variables while exposing only an approved subset of
// them to the process-wide environment table.
//
// Create runs a fixed, synchronous pipeline:
//
//  1. resolve the raw mapping (explicit mapping, or global table + files);
//  2. validate it in one call against the schema;
//  3. fold extended containers and the validated value, the latter winning;
//  4. write shared variables to the global table and remove the rest;
//  5. wrap the result in a Container.
//
// No locking is done around the global table. Callers constructing
// containers from several goroutines must serialize those calls.
package envguard
