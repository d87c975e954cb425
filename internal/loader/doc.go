// Package loader reads raw environment pairs from dotenv and YAML files in a
// chosen text encoding.
package loader
