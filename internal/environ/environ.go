package environ

import (
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrEmptyKey is returned when a variable name is empty.
	ErrEmptyKey = errors.New("environment variable name must not be empty")
	// ErrInvalidKey is returned when a variable name contains '=' or NUL.
	ErrInvalidKey = errors.New("environment variable name must not contain '=' or NUL")
)

// Table provides access to a process-wide environment table.
type Table interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
	Unset(key string) error
	Snapshot() map[string]string
}

// OSTable is the Table backed by the real process environment.
type OSTable struct{}

// OS returns the Table backed by the process environment.
func OS() *OSTable {
	return &OSTable{}
}

// Lookup returns the value of key and whether it is set.
func (*OSTable) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Set assigns value to key in the process environment.
func (*OSTable) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return os.Setenv(key, value)
}

// Unset removes key from the process environment.
func (*OSTable) Unset(key string) error {
	return os.Unsetenv(key)
}

// Snapshot copies the process environment into a map.
func (*OSTable) Snapshot() map[string]string {
	entries := os.Environ()
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// MemoryTable keeps an environment table in memory and guards access with a
// RWMutex.
type MemoryTable struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryTable initialises a table with a copy of initial.
func NewMemoryTable(initial map[string]string) *MemoryTable {
	return &MemoryTable{values: clone(initial)}
}

// Lookup returns the value of key and whether it is set.
func (t *MemoryTable) Lookup(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.values[key]
	return v, ok
}

// Set assigns value to key.
func (t *MemoryTable) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	t.mu.Lock()
	t.values[key] = value
	t.mu.Unlock()

	return nil
}

// Unset removes key. Removing a missing key is not an error.
func (t *MemoryTable) Unset(key string) error {
	t.mu.Lock()
	delete(t.values, key)
	t.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the current table.
func (t *MemoryTable) Snapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return clone(t.values)
}

// Keys returns the set variable names in sorted order.
func (t *MemoryTable) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.values))
	for key := range t.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Pairs renders a snapshot as sorted "KEY=value" entries, the form expected
// by os/exec.
func Pairs(snapshot map[string]string) []string {
	out := make([]string, 0, len(snapshot))
	for key, value := range snapshot {
		out = append(out, key+"="+value)
	}
	sort.Strings(out)
	return out
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.ContainsAny(key, "=\x00") {
		return ErrInvalidKey
	}
	return nil
}

func clone(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
