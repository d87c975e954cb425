package envguard

import (
	"time"

	"github.com/spf13/cast"
)

// Container is a read-only view over a validated environment. Reads of
// variables outside its declared set fail, and every Set or Delete fails.
//
// A Container never changes after Create returns it and is safe for
// concurrent reads.
type Container struct {
	values   map[string]any
	declared map[string]struct{}
	shared   map[string]struct{}
}

func newContainer(values map[string]any, declared, shared map[string]struct{}) *Container {
	return &Container{
		values:   values,
		declared: declared,
		shared:   shared,
	}
}

// Get returns the value of key. Declared variables that were absent and
// optional read as nil.
func (c *Container) Get(key string) (any, error) {
	if _, ok := c.declared[key]; !ok {
		return nil, undefinedKeyError(key)
	}
	return c.values[key], nil
}

// String returns the value of key in the form it is written to the global
// table. An absent optional value reads as "".
func (c *Container) String(key string) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return canonicalString(v), nil
}

// Int returns the value of key converted to an int.
func (c *Container) Int(key string) (int, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, conversionError(key, "int", err)
	}
	return i, nil
}

// Float returns the value of key converted to a float64.
func (c *Container) Float(key string) (float64, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, conversionError(key, "float", err)
	}
	return f, nil
}

// Bool returns the value of key converted to a bool.
func (c *Container) Bool(key string) (bool, error) {
	v, err := c.Get(key)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, conversionError(key, "bool", err)
	}
	return b, nil
}

// Duration returns the value of key converted to a time.Duration.
func (c *Container) Duration(key string) (time.Duration, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return 0, conversionError(key, "duration", err)
	}
	return d, nil
}

// Set always fails: environment variables are immutable.
func (c *Container) Set(key string, _ any) error {
	return immutableError("set", key)
}

// Delete always fails: environment variables are immutable.
func (c *Container) Delete(key string) error {
	return immutableError("delete", key)
}

// Has reports whether key is declared.
func (c *Container) Has(key string) bool {
	_, ok := c.declared[key]
	return ok
}

// Keys returns the declared variables in sorted order.
func (c *Container) Keys() []string {
	return sortedKeys(c.declared)
}

// IsShared reports whether key was mirrored into the global table.
func (c *Container) IsShared(key string) bool {
	if _, ok := c.shared[key]; !ok {
		return false
	}
	v, present := c.values[key]
	return present && v != nil
}

// Values returns a copy of the present values.
func (c *Container) Values() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
