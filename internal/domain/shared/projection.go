package shared

import (
	"fmt"
	"sort"
)

// Fields is a loosely typed ledger payload keyed by ledger field name.
type Fields map[string]any

// FieldSet is a whitelist of ledger field names.
type FieldSet map[string]struct{}

// NewFieldSet builds a whitelist from names
func NewFieldSet(names ...string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

// Union returns a new set holding the names of every given set
func Union(sets ...FieldSet) FieldSet {
	out := FieldSet{}
	for _, s := range sets {
		for n := range s {
			out[n] = struct{}{}
		}
	}
	return out
}

// Has reports whether name is whitelisted
func (fs FieldSet) Has(name string) bool {
	_, ok := fs[name]
	return ok
}

// Names returns the whitelisted names sorted, used as the search_read field list
func (fs FieldSet) Names() []string {
	names := make([]string, 0, len(fs))
	for n := range fs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Project copies the keys of input that are whitelisted and hold a non-nil
// value. Unknown keys are dropped silently. The input is never modified.
func Project(input Fields, allowed FieldSet) Fields {
	out := make(Fields, len(allowed))
	for k, v := range input {
		if v == nil || !allowed.Has(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Get returns the value for key and whether it was set to a non-nil value
func (f Fields) Get(key string) (any, bool) {
	v, ok := f[key]
	return v, ok && v != nil
}

// ID reads an optional id field. present is false when the key is absent;
// a present but unusable value yields an INVALID_INPUT error.
func (f Fields) ID(key string) (id int64, present bool, err error) {
	v, ok := f.Get(key)
	if !ok {
		return 0, false, nil
	}
	id, valid := ParseID(v)
	if !valid {
		return 0, true, InvalidInput("%s %s is not a valid id", key, fmt.Sprint(v))
	}
	return id, true, nil
}

// Refs maps reference fields to the entity each one names
type Refs map[string]string

// Check rejects the first present reference that cannot name a record with
// NOT_FOUND. Keys are checked in name order.
func (r Refs) Check(f Fields) error {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, present, err := f.ID(k); present && err != nil {
			return NotFound(r[k], 0)
		}
	}
	return nil
}
