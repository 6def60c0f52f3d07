package fields

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidDefinition is returned for definitions that fail validation.
	ErrInvalidDefinition = errors.New("invalid field definition")
	// ErrDuplicateField is returned when two definitions share a name.
	ErrDuplicateField = errors.New("duplicate field definition")
)

// ThumbnailField is the one binary field that stays visible.
const ThumbnailField = "thumbnail"

// Lookup answers field metadata questions during validation and editing.
// Implementations must be safe for concurrent reads.
type Lookup interface {
	// Type returns the field's attribute type; false if the field is unknown.
	Type(field string) (AttributeType, bool)
	// Enum returns the allowed values; false if the field is not an enum.
	Enum(field string) ([]string, bool)
	IsMulti(field string) bool
	IsReadOnly(field string) bool
	// Alias returns the display name, or field itself when it has none.
	Alias(field string) string
}

// Registry is an immutable set of field definitions. It implements Lookup.
type Registry struct {
	defs map[string]Definition
}

var _ Lookup = (*Registry)(nil)

// NewRegistry validates defs and builds a registry from them.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.defs[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, d.Name)
		}
		d.Enum = slices.Clone(d.Enum)
		r.defs[d.Name] = d
	}
	return r, nil
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// Definition returns the definition of field.
func (r *Registry) Definition(field string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	d, ok := r.defs[field]
	if ok {
		d.Enum = slices.Clone(d.Enum)
	}
	return d, ok
}

// Definitions returns all definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	if r == nil {
		return nil
	}
	out := make([]Definition, 0, len(r.defs))
	for _, name := range slices.Sorted(maps.Keys(r.defs)) {
		d := r.defs[name]
		d.Enum = slices.Clone(d.Enum)
		out = append(out, d)
	}
	return out
}

// Type implements Lookup.
func (r *Registry) Type(field string) (AttributeType, bool) {
	d, ok := r.Definition(field)
	return d.Type, ok
}

// Enum implements Lookup.
func (r *Registry) Enum(field string) ([]string, bool) {
	d, ok := r.Definition(field)
	if !ok || len(d.Enum) == 0 {
		return nil, false
	}
	return d.Enum, true
}

// IsMulti implements Lookup.
func (r *Registry) IsMulti(field string) bool {
	d, _ := r.Definition(field)
	return d.Multivalued
}

// IsReadOnly implements Lookup.
func (r *Registry) IsReadOnly(field string) bool {
	d, _ := r.Definition(field)
	return d.ReadOnly
}

// Alias implements Lookup.
func (r *Registry) Alias(field string) string {
	d, ok := r.Definition(field)
	if !ok {
		return field
	}
	return d.DisplayName()
}

// IsHidden reports whether field should be left out of field pickers:
// unknown fields, fields marked hidden, and binary or XML fields other
// than the thumbnail.
func (r *Registry) IsHidden(field string) bool {
	d, ok := r.Definition(field)
	if !ok || d.Hidden {
		return true
	}
	return d.Type.IsHidden() && field != ThumbnailField
}

// Visible returns the definitions that are not hidden, sorted by name.
func (r *Registry) Visible() []Definition {
	var out []Definition
	for _, d := range r.Definitions() {
		if !r.IsHidden(d.Name) {
			out = append(out, d)
		}
	}
	return out
}
