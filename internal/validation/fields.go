package validation

import (
	"github.com/vvakame/selconflict/internal/diagnostic"
	"github.com/vvakame/selconflict/internal/ir"
	"github.com/vvakame/selconflict/internal/schema"
)

// field is a flattened field: exactly one of linked and scalar is set.
type field struct {
	linked *ir.LinkedField
	scalar *ir.ScalarField
}

// fields is the ordered list of fields visible in one selection scope.
// Lists stored in a cache are shared and must never be appended to in place.
type fields []field

func linkedField(f *ir.LinkedField) field {
	return field{linked: f}
}

func scalarField(f *ir.ScalarField) field {
	return field{scalar: f}
}

func (f field) responseKey(s schema.Provider) string {
	if f.linked != nil {
		return f.linked.ResponseKey(s)
	}
	return f.scalar.ResponseKey(s)
}

func (f field) definition(s schema.Provider) *schema.FieldDefinition {
	if f.linked != nil {
		return s.Field(f.linked.Definition)
	}
	return s.Field(f.scalar.Definition)
}

func (f field) location() ir.Location {
	if f.linked != nil {
		return f.linked.Location
	}
	return f.scalar.Location
}

// equal is structural equality of the underlying nodes, not schema-aware compatibility.
func (f field) equal(other field) bool {
	switch {
	case f.linked != nil && other.linked != nil:
		return f.linked.Equal(other.linked)
	case f.scalar != nil && other.scalar != nil:
		return f.scalar.Equal(other.scalar)
	default:
		return false
	}
}

// validateMap runs fn over every item and concatenates all the diagnostics.
func validateMap[T any](items []T, fn func(item T) diagnostic.List) diagnostic.List {
	var errs diagnostic.List
	for _, item := range items {
		errs = append(errs, fn(item)...)
	}

	return errs
}
