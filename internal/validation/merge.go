package validation

import (
	"slices"

	"github.com/vvakame/selconflict/internal/diagnostic"
	"github.com/vvakame/selconflict/internal/schema"
)

const otherFieldLabel = "the other field"

func (v *selectionConflictValidator) validateAndMergeFields(left *fields, right fields, parentFieldsMutuallyExclusive bool) diagnostic.List {
	return validateMap(right, func(f field) diagnostic.List {
		return v.validateAndInsertFieldSelection(left, f, parentFieldsMutuallyExclusive)
	})
}

// validateAndInsertFieldSelection compares f with every field of the same response key in fields
// and appends f when nothing conflicts.
func (v *selectionConflictValidator) validateAndInsertFieldSelection(fields *fields, f field, parentFieldsMutuallyExclusive bool) diagnostic.List {
	key := f.responseKey(v.schema)
	var errs diagnostic.List

	for _, existingField := range *fields {
		if existingField.responseKey(v.schema) != key {
			continue
		}

		// the same node merges trivially; earlier findings are kept
		if f.equal(existingField) {
			return errs
		}

		lDefinition := existingField.definition(v.schema)
		rDefinition := f.definition(v.schema)

		fieldsMutuallyExclusive := parentFieldsMutuallyExclusive ||
			lDefinition.ParentType.Name != rDefinition.ParentType.Name &&
				schema.IsConcreteObject(lDefinition.ParentType) &&
				schema.IsConcreteObject(rDefinition.ParentType)

		switch {
		case existingField.linked != nil && f.linked != nil:
			if !fieldsMutuallyExclusive && lDefinition.Name != rDefinition.Name {
				errs = append(errs, v.ambiguousFieldAlias(key, existingField, f, lDefinition, rDefinition))
			}

			lFields, lErrs := v.validateLinkedFieldSelections(existingField.linked)
			if len(lErrs) != 0 {
				errs = append(errs, lErrs...)
				continue
			}
			rFields, rErrs := v.validateLinkedFieldSelections(f.linked)
			if len(rErrs) != 0 {
				errs = append(errs, rErrs...)
				continue
			}

			// lFields is shared with the cache
			merged := slices.Clone(lFields)
			errs = append(errs, v.validateAndMergeFields(&merged, rFields, fieldsMutuallyExclusive)...)

		case existingField.scalar != nil && f.scalar != nil:
			if !fieldsMutuallyExclusive {
				if lDefinition.Name != rDefinition.Name {
					errs = append(errs, v.ambiguousFieldAlias(key, existingField, f, lDefinition, rDefinition))
				}
			} else if !schema.SameType(lDefinition.Type, rDefinition.Type) {
				errs = append(errs, v.ambiguousFieldType(key, existingField, f, lDefinition, rDefinition))
			}

		default:
			errs = append(errs, v.ambiguousFieldType(key, existingField, f, lDefinition, rDefinition))
		}
	}

	if len(errs) != 0 {
		return errs
	}
	*fields = append(*fields, f)

	return nil
}

func (v *selectionConflictValidator) ambiguousFieldAlias(key string, l, r field, lDefinition, rDefinition *schema.FieldDefinition) *diagnostic.Diagnostic {
	return diagnostic.New(
		diagnostic.AmbiguousFieldAlias{
			ResponseKey: key,
			LeftName:    lDefinition.Name,
			RightName:   rDefinition.Name,
		},
		l.location(),
	).Annotate(otherFieldLabel, r.location())
}

func (v *selectionConflictValidator) ambiguousFieldType(key string, l, r field, lDefinition, rDefinition *schema.FieldDefinition) *diagnostic.Diagnostic {
	return diagnostic.New(
		diagnostic.AmbiguousFieldType{
			ResponseKey:     key,
			LeftName:        lDefinition.Name,
			RightName:       rDefinition.Name,
			LeftTypeString:  v.schema.TypeString(lDefinition.Type),
			RightTypeString: v.schema.TypeString(rDefinition.Type),
		},
		l.location(),
	).Annotate(otherFieldLabel, r.location())
}
