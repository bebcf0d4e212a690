package validation

import (
	"fmt"

	"github.com/vvakame/selconflict/internal/diagnostic"
	"github.com/vvakame/selconflict/internal/ir"
	"github.com/vvakame/selconflict/internal/schema"
)

type selectionConflictValidator struct {
	program *ir.Program
	schema  schema.Provider
	cache   *selectionCache
}

func newSelectionConflictValidator(program *ir.Program, cache *selectionCache) *selectionConflictValidator {
	return &selectionConflictValidator{
		program: program,
		schema:  program.Schema,
		cache:   cache,
	}
}

func (v *selectionConflictValidator) validateOperation(operation *ir.OperationDefinition) diagnostic.List {
	_, errs := v.validateSelections(operation.Selections)
	return errs
}

// validateSelections flattens selections into the fields of one merge scope.
// Every selection is visited even after a failure so independent conflicts are all reported.
func (v *selectionConflictValidator) validateSelections(selections []ir.Selection) (fields, diagnostic.List) {
	var result fields
	errs := validateMap(selections, func(selection ir.Selection) diagnostic.List {
		return v.validateSelection(&result, selection)
	})
	if len(errs) != 0 {
		return nil, errs
	}

	return result, nil
}

func (v *selectionConflictValidator) validateSelection(fields *fields, selection ir.Selection) diagnostic.List {
	switch selection := selection.(type) {
	case *ir.LinkedField:
		if _, errs := v.validateLinkedFieldSelections(selection); len(errs) != 0 {
			return errs
		}
		return v.validateAndInsertFieldSelection(fields, linkedField(selection), false)

	case *ir.ScalarField:
		return v.validateAndInsertFieldSelection(fields, scalarField(selection), false)

	case *ir.Condition:
		newFields, errs := v.validateSelections(selection.Selections)
		if len(errs) != 0 {
			return errs
		}
		return v.validateAndMergeFields(fields, newFields, false)

	case *ir.InlineFragment:
		newFields, errs := v.validateSelections(selection.Selections)
		if len(errs) != 0 {
			return errs
		}
		return v.validateAndMergeFields(fields, newFields, false)

	case *ir.FragmentSpread:
		fragment := v.program.Fragment(selection.Name)
		if fragment == nil {
			// spreads of unknown fragments are rejected before this validation runs
			panic(fmt.Sprintf("fragment '%s' is not defined", selection.Name))
		}
		newFields, errs := v.validateAndCollectFragment(fragment)
		if len(errs) != 0 {
			return errs
		}
		return v.validateAndMergeFields(fields, newFields, false)

	default:
		panic(fmt.Sprintf("unexpected selection type: %T", selection))
	}
}

func (v *selectionConflictValidator) validateAndCollectFragment(fragment *ir.FragmentDefinition) (fields, diagnostic.List) {
	return v.cache.fragment(fragment.Name, func() (fields, diagnostic.List) {
		return v.validateSelections(fragment.Selections)
	})
}

func (v *selectionConflictValidator) validateLinkedFieldSelections(field *ir.LinkedField) (fields, diagnostic.List) {
	return v.cache.linkedField(field, func() (fields, diagnostic.List) {
		return v.validateSelections(field.Selections)
	})
}
