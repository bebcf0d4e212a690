package utils

import "github.com/vektah/gqlparser/v2/ast"

func IsTypeDefSubTypeOf(schema *ast.Schema, maybeSubType, superType *ast.Definition) bool {
	// NOTE *ast.Definition doesn't have nullable and list information. just type.

	// Equivalent type is a valid subtype
	if maybeSubType == superType {
		return true
	}

	// If superType type is an abstract type, check if it is super type of maybeSubType.
	// Otherwise, the child type is not a valid subtype of the parent type.
	if !IsAbstractType(superType) {
		return false
	}
	if maybeSubType.Kind != ast.Interface && maybeSubType.Kind != ast.Object {
		return false
	}
	for _, def := range schema.GetPossibleTypes(superType) {
		if def == maybeSubType {
			return true
		}
	}
	return false
}

// DoTypesOverlap reports whether some concrete object type could be both typeA and typeB.
func DoTypesOverlap(schema *ast.Schema, typeA, typeB *ast.Definition) bool {
	if typeA == typeB {
		return true
	}

	if IsAbstractType(typeA) {
		if IsAbstractType(typeB) {
			for _, possible := range schema.GetPossibleTypes(typeA) {
				if IsTypeDefSubTypeOf(schema, possible, typeB) {
					return true
				}
			}
			return false
		}
		return IsTypeDefSubTypeOf(schema, typeB, typeA)
	}

	if IsAbstractType(typeB) {
		return IsTypeDefSubTypeOf(schema, typeA, typeB)
	}

	return false
}

func IsAbstractType(def *ast.Definition) bool {
	switch def.Kind {
	case ast.Interface, ast.Union:
		return true
	default:
		return false
	}
}

func IsCompositeType(def *ast.Definition) bool {
	switch def.Kind {
	case ast.Object, ast.Interface, ast.Union:
		return true
	default:
		return false
	}
}
