package schema

import (
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/selconflict/internal/utils"
)

// FieldID is an opaque handle of a field definition on one parent type.
type FieldID int32

// FieldDefinition is what the validation passes know about a field.
type FieldDefinition struct {
	Name       string
	ParentType *ast.Definition
	Type       *ast.Type
	Definition *ast.FieldDefinition
}

// Provider is the read-only view of a schema consumed by validations.
// Implementations must be safe for concurrent use.
type Provider interface {
	Field(id FieldID) *FieldDefinition
	TypeString(typ *ast.Type) string
}

var _ Provider = (*Schema)(nil)

var typeNameMetaFieldDef = &ast.FieldDefinition{
	Name: "__typename",
	Type: ast.NonNullNamedType("String", nil),
}

// Schema is a Provider backed by a gqlparser schema.
// The field table is built once in New and never mutated afterwards.
type Schema struct {
	schema *ast.Schema

	fields  []*FieldDefinition
	fieldID map[fieldKey]FieldID
}

type fieldKey struct {
	parent string
	name   string
}

func Load(sources ...*ast.Source) (*Schema, error) {
	s, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}

	return New(s), nil
}

func New(s *ast.Schema) *Schema {
	result := &Schema{
		schema:  s,
		fieldID: make(map[fieldKey]FieldID),
	}

	typeNames := make([]string, 0, len(s.Types))
	for name := range s.Types {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		def := s.Types[name]
		if !utils.IsCompositeType(def) {
			continue
		}
		for _, fieldDef := range def.Fields {
			result.addField(def, fieldDef)
		}
		result.addField(def, typeNameMetaFieldDef)
	}

	return result
}

func (s *Schema) addField(parent *ast.Definition, fieldDef *ast.FieldDefinition) {
	key := fieldKey{parent: parent.Name, name: fieldDef.Name}
	if _, ok := s.fieldID[key]; ok {
		return
	}

	s.fieldID[key] = FieldID(len(s.fields))
	s.fields = append(s.fields, &FieldDefinition{
		Name:       fieldDef.Name,
		ParentType: parent,
		Type:       fieldDef.Type,
		Definition: fieldDef,
	})
}

func (s *Schema) AST() *ast.Schema {
	return s.schema
}

func (s *Schema) Field(id FieldID) *FieldDefinition {
	if id < 0 || int(id) >= len(s.fields) {
		panic(fmt.Sprintf("unknown field id: %d", id))
	}

	return s.fields[id]
}

func (s *Schema) LookupField(parent *ast.Definition, name string) (FieldID, bool) {
	if parent == nil {
		return 0, false
	}
	id, ok := s.fieldID[fieldKey{parent: parent.Name, name: name}]
	return id, ok
}

func (s *Schema) Type(name string) *ast.Definition {
	return s.schema.Types[name]
}

func (s *Schema) TypeString(typ *ast.Type) string {
	if typ == nil {
		return ""
	}

	return typ.String()
}

func (s *Schema) RootType(operation ast.Operation) (*ast.Definition, error) {
	var def *ast.Definition
	switch operation {
	case ast.Query:
		def = s.schema.Query
	case ast.Mutation:
		def = s.schema.Mutation
	case ast.Subscription:
		def = s.schema.Subscription
	default:
		return nil, fmt.Errorf("unexpected operation: %s", operation)
	}
	if def == nil {
		return nil, fmt.Errorf("schema does not support %s operations", operation)
	}

	return def, nil
}

// SameType compares two type references structurally, ignoring positions.
func SameType(a, b *ast.Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.NonNull != b.NonNull || a.NamedType != b.NamedType {
		return false
	}

	return SameType(a.Elem, b.Elem)
}

// IsConcreteObject reports whether def is an object type, as opposed to an abstract one.
func IsConcreteObject(def *ast.Definition) bool {
	return def != nil && def.Kind == ast.Object
}
