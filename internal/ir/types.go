package ir

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/selconflict/internal/schema"
)

// Location points into a source document.
type Location struct {
	Source string
	Line   int
	Column int
}

func LocationFromPosition(pos *ast.Position) Location {
	if pos == nil {
		return Location{}
	}
	var source string
	if pos.Src != nil {
		source = pos.Src.Name
	}

	return Location{
		Source: source,
		Line:   pos.Line,
		Column: pos.Column,
	}
}

func (loc Location) String() string {
	source := loc.Source
	if source == "" {
		source = "input"
	}

	return fmt.Sprintf("%s:%d:%d", source, loc.Line, loc.Column)
}

// Selection is one of *LinkedField, *ScalarField, *Condition, *InlineFragment or *FragmentSpread.
type Selection interface {
	isSelection()
}

var _ Selection = (*LinkedField)(nil)
var _ Selection = (*ScalarField)(nil)
var _ Selection = (*Condition)(nil)
var _ Selection = (*InlineFragment)(nil)
var _ Selection = (*FragmentSpread)(nil)

func (*LinkedField) isSelection()    {}
func (*ScalarField) isSelection()    {}
func (*Condition) isSelection()      {}
func (*InlineFragment) isSelection() {}
func (*FragmentSpread) isSelection() {}

type LinkedField struct {
	Alias      string
	Definition schema.FieldID
	Location   Location
	Arguments  ast.ArgumentList
	Directives ast.DirectiveList
	Selections []Selection
}

type ScalarField struct {
	Alias      string
	Definition schema.FieldID
	Location   Location
	Arguments  ast.ArgumentList
	Directives ast.DirectiveList
}

// ConditionValue is either a variable reference or a constant.
type ConditionValue struct {
	Variable string
	Constant bool
}

func (v ConditionValue) String() string {
	if v.Variable != "" {
		return "$" + v.Variable
	}
	if v.Constant {
		return "true"
	}
	return "false"
}

// Condition guards Selections with @include (PassingValue true) or @skip (PassingValue false).
type Condition struct {
	Value        ConditionValue
	PassingValue bool
	Selections   []Selection
}

type InlineFragment struct {
	// TypeCondition is nil when the fragment doesn't narrow the type.
	TypeCondition *ast.Definition
	Directives    ast.DirectiveList
	Selections    []Selection
}

type FragmentSpread struct {
	Name       string
	Location   Location
	Directives ast.DirectiveList
}

type FragmentDefinition struct {
	Name          string
	Location      Location
	TypeCondition *ast.Definition
	Selections    []Selection
}

type OperationDefinition struct {
	Kind       ast.Operation
	Name       string
	Location   Location
	Type       *ast.Definition
	Selections []Selection
}

// Program is an immutable set of operations and fragments bound to one schema.
type Program struct {
	Schema     schema.Provider
	Operations []*OperationDefinition
	Fragments  []*FragmentDefinition

	fragmentIndex map[string]*FragmentDefinition
}

func NewProgram(s schema.Provider, operations []*OperationDefinition, fragments []*FragmentDefinition) *Program {
	program := &Program{
		Schema:        s,
		Operations:    operations,
		Fragments:     fragments,
		fragmentIndex: make(map[string]*FragmentDefinition, len(fragments)),
	}
	for _, fragment := range fragments {
		program.fragmentIndex[fragment.Name] = fragment
	}

	return program
}

func (p *Program) Fragment(name string) *FragmentDefinition {
	return p.fragmentIndex[name]
}

// ResponseKey returns the alias if any, otherwise the schema name of the field.
func (f *LinkedField) ResponseKey(s schema.Provider) string {
	return responseKey(s, f.Alias, f.Definition)
}

func (f *ScalarField) ResponseKey(s schema.Provider) string {
	return responseKey(s, f.Alias, f.Definition)
}

func responseKey(s schema.Provider, alias string, id schema.FieldID) string {
	if alias != "" {
		return alias
	}

	return s.Field(id).Name
}
