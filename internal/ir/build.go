package ir

import (
	"context"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vvakame/selconflict/internal/log"
	"github.com/vvakame/selconflict/internal/schema"
	"github.com/vvakame/selconflict/internal/utils"
)

// Parse parses every source as an executable document and builds one Program from all of them.
// The documents are not run through gqlparser's validator; this is the job of the validation passes.
func Parse(ctx context.Context, s *schema.Schema, sources ...*ast.Source) (*Program, error) {
	doc := &ast.QueryDocument{}
	for _, source := range sources {
		d, err := parser.ParseQuery(source)
		if err != nil {
			return nil, err
		}
		doc.Operations = append(doc.Operations, d.Operations...)
		doc.Fragments = append(doc.Fragments, d.Fragments...)
	}

	return Build(ctx, s, doc)
}

// Build resolves every field of doc against s and lowers doc into a Program.
// All resolution errors of the document are reported together.
func Build(ctx context.Context, s *schema.Schema, doc *ast.QueryDocument) (*Program, error) {
	logger := log.FromContext(ctx)

	b := &builder{
		schema:   s,
		document: doc,
	}

	operations := make([]*OperationDefinition, 0, len(doc.Operations))
	for _, operation := range doc.Operations {
		op := b.buildOperation(operation)
		if op != nil {
			operations = append(operations, op)
		}
	}

	seen := make(map[string]struct{}, len(doc.Fragments))
	fragments := make([]*FragmentDefinition, 0, len(doc.Fragments))
	for _, fragment := range doc.Fragments {
		if _, ok := seen[fragment.Name]; ok {
			b.errorf(fragment.Position, "there can be only one fragment named '%s'", fragment.Name)
			continue
		}
		seen[fragment.Name] = struct{}{}

		frag := b.buildFragment(fragment)
		if frag != nil {
			fragments = append(fragments, frag)
		}
	}

	b.checkFragmentCycles()

	if len(b.errs) != 0 {
		return nil, b.errs
	}

	logger.V(log.Debug).Info(
		"program built",
		"operations", len(operations),
		"fragments", len(fragments),
	)

	return NewProgram(s, operations, fragments), nil
}

type builder struct {
	schema   *schema.Schema
	document *ast.QueryDocument

	errs gqlerror.List
}

func (b *builder) errorf(pos *ast.Position, format string, args ...interface{}) {
	var gErr *gqlerror.Error
	if pos == nil || pos.Src == nil {
		gErr = gqlerror.Errorf(format, args...)
	} else {
		gErr = gqlerror.ErrorPosf(pos, format, args...)
	}
	gErr.Rule = "BuildIR"
	b.errs = append(b.errs, gErr)
}

func (b *builder) buildOperation(operation *ast.OperationDefinition) *OperationDefinition {
	rootType, err := b.schema.RootType(operation.Operation)
	if err != nil {
		b.errorf(operation.Position, "%s", err.Error())
		return nil
	}

	return &OperationDefinition{
		Kind:       operation.Operation,
		Name:       operation.Name,
		Location:   LocationFromPosition(operation.Position),
		Type:       rootType,
		Selections: b.buildSelections(rootType, operation.SelectionSet),
	}
}

func (b *builder) buildFragment(fragment *ast.FragmentDefinition) *FragmentDefinition {
	typeCondition := b.schema.Type(fragment.TypeCondition)
	if typeCondition == nil {
		b.errorf(fragment.Position, "unknown type '%s' on fragment '%s'", fragment.TypeCondition, fragment.Name)
		return nil
	}
	if !utils.IsCompositeType(typeCondition) {
		b.errorf(fragment.Position, "fragment '%s' cannot condition on non composite type '%s'", fragment.Name, typeCondition.Name)
		return nil
	}

	return &FragmentDefinition{
		Name:          fragment.Name,
		Location:      LocationFromPosition(fragment.Position),
		TypeCondition: typeCondition,
		Selections:    b.buildSelections(typeCondition, fragment.SelectionSet),
	}
}

func (b *builder) buildSelections(parentType *ast.Definition, selectionSet ast.SelectionSet) []Selection {
	var selections []Selection
	for _, selection := range selectionSet {
		switch selection := selection.(type) {
		case *ast.Field:
			field := b.buildField(parentType, selection)
			if field == nil {
				continue
			}
			selections = append(selections, b.wrapConditions(selection.Directives, field)...)

		case *ast.InlineFragment:
			typeCondition := parentType
			if selection.TypeCondition != "" {
				typeCondition = b.schema.Type(selection.TypeCondition)
				if typeCondition == nil {
					b.errorf(selection.Position, "unknown type '%s'", selection.TypeCondition)
					continue
				}
				if !b.canSpread(selection.Position, parentType, typeCondition, "") {
					continue
				}
			}
			inlineFragment := &InlineFragment{
				Directives: withoutConditions(selection.Directives),
				Selections: b.buildSelections(typeCondition, selection.SelectionSet),
			}
			if selection.TypeCondition != "" {
				inlineFragment.TypeCondition = typeCondition
			}
			selections = append(selections, b.wrapConditions(selection.Directives, inlineFragment)...)

		case *ast.FragmentSpread:
			fragment := b.document.Fragments.ForName(selection.Name)
			if fragment == nil {
				b.errorf(selection.Position, "unknown fragment '%s'", selection.Name)
				continue
			}
			if typeCondition := b.schema.Type(fragment.TypeCondition); typeCondition != nil {
				if !b.canSpread(selection.Position, parentType, typeCondition, selection.Name) {
					continue
				}
			}
			spread := &FragmentSpread{
				Name:       selection.Name,
				Location:   LocationFromPosition(selection.Position),
				Directives: withoutConditions(selection.Directives),
			}
			selections = append(selections, b.wrapConditions(selection.Directives, spread)...)

		default:
			b.errorf(selection.GetPosition(), "unexpected selection type: %T", selection)
		}
	}

	return selections
}

func (b *builder) buildField(parentType *ast.Definition, field *ast.Field) Selection {
	fieldID, ok := b.schema.LookupField(parentType, field.Name)
	if !ok {
		b.errorf(field.Position, "cannot query field '%s' on type '%s'", field.Name, parentType.Name)
		return nil
	}

	fieldDef := b.schema.Field(fieldID)
	returnType := b.schema.Type(fieldDef.Type.Name())
	if returnType == nil {
		b.errorf(field.Position, "unknown type '%s'", fieldDef.Type.Name())
		return nil
	}

	alias := field.Alias
	if alias == field.Name {
		alias = ""
	}

	if utils.IsCompositeType(returnType) {
		if len(field.SelectionSet) == 0 {
			b.errorf(field.Position, "field '%s' of type '%s' must have a selection of subfields", field.Name, fieldDef.Type.String())
			return nil
		}
		return &LinkedField{
			Alias:      alias,
			Definition: fieldID,
			Location:   LocationFromPosition(field.Position),
			Arguments:  field.Arguments,
			Directives: withoutConditions(field.Directives),
			Selections: b.buildSelections(returnType, field.SelectionSet),
		}
	}

	if len(field.SelectionSet) != 0 {
		b.errorf(field.Position, "field '%s' must not have a selection since type '%s' has no subfields", field.Name, fieldDef.Type.String())
		return nil
	}

	return &ScalarField{
		Alias:      alias,
		Definition: fieldID,
		Location:   LocationFromPosition(field.Position),
		Arguments:  field.Arguments,
		Directives: withoutConditions(field.Directives),
	}
}

func (b *builder) canSpread(pos *ast.Position, parentType, typeCondition *ast.Definition, fragmentName string) bool {
	if utils.DoTypesOverlap(b.schema.AST(), parentType, typeCondition) {
		return true
	}
	if fragmentName != "" {
		b.errorf(pos, "fragment '%s' cannot be spread here as objects of type '%s' can never be of type '%s'", fragmentName, parentType.Name, typeCondition.Name)
	} else {
		b.errorf(pos, "fragment cannot be spread here as objects of type '%s' can never be of type '%s'", parentType.Name, typeCondition.Name)
	}
	return false
}

// wrapConditions lifts @include and @skip into Condition nodes, @skip being the outermost one.
func (b *builder) wrapConditions(directives ast.DirectiveList, selection Selection) []Selection {
	selections := []Selection{selection}
	for _, name := range []string{"include", "skip"} {
		directive := directives.ForName(name)
		if directive == nil {
			continue
		}
		value, ok := b.conditionValue(directive)
		if !ok {
			continue
		}
		selections = []Selection{
			&Condition{
				Value:        value,
				PassingValue: name == "include",
				Selections:   selections,
			},
		}
	}

	return selections
}

func (b *builder) conditionValue(directive *ast.Directive) (ConditionValue, bool) {
	arg := directive.Arguments.ForName("if")
	if arg == nil || arg.Value == nil {
		b.errorf(directive.Position, "directive '@%s' argument 'if' is required", directive.Name)
		return ConditionValue{}, false
	}

	switch arg.Value.Kind {
	case ast.Variable:
		return ConditionValue{Variable: arg.Value.Raw}, true
	case ast.BooleanValue:
		return ConditionValue{Constant: arg.Value.Raw == "true"}, true
	default:
		b.errorf(arg.Value.Position, "directive '@%s' argument 'if' must be a Boolean", directive.Name)
		return ConditionValue{}, false
	}
}

func withoutConditions(directives ast.DirectiveList) ast.DirectiveList {
	var result ast.DirectiveList
	for _, directive := range directives {
		switch directive.Name {
		case "include", "skip":
			continue
		}
		result = append(result, directive)
	}

	return result
}

// checkFragmentCycles reports every fragment that spreads itself, directly or through other fragments.
func (b *builder) checkFragmentCycles() {
	d := &fragmentCycleDetector{
		builder:     b,
		visited:     make(map[string]bool),
		pathIndexOf: make(map[string]int),
	}
	for _, fragment := range b.document.Fragments {
		d.detect(fragment)
	}
}

type fragmentCycleDetector struct {
	builder *builder

	visited     map[string]bool
	spreadPath  []*ast.FragmentSpread
	pathIndexOf map[string]int
}

func (d *fragmentCycleDetector) detect(fragment *ast.FragmentDefinition) {
	if d.visited[fragment.Name] {
		return
	}
	d.visited[fragment.Name] = true

	spreads := collectFragmentSpreads(fragment.SelectionSet, nil)
	if len(spreads) == 0 {
		return
	}

	d.pathIndexOf[fragment.Name] = len(d.spreadPath)
	for _, spread := range spreads {
		cycleIndex, inPath := d.pathIndexOf[spread.Name]
		d.spreadPath = append(d.spreadPath, spread)
		if !inPath {
			if spreadFragment := d.builder.document.Fragments.ForName(spread.Name); spreadFragment != nil {
				d.detect(spreadFragment)
			}
		} else {
			cyclePath := d.spreadPath[cycleIndex:]
			via := make([]string, 0, len(cyclePath)-1)
			for _, s := range cyclePath[:len(cyclePath)-1] {
				via = append(via, fmt.Sprintf("'%s'", s.Name))
			}
			if len(via) == 0 {
				d.builder.errorf(cyclePath[0].Position, "cannot spread fragment '%s' within itself", spread.Name)
			} else {
				d.builder.errorf(cyclePath[0].Position, "cannot spread fragment '%s' within itself via %s", spread.Name, strings.Join(via, ", "))
			}
		}
		d.spreadPath = d.spreadPath[:len(d.spreadPath)-1]
	}
	delete(d.pathIndexOf, fragment.Name)
}

// collectFragmentSpreads lists the spreads of selectionSet without entering the spread fragments.
func collectFragmentSpreads(selectionSet ast.SelectionSet, spreads []*ast.FragmentSpread) []*ast.FragmentSpread {
	for _, selection := range selectionSet {
		switch selection := selection.(type) {
		case *ast.Field:
			spreads = collectFragmentSpreads(selection.SelectionSet, spreads)
		case *ast.InlineFragment:
			spreads = collectFragmentSpreads(selection.SelectionSet, spreads)
		case *ast.FragmentSpread:
			spreads = append(spreads, selection)
		}
	}

	return spreads
}
