package ir

import "github.com/vektah/gqlparser/v2/ast"

// Equal reports deep value equality of two linked fields, children included.
func (f *LinkedField) Equal(other *LinkedField) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}

	return f.Alias == other.Alias &&
		f.Definition == other.Definition &&
		f.Location == other.Location &&
		equalArguments(f.Arguments, other.Arguments) &&
		equalDirectives(f.Directives, other.Directives) &&
		equalSelections(f.Selections, other.Selections)
}

func (f *ScalarField) Equal(other *ScalarField) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}

	return f.Alias == other.Alias &&
		f.Definition == other.Definition &&
		f.Location == other.Location &&
		equalArguments(f.Arguments, other.Arguments) &&
		equalDirectives(f.Directives, other.Directives)
}

func equalSelections(a, b []Selection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalSelection(a[i], b[i]) {
			return false
		}
	}

	return true
}

func equalSelection(a, b Selection) bool {
	switch a := a.(type) {
	case *LinkedField:
		b, ok := b.(*LinkedField)
		return ok && a.Equal(b)
	case *ScalarField:
		b, ok := b.(*ScalarField)
		return ok && a.Equal(b)
	case *Condition:
		b, ok := b.(*Condition)
		if !ok {
			return false
		}
		return a.Value == b.Value &&
			a.PassingValue == b.PassingValue &&
			equalSelections(a.Selections, b.Selections)
	case *InlineFragment:
		b, ok := b.(*InlineFragment)
		if !ok {
			return false
		}
		return a.TypeCondition == b.TypeCondition &&
			equalDirectives(a.Directives, b.Directives) &&
			equalSelections(a.Selections, b.Selections)
	case *FragmentSpread:
		b, ok := b.(*FragmentSpread)
		if !ok {
			return false
		}
		return a.Name == b.Name &&
			a.Location == b.Location &&
			equalDirectives(a.Directives, b.Directives)
	default:
		return false
	}
}

func equalArguments(a, b ast.ArgumentList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !equalValue(a[i].Value, b[i].Value) {
			return false
		}
	}

	return true
}

func equalDirectives(a, b ast.DirectiveList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !equalArguments(a[i].Arguments, b[i].Arguments) {
			return false
		}
	}

	return true
}

func equalValue(a, b *ast.Value) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.String() == b.String()
}
