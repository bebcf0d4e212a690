package diagnostic

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vvakame/selconflict/internal/ir"
)

func testList() List {
	return List{
		New(
			AmbiguousFieldAlias{ResponseKey: "a", LeftName: "name", RightName: "email"},
			ir.Location{Source: "query.graphql", Line: 3, Column: 3},
		).Annotate("the other field", ir.Location{Source: "query.graphql", Line: 4, Column: 3}),
		New(
			AmbiguousFieldType{ResponseKey: "v", LeftName: "barkVolume", RightName: "name", LeftTypeString: "Int", RightTypeString: "String"},
			ir.Location{Line: 7, Column: 5},
		),
	}
}

func TestFormatter(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).FormatList(testList())

	want := heredoc.Doc(`
		error[AMBIGUOUS_FIELD_ALIAS]: Field 'a' is ambiguous because it references two different fields: 'name' and 'email'
			--> query.graphql:3:3
			the other field: query.graphql:4:3
		error[AMBIGUOUS_FIELD_TYPE]: Field 'v' is ambiguous because it references fields with different types: 'barkVolume' with type 'Int' and 'name' with type 'String'
			--> input:7:5
	`)
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestList_Error(t *testing.T) {
	want := "query.graphql:3:3: Field 'a' is ambiguous because it references two different fields: 'name' and 'email'\n" +
		"input:7:5: Field 'v' is ambiguous because it references fields with different types: 'barkVolume' with type 'Int' and 'name' with type 'String'"
	if diff := cmp.Diff(want, testList().Error()); diff != "" {
		t.Errorf("unexpected message (-want +got):\n%s", diff)
	}
}

func TestList_GQLErrors(t *testing.T) {
	got := testList().GQLErrors()

	want := gqlerror.List{
		{
			Message:    "Field 'a' is ambiguous because it references two different fields: 'name' and 'email'",
			Locations:  []gqlerror.Location{{Line: 3, Column: 3}, {Line: 4, Column: 3}},
			Rule:       Rule,
			Extensions: map[string]interface{}{"code": "AMBIGUOUS_FIELD_ALIAS", "file": "query.graphql"},
		},
		{
			Message:    "Field 'v' is ambiguous because it references fields with different types: 'barkVolume' with type 'Int' and 'name' with type 'String'",
			Locations:  []gqlerror.Location{{Line: 7, Column: 5}},
			Rule:       Rule,
			Extensions: map[string]interface{}{"code": "AMBIGUOUS_FIELD_TYPE"},
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(gqlerror.Error{})); diff != "" {
		t.Errorf("unexpected errors (-want +got):\n%s", diff)
	}
}

func TestDiagnostic_GQLError_annotationInAnotherDocument(t *testing.T) {
	d := New(
		AmbiguousFieldAlias{ResponseKey: "n", LeftName: "name", RightName: "email"},
		ir.Location{Source: "fragments.graphql", Line: 2, Column: 3},
	).
		Annotate("the other field", ir.Location{Source: "query.graphql", Line: 4, Column: 5}).
		Annotate("the other field", ir.Location{Source: "fragments.graphql", Line: 9, Column: 3})

	want := &gqlerror.Error{
		Message:   "Field 'n' is ambiguous because it references two different fields: 'name' and 'email'",
		Locations: []gqlerror.Location{{Line: 2, Column: 3}, {Line: 9, Column: 3}},
		Rule:      Rule,
		Extensions: map[string]interface{}{
			"code":        "AMBIGUOUS_FIELD_ALIAS",
			"file":        "fragments.graphql",
			"annotations": []string{"the other field: query.graphql:4:5"},
		},
	}
	if diff := cmp.Diff(want, d.GQLError(), cmpopts.IgnoreUnexported(gqlerror.Error{})); diff != "" {
		t.Errorf("unexpected error (-want +got):\n%s", diff)
	}
}

func TestList_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(testList())
	if err != nil {
		t.Fatal(err)
	}

	want := `[` +
		`{"code":"AMBIGUOUS_FIELD_ALIAS","message":"Field 'a' is ambiguous because it references two different fields: 'name' and 'email'","location":"query.graphql:3:3","annotations":[{"label":"the other field","location":"query.graphql:4:3"}]},` +
		`{"code":"AMBIGUOUS_FIELD_TYPE","message":"Field 'v' is ambiguous because it references fields with different types: 'barkVolume' with type 'Int' and 'name' with type 'String'","location":"input:7:5"}` +
		`]`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("unexpected json (-want +got):\n%s", diff)
	}
}

func TestList_MarshalYAML(t *testing.T) {
	b, err := yaml.Marshal(testList())
	if err != nil {
		t.Fatal(err)
	}

	var got []map[string]interface{}
	if err := yaml.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}

	want := []map[string]interface{}{
		{
			"code":     "AMBIGUOUS_FIELD_ALIAS",
			"message":  "Field 'a' is ambiguous because it references two different fields: 'name' and 'email'",
			"location": "query.graphql:3:3",
			"annotations": []interface{}{
				map[string]interface{}{"label": "the other field", "location": "query.graphql:4:3"},
			},
		},
		{
			"code":     "AMBIGUOUS_FIELD_TYPE",
			"message":  "Field 'v' is ambiguous because it references fields with different types: 'barkVolume' with type 'Int' and 'name' with type 'String'",
			"location": "input:7:5",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected yaml (-want +got):\n%s", diff)
	}
}
