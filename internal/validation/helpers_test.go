package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	testlogr "github.com/go-logr/logr/testing"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/selconflict/internal/diagnostic"
	"github.com/vvakame/selconflict/internal/ir"
	"github.com/vvakame/selconflict/internal/log"
	"github.com/vvakame/selconflict/internal/schema"
)

var testSchema = heredoc.Doc(`
	interface Node {
		id: ID!
	}

	interface Pet {
		name: String
		owner: User
	}

	type Dog implements Pet {
		name: String
		breed: String
		barkVolume: Int
		owner: User
	}

	type Cat implements Pet {
		name: String
		color: String
		meowVolume: Int
		owner: User
	}

	union CatOrDog = Cat | Dog

	type User implements Node {
		id: ID!
		name: String
		email: String
		friends: [User]
		pet: Pet
		bestFriend: User
	}

	type Query {
		user(id: ID): User
		pet: Pet
		node(id: ID): Node
		catOrDog: CatOrDog
	}
`)

func testContext(t *testing.T) context.Context {
	t.Helper()

	return log.WithLogger(context.Background(), testlogr.NewTestLogger(t))
}

func buildProgram(t *testing.T, query string) *ir.Program {
	t.Helper()

	s, err := schema.Load(&ast.Source{Name: "schema.graphqls", Input: testSchema})
	if err != nil {
		t.Fatal(err)
	}
	program, err := ir.Parse(testContext(t), s, &ast.Source{Name: "query.graphql", Input: query})
	if err != nil {
		t.Fatal(err)
	}

	return program
}

// summarize renders every diagnostic as "CODE primary annotation...".
func summarize(t *testing.T, err error) []string {
	t.Helper()

	if err == nil {
		return nil
	}
	var list diagnostic.List
	if !errors.As(err, &list) {
		t.Fatalf("unexpected error type: %T", err)
	}

	return summarizeList(list)
}

func summarizeList(list diagnostic.List) []string {
	var result []string
	for _, d := range list {
		ss := []string{d.Message.Code(), d.Location.String()}
		for _, annotation := range d.Annotations {
			ss = append(ss, annotation.Location.String())
		}
		result = append(result, strings.Join(ss, " "))
	}

	return result
}
