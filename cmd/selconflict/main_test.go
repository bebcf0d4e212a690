package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/require"
)

const testSchema = `
type User {
  id: ID!
  name: String
  email: String
}

type Query {
  user: User
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestRealMain_noConflicts(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "schema.graphqls", testSchema)
	queryFile := writeFile(t, dir, "query.graphql", "query { user { id name } }\n")

	var stdout, stderr bytes.Buffer
	err := realMain([]string{"validate", "--schema", schemaFile, queryFile}, &stdout, &stderr)
	require.NoError(t, err)
	require.Equal(t, "no conflicts\n", stdout.String())
}

func TestRealMain_conflicts(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "schema.graphqls", testSchema)
	queryFile := writeFile(t, dir, "query.graphql", heredoc.Doc(`
		query {
		  user {
		    a: name
		    a: email
		  }
		}
	`))

	var stdout, stderr bytes.Buffer
	err := realMain([]string{"validate", "--schema", schemaFile, "--concurrency", "1", queryFile}, &stdout, &stderr)
	require.ErrorIs(t, err, errConflicts)

	want := "error[AMBIGUOUS_FIELD_ALIAS]: Field 'a' is ambiguous because it references two different fields: 'name' and 'email'\n" +
		"\t--> " + queryFile + ":3:5\n" +
		"\tthe other field: " + queryFile + ":4:5\n"
	require.Equal(t, want, stdout.String())
}

func TestRealMain_jsonFormat(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "schema.graphqls", testSchema)
	queryFile := writeFile(t, dir, "query.graphql", "query { user { a: name a: email } }\n")

	var stdout, stderr bytes.Buffer
	err := realMain([]string{"validate", "--schema", schemaFile, "--format", "json", queryFile}, &stdout, &stderr)
	require.ErrorIs(t, err, errConflicts)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "AMBIGUOUS_FIELD_ALIAS", got[0]["code"])
	require.Equal(t, queryFile+":1:16", got[0]["location"])
}

func TestRealMain_gqlerrorFormat(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "schema.graphqls", testSchema)
	queryFile := writeFile(t, dir, "query.graphql", "query { user { a: name a: email } }\n")

	var stdout, stderr bytes.Buffer
	err := realMain([]string{"validate", "--schema", schemaFile, "--format", "gqlerror", queryFile}, &stdout, &stderr)
	require.ErrorIs(t, err, errConflicts)

	var got struct {
		Errors []struct {
			Message    string                 `json:"message"`
			Locations  []map[string]int       `json:"locations"`
			Extensions map[string]interface{} `json:"extensions"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got.Errors, 1)
	require.Equal(t, "Field 'a' is ambiguous because it references two different fields: 'name' and 'email'", got.Errors[0].Message)
	require.Equal(t, []map[string]int{{"line": 1, "column": 16}, {"line": 1, "column": 24}}, got.Errors[0].Locations)
	require.Equal(t, "AMBIGUOUS_FIELD_ALIAS", got.Errors[0].Extensions["code"])
	require.Equal(t, queryFile, got.Errors[0].Extensions["file"])
}

func TestRealMain_yamlFormatWithoutConflicts(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "schema.graphqls", testSchema)
	queryFile := writeFile(t, dir, "query.graphql", "query { user { id } }\n")

	var stdout, stderr bytes.Buffer
	err := realMain([]string{"validate", "--schema", schemaFile, "--format", "yaml", queryFile}, &stdout, &stderr)
	require.NoError(t, err)
	require.Equal(t, "[]\n", stdout.String())
}

func TestRealMain_configFile(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "schema.graphqls", testSchema)
	queryFile := writeFile(t, dir, "query.graphql", "query { user { id } }\n")
	configFile := writeFile(t, dir, "selconflict.yaml", "format: json\nschema:\n  - "+schemaFile+"\n")

	var stdout, stderr bytes.Buffer
	err := realMain([]string{"validate", "--config", configFile, queryFile}, &stdout, &stderr)
	require.NoError(t, err)
	require.Equal(t, "[]\n", stdout.String())
}

func TestRealMain_env(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "schema.graphqls", testSchema)
	queryFile := writeFile(t, dir, "query.graphql", "query { user { id } }\n")
	t.Setenv("SELCONFLICT_FORMAT", "yaml")

	var stdout, stderr bytes.Buffer
	err := realMain([]string{"validate", "--schema", schemaFile, queryFile}, &stdout, &stderr)
	require.NoError(t, err)
	require.Equal(t, "[]\n", stdout.String())
}

func TestRealMain_errors(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "schema.graphqls", testSchema)
	queryFile := writeFile(t, dir, "query.graphql", "query { user { id } }\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "unknown format",
			args: []string{"validate", "--schema", schemaFile, "--format", "xml", queryFile},
			want: "unknown format: xml",
		},
		{
			name: "missing schema",
			args: []string{"validate", queryFile},
			want: "at least one schema file is required",
		},
		{
			name: "missing documents",
			args: []string{"validate", "--schema", schemaFile},
			want: "requires at least 1 arg(s), only received 0",
		},
		{
			name: "unknown field",
			args: []string{"validate", "--schema", schemaFile, writeFile(t, dir, "bad.graphql", "query { user { age } }\n")},
			want: "cannot query field 'age' on type 'User'",
		},
		{
			name: "cyclic fragment",
			args: []string{"validate", "--schema", schemaFile, writeFile(t, dir, "cyclic.graphql", "query { user { ...A } }\nfragment A on User { id ...A }\n")},
			want: "cannot spread fragment 'A' within itself",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := realMain(tt.args, &stdout, &stderr)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	exists := writeFile(t, dir, "exists.graphql", "query { user { id } }")

	_, err := readSources([]string{
		filepath.Join(dir, "missing1.graphql"),
		exists,
		filepath.Join(dir, "missing2.graphql"),
	})
	require.ErrorContains(t, err, "2 errors occurred")
	require.ErrorContains(t, err, "missing1.graphql")
	require.ErrorContains(t, err, "missing2.graphql")

	sources, err := readSources([]string{exists})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.Equal(t, exists, sources[0].Name)
}
