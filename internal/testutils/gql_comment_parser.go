package testutils

import (
	"fmt"
	"regexp"
	"strconv"
)

var schemaDirective = regexp.MustCompile(`(?m)^# schema:\s*([^\s]+)$`)

// FindSchemaFileName returns the file named by the "# schema: <file>" comment of source.
func FindSchemaFileName(t TestingT, source string) string {
	t.Helper()

	ss := schemaDirective.FindStringSubmatch(source)
	if len(ss) != 2 {
		t.Fatal("schema file directive mismatch")
	}

	return ss[1]
}

func findOption(t TestingT, optionName, source string) (string, bool) {
	t.Helper()

	re, err := regexp.Compile(fmt.Sprintf(`(?m)^# option:%s:\s*([^\s]+)$`, regexp.QuoteMeta(optionName)))
	if err != nil {
		t.Fatal(err)
	}

	ss := re.FindStringSubmatch(source)
	if len(ss) != 2 {
		t.Logf("option %s value is not found", optionName)
		return "", false
	}

	return ss[1], true
}

// FindOptionBool reads a "# option:<name>: true" comment, falling back to defaultValue.
func FindOptionBool(t TestingT, optionName, source string, defaultValue bool) bool {
	t.Helper()

	v, ok := findOption(t, optionName, source)
	if !ok {
		return defaultValue
	}

	return v == "true"
}

// FindOptionInt reads a "# option:<name>: 4" comment, falling back to defaultValue.
func FindOptionInt(t TestingT, optionName, source string, defaultValue int) int {
	t.Helper()

	v, ok := findOption(t, optionName, source)
	if !ok {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		t.Fatalf("option %s must be an integer: %s", optionName, err)
	}

	return i
}
