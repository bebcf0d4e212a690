package testutils

import (
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/pmezard/go-difflib/difflib"
)

// UpdateEnv rewrites every golden file with the actual output when set to "true".
const UpdateEnv = "UPDATE_GOLDEN"

// CheckGoldenFile compares actual with the content of expectFilePath.
// A missing golden file is created from actual.
func CheckGoldenFile(t TestingT, actual []byte, expectFilePath string) {
	t.Helper()

	expect, err := os.ReadFile(expectFilePath)
	if errors.Is(err, fs.ErrNotExist) || os.Getenv(UpdateEnv) == "true" {
		writeGoldenFile(t, actual, expectFilePath)
		return
	} else if err != nil {
		t.Error(err)
		return
	}

	if d := Diff(string(expect), string(actual)); d != "" {
		t.Errorf("%s mismatch:\n%s", expectFilePath, d)
	}
}

// Diff returns the unified diff between expect and actual, or "" when they are the same.
func Diff(expect, actual string) string {
	if expect == actual {
		return ""
	}

	d, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expect),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  5,
	})
	if err != nil {
		return err.Error()
	}

	return d
}

func writeGoldenFile(t TestingT, actual []byte, expectFilePath string) {
	t.Helper()

	err := os.MkdirAll(path.Dir(expectFilePath), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(expectFilePath, actual, 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("golden file %s is written", expectFilePath)
}
