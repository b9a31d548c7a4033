// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package golden runs table-driven tests whose table lives in the file
// system: each case is a file, and its expected outputs are files next to it.
package golden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

// Corpus describes a directory of test cases.
type Corpus struct {
	// The root of the test data directory, relative to the file that calls
	// [Corpus.Run].
	Root string

	// An environment variable holding a glob. Cases whose names match it
	// have their outputs rewritten instead of checked.
	Refresh string

	// The extension (without a dot) of files that define a case, e.g. "yaml".
	Extension string

	// The outputs of each case. A missing output file is treated as empty.
	Outputs []Output

	// Test runs one case, returning one string per element of Outputs.
	Test func(t *testing.T, path, text string) []string
}

// Output is one output of a test case.
type Output struct {
	// A suffix of the case's file name: for case "foo.yaml" and extension
	// "out", the expected output is in "foo.yaml.out".
	Extension string

	// Compares outputs. If nil, outputs are compared byte for byte.
	Compare Compare
}

// Compare returns the empty string if got matches want, and a description of
// the mismatch otherwise.
type Compare func(got, want string) string

// Run runs every case in the corpus as a subtest.
func (c Corpus) Run(t *testing.T) {
	testDir := callerDir(0)
	cases, err := c.cases(filepath.Join(testDir, c.Root))
	if err != nil {
		t.Fatal("golden: error while walking test data:", err)
	}

	refresh := c.refreshGlob(t)
	for _, path := range cases {
		name, _ := filepath.Rel(testDir, path)
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			text, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("golden: error while loading case %q: %v", path, err)
			}
			results := c.Test(t, name, string(text))
			if len(results) != len(c.Outputs) {
				t.Fatalf("golden: got %d outputs, want %d", len(results), len(c.Outputs))
			}

			rewrite, _ := doublestar.Match(refresh, filepath.ToSlash(name))
			for i, output := range c.Outputs {
				out := fmt.Sprint(path, ".", output.Extension)
				if rewrite {
					write(t, out, results[i])
				} else {
					output.check(t, out, results[i])
				}
			}
		})
	}
}

// cases returns the case files under root, in lexical order.
func (c Corpus) cases(root string) ([]string, error) {
	var cases []string
	err := doublestar.GlobWalk(os.DirFS(root), "**/*."+c.Extension, func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			cases = append(cases, filepath.Join(root, filepath.FromSlash(path)))
		}
		return nil
	})
	return cases, err
}

// refreshGlob returns the glob of cases to rewrite, failing t if it is
// non-empty so that a refresh never passes silently.
func (c Corpus) refreshGlob(t *testing.T) string {
	if c.Refresh == "" {
		return ""
	}
	glob := os.Getenv(c.Refresh)
	if !doublestar.ValidatePattern(glob) {
		t.Fatalf("golden: invalid glob in %s: %q", c.Refresh, glob)
	}
	if glob != "" {
		t.Logf("golden: refreshing test data because %s=%s", c.Refresh, glob)
		t.Fail()
	}
	return glob
}

// check compares got with the contents of path.
func (o Output) check(t *testing.T, path, got string) {
	t.Helper()
	want, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Errorf("golden: error while loading output %q: %v", path, err)
		return
	}
	compare := o.Compare
	if compare == nil {
		compare = Diff
	}
	if diff := compare(got, string(want)); diff != "" {
		t.Errorf("golden: output mismatch for %q:\n%s", path, diff)
	}
}

func write(t *testing.T, path, text string) {
	t.Helper()
	if text == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Errorf("golden: error while deleting output %q: %v", path, err)
		}
		return
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Errorf("golden: error while writing output %q: %v", path, err)
	}
}

var (
	added   = color.New(color.Bold, color.FgHiGreen)
	removed = color.New(color.Bold, color.FgHiRed)
)

// Diff compares two strings, returning a colorized unified diff if they
// differ.
func Diff(got, want string) string {
	if got == want {
		return ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}

	var out strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			added.Fprint(&out, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprint(&out, line)
		default:
			out.WriteString(line)
		}
	}
	return out.String()
}

// Decode decodes a YAML case into v, failing the test on unknown fields.
func Decode(t *testing.T, text string, v any) {
	t.Helper()
	dec := yaml.NewDecoder(strings.NewReader(text))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		t.Fatalf("golden: error while decoding case: %v", err)
	}
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic("golden: could not determine test file's directory")
	}
	return filepath.Dir(file)
}
