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

// Package corpora provides a mechanism for managing test corpora, i.e.,
// a collection of files that each define one test case.
package corpora

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

// HeaderPrefix is the line prefix that marks a line of a test case as part
// of its YAML configuration header.
const HeaderPrefix = "//% "

// A Corpus describes a test data corpus. This is essentially a way for doing
// table-driven tests where the "table" is in the file system.
type Corpus struct {
	// The root of the test data directory. This path is relative to the file
	// that calls [Corpus.Run].
	Root string

	// An environment variable holding a glob of test cases whose outputs
	// should be rewritten instead of compared.
	Refresh string

	// The file extension (without a dot) of files which define a test case.
	Extension string

	// Possible outputs of the test. If the file for a particular output is
	// missing, it is implicitly expected to be empty.
	Outputs []Output

	// Test executes one test case. Returns a slice of strings corresponding
	// to the elements of Outputs.
	Test func(t *testing.T, path, text string) []string
}

// Output represents the output of a test case.
type Output struct {
	// The extension of the output. This is a suffix to the name of the
	// test case's main file; for "foo.rp" and "tokens" the runner looks for
	// "foo.rp.tokens".
	Extension string

	// The comparison function for this output. May be nil, in which case the
	// values are compared byte-for-byte.
	Compare Compare
}

// Compare is a comparison function between strings, used in [Output].
//
// Returns empty string if the strings match, otherwise returns an error
// message.
type Compare func(got, want string) string

// Run runs every test case of the corpus as a subtest of t.
func (c Corpus) Run(t *testing.T) {
	testDir := callerDir(0)
	root := filepath.Join(testDir, c.Root)
	t.Logf("corpora: searching for files in %q", root)

	var tests []string
	err := filepath.Walk(root, func(p string, fi fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && strings.TrimPrefix(path.Ext(p), ".") == c.Extension {
			tests = append(tests, p)
		}
		return nil
	})
	if err != nil {
		t.Fatal("corpora: error while stating testdata FS:", err)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: invalid glob in %s: %q", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		t.Logf("corpora: refreshing test data because %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, file := range tests {
		name, _ := filepath.Rel(testDir, file)
		t.Run(name, func(t *testing.T) {
			bytes, err := os.ReadFile(file)
			if err != nil {
				t.Fatalf("corpora: error while loading input file %q: %v", file, err)
			}

			results := c.Test(t, name, string(bytes))
			refresh, _ := doublestar.Match(refresh, name)
			for i, output := range c.Outputs {
				c.check(t, fmt.Sprint(file, ".", output.Extension), output, results[i], refresh)
			}
		})
	}
}

func (c Corpus) check(t *testing.T, path string, output Output, got string, refresh bool) {
	t.Helper()

	if refresh {
		if got == "" {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				t.Errorf("corpora: error while deleting output file %q: %v", path, err)
			}
			return
		}
		if err := os.WriteFile(path, []byte(got), 0o660); err != nil {
			t.Errorf("corpora: error while writing output file %q: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Errorf("corpora: error while loading output file %q: %v", path, err)
		return
	}

	cmp := output.Compare
	if cmp == nil {
		cmp = defaultCompare
	}
	if diff := cmp(got, string(want)); diff != "" {
		t.Errorf("output mismatch for %q:\n%s", path, diff)
	}
}

// Header decodes the YAML configuration header of a test case into v. Lines
// of the header start with [HeaderPrefix] and may appear anywhere in text.
func Header(text string, v any) error {
	var config bytes.Buffer
	for line := range strings.Lines(text) {
		if line, ok := strings.CutPrefix(line, HeaderPrefix); ok {
			config.WriteString(line)
		}
	}
	if config.Len() == 0 {
		return nil
	}
	return yaml.Unmarshal(config.Bytes(), v)
}

func defaultCompare(got, want string) string {
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

	// Colorize the diff so it's easier to read.
	lines := strings.Split(diff, "\n")
	for i, s := range lines {
		switch {
		case strings.HasPrefix(s, "+"):
			lines[i] = "\033[1;92m" + s + "\033[0m"
		case strings.HasPrefix(s, "-"):
			lines[i] = "\033[1;91m" + s + "\033[0m"
		}
	}
	return strings.Join(lines, "\n")
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic("reparse/corpora: could not determine test file's directory")
	}
	return filepath.Dir(file)
}
