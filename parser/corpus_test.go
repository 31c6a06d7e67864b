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

package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/internal/corpora"
	"github.com/bufbuild/reparse/parser"
	"github.com/bufbuild/reparse/report"
	"github.com/bufbuild/reparse/source"
)

// script is the header of a corpus test case.
type script struct {
	Predefined []string `yaml:"predefined"`
	Edits      []struct {
		Find    string `yaml:"find"`
		Replace string `yaml:"replace"`
	} `yaml:"edits"`
}

func TestCorpus(t *testing.T) {
	t.Parallel()

	corpora.Corpus{
		Root:      "testdata",
		Refresh:   "REPARSE_REFRESH",
		Extension: "rp",
		Outputs: []corpora.Output{
			{Extension: "tree"},
			{Extension: "stats"},
			{Extension: "stderr"},
		},
		Test: func(t *testing.T, path, text string) []string {
			var s script
			require.NoError(t, corpora.Header(text, &s))
			opts := parser.Options{Predefined: s.Predefined}

			res, err := parser.Parse(t.Context(), source.NewFile(path, text), opts)
			require.NoError(t, err)

			var stats strings.Builder
			body := bodyStart(text)
			for i, e := range s.Edits {
				start := strings.Index(text[body:], e.Find)
				require.GreaterOrEqual(t, start, 0, "edit %d: %q not found", i, e.Find)
				start += body
				edit := change.Edit{Start: start, End: start + len(e.Find), Text: e.Replace}.Trim(text)

				newText, set := change.Apply(text, edit)
				file := source.NewFile(path, newText)
				next, err := parser.Reparse(t.Context(), res.Tree.Root, file, set, opts)
				require.NoError(t, err)
				fresh, err := parser.Parse(t.Context(), file, opts)
				require.NoError(t, err)
				if diff := cmp.Diff(fresh.Tree.Root, next.Tree.Root, sameTree); diff != "" {
					t.Errorf("edit %d: reparse differs from parse (-want +got):\n%s", i, diff)
				}
				fmt.Fprintf(&stats, "edit %d: reused %d nodes and %d tokens, lexed %d tokens, skipped %d tokens\n",
					i, next.Stats.ReusedNodes, next.Stats.ReusedTokens, next.Stats.LexedTokens, next.Stats.SkippedTokens)

				text, res = newText, next
			}
			return []string{
				green.Dump(res.Tree.Root),
				stats.String(),
				report.Renderer{Compact: true}.RenderString(report.Collect(res.Tree)),
			}
		},
	}.Run(t)
}

// bodyStart returns the offset just past the last header line.
func bodyStart(text string) int {
	offset, body := 0, 0
	for line := range strings.Lines(text) {
		offset += len(line)
		if strings.HasPrefix(line, corpora.HeaderPrefix) {
			body = offset
		}
	}
	return body
}
