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

package reparse_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reparse"
	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/report"
)

func TestDocument(t *testing.T) {
	t.Parallel()
	doc, err := reparse.Open(t.Context(), "doc.rp", "a;\n", 1)
	require.NoError(t, err)
	assert.Equal(t, "doc.rp", doc.Path())
	assert.Equal(t, int32(1), doc.Version())
	assert.Empty(t, doc.Diagnostics())

	// Each edit is relative to the text left by the previous one.
	_, err = doc.Apply(t.Context(), 2,
		change.Edit{Start: 0, End: 1, Text: "bb"},
		change.Edit{Start: 2, End: 2, Text: " = 1"},
		change.Edit{Start: 8, End: 8, Text: "c;\n"},
	)
	require.NoError(t, err)
	assert.Equal(t, "bb = 1;\nc;\n", doc.Text())
	assert.Equal(t, int32(2), doc.Version())
	assertFresh(t, doc.Tree())

	stats, err := doc.Apply(t.Context(), 3, change.Edit{Start: 5, End: 6, Text: "2"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReusedNodes)
	assert.Equal(t, stats, doc.Stats())
	assert.Equal(t, "bb = 2;\nc;\n", doc.Text())
	assertFresh(t, doc.Tree())
}

func TestDocumentErrors(t *testing.T) {
	t.Parallel()
	doc, err := reparse.Open(t.Context(), "doc.rp", "a;\n", 5)
	require.NoError(t, err)
	tree := doc.Tree()

	_, err = doc.Apply(t.Context(), 5, change.Edit{Start: 0, End: 1, Text: "b"})
	require.ErrorIs(t, err, reparse.ErrStaleVersion)

	// The second edit is out of range once the first has been applied.
	_, err = doc.Apply(t.Context(), 6,
		change.Edit{Start: 0, End: 3},
		change.Edit{Start: 0, End: 1, Text: "b"},
	)
	require.ErrorIs(t, err, reparse.ErrBadEdit)

	assert.Same(t, tree, doc.Tree())
	assert.Equal(t, int32(5), doc.Version())
}

func TestDocumentDiagnostics(t *testing.T) {
	t.Parallel()
	doc, err := reparse.Open(t.Context(), "doc.rp", "int x = ;\n", 1)
	require.NoError(t, err)
	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, report.Error, diags[0].Level)
	assert.Equal(t, "missing", diags[0].Code)

	_, err = doc.Replace(t.Context(), 2, "int x = 1;\n")
	require.NoError(t, err)
	assert.Empty(t, doc.Diagnostics())
	assertFresh(t, doc.Tree())
}

func TestDocumentConcurrent(t *testing.T) {
	t.Parallel()
	doc, err := reparse.Open(t.Context(), "doc.rp", decls, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				tree := doc.Tree()
				assert.Equal(t, tree.File.Text(), tree.Root.FullText())
			}
		}()
	}
	for v := int32(2); v < 20; v++ {
		digit := string(rune('0' + v%10))
		_, err := doc.Apply(t.Context(), v, change.Edit{Start: 19, End: 20, Text: digit})
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, int32(19), doc.Version())
	assert.Equal(t, "int a = 1;\nint b = 9;\nint c = 3;\n", doc.Text())
}
