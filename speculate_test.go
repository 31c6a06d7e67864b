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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reparse"
	"github.com/bufbuild/reparse/change"
)

func TestSpeculate(t *testing.T) {
	t.Parallel()
	old := parse(t, decls)
	candidates := [][]change.Edit{
		{{Start: 8, End: 9, Text: "4"}},
		{{Start: 19, End: 20, Text: "5"}},
		{{Start: 22, End: 33, Text: "while (c) c;\n"}},
		{{Start: 8, End: 9, Text: "1"}, {Start: 9, End: 9, Text: "0"}},
		nil,
	}
	want := []string{
		"int a = 4;\nint b = 2;\nint c = 3;\n",
		"int a = 1;\nint b = 5;\nint c = 3;\n",
		"int a = 1;\nint b = 2;\nwhile (c) c;\n",
		"int a = 10;\nint b = 2;\nint c = 3;\n",
		decls,
	}

	for _, par := range []int{0, 1, 2} {
		results, err := reparse.Speculate(t.Context(), old, candidates, reparse.WithParallelism(par))
		require.NoError(t, err)
		require.Len(t, results, len(want))
		for i, res := range results {
			assert.Equal(t, want[i], res.Tree.File.Text())
			assertFresh(t, res.Tree)
		}
	}

	// The old tree is shared, not consumed.
	assert.Equal(t, decls, old.Root.FullText())
}

func TestSpeculateErrors(t *testing.T) {
	t.Parallel()
	old := parse(t, decls)

	_, err := reparse.Speculate(t.Context(), old, [][]change.Edit{
		{{Start: 0, End: 1, Text: "x"}},
		{{Start: 0, End: 100}},
	})
	require.ErrorIs(t, err, reparse.ErrBadEdit)

	ctx, cancel := context.WithCancelCause(t.Context())
	cause := errors.New("gave up")
	cancel(cause)
	_, err = reparse.Speculate(ctx, old, [][]change.Edit{{{Start: 0, End: 1, Text: "x"}}})
	require.ErrorIs(t, err, cause)
}
