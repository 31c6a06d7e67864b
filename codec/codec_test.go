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

package codec_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/codec"
	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/parser"
	"github.com/bufbuild/reparse/source"
)

var sameTree = cmp.Options{
	cmp.AllowUnexported(green.Node{}),
	cmpopts.EquateEmpty(),
}

const text = `#define A
#if A
int x = 1; // one
#else
int x = 2;
#endif
) f(x >> 1, ;
/* unterminated
`

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	res, err := parser.Parse(t.Context(), source.NewFile("test.rp", text), parser.Options{})
	require.NoError(t, err)
	root := res.Tree.Root
	require.True(t, root.Has(green.ContainsDirectives))
	require.True(t, root.Has(green.ContainsDiagnostics))

	got, err := codec.Unmarshal(codec.Marshal(root))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(root, got, sameTree))
	assert.Equal(t, text, got.FullText())
	assert.Equal(t, root.Flags(), got.Flags())
	assert.Equal(t, green.Dump(root), green.Dump(got))
}

func TestAnnotations(t *testing.T) {
	t.Parallel()
	tok := green.NewToken(green.Identifier, nil, "x", nil).WithLookahead(1)
	root := green.NewNode(green.File,
		green.NewNode(green.ExprStmt,
			green.NewNode(green.NameExpr, tok).WithAnnotations(
				green.Annotation{Kind: "type", Data: "int"},
				green.Annotation{Kind: "raw", Data: []byte{1, 2, 3}},
			),
			green.NewMissing(green.Semicolon),
		),
		green.NewToken(green.EndOfFile, nil, "", nil),
	)

	got, err := codec.Unmarshal(codec.Marshal(root))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(root, got, sameTree))
	assert.True(t, got.Has(green.ContainsAnnotations))
	assert.True(t, got.Child(0).LastToken().IsMissing())
	assert.Equal(t, 1, got.Lookahead())
}

func TestReparseDecoded(t *testing.T) {
	t.Parallel()
	res, err := parser.Parse(t.Context(), source.NewFile("test.rp", text), parser.Options{})
	require.NoError(t, err)
	old, err := codec.Unmarshal(codec.Marshal(res.Tree.Root))
	require.NoError(t, err)

	newText, set := change.Apply(text, change.Edit{Start: 24, End: 25, Text: "3"})
	file := source.NewFile("test.rp", newText)
	incremental, err := parser.Reparse(t.Context(), old, file, set, parser.Options{})
	require.NoError(t, err)
	fresh, err := parser.Parse(t.Context(), file, parser.Options{})
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(fresh.Tree.Root, incremental.Tree.Root, sameTree))
	assert.Positive(t, incremental.Stats.ReusedTokens+incremental.Stats.ReusedNodes)
}

func TestPredefined(t *testing.T) {
	t.Parallel()
	res, err := parser.Parse(t.Context(), source.NewFile("test.rp", text), parser.Options{Predefined: []string{"B", "A"}})
	require.NoError(t, err)

	data := codec.Encode(codec.Snapshot{Root: res.Tree.Root, Predefined: []string{"B", "A", "B"}})
	got, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got.Predefined)
	assert.Empty(t, cmp.Diff(res.Tree.Root, got.Root, sameTree))

	assert.True(t, got.SamePredefined([]string{"B", "A"}))
	assert.False(t, got.SamePredefined([]string{"A"}))
	assert.False(t, got.SamePredefined(nil))

	// A snapshot without symbols matches an empty define list.
	plain, err := codec.Decode(codec.Marshal(res.Tree.Root))
	require.NoError(t, err)
	assert.Empty(t, plain.Predefined)
	assert.True(t, plain.SamePredefined(nil))
	assert.False(t, plain.SamePredefined([]string{"A"}))
}

func TestMalformed(t *testing.T) {
	t.Parallel()

	snapshot := func(version uint64, node []byte) []byte {
		b := protowire.AppendTag(nil, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, version)
		if node != nil {
			b = protowire.AppendTag(b, 2, protowire.BytesType)
			b = protowire.AppendBytes(b, node)
		}
		return b
	}
	kind := func(k uint64) []byte {
		b := protowire.AppendTag(nil, 1, protowire.VarintType)
		return protowire.AppendVarint(b, k)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xff}},
		{"version", snapshot(codec.Version+1, kind(uint64(green.File)))},
		{"no-root", snapshot(codec.Version, nil)},
		{"bad-kind", snapshot(codec.Version, kind(9999))},
		{"trivia-kind", snapshot(codec.Version, kind(uint64(green.Whitespace)))},
		{"truncated", codec.Marshal(green.NewToken(green.Identifier, nil, "abc", nil))[:6]},
		{"wide-kind", snapshot(codec.Version, kind(1<<16|uint64(green.Identifier)))},
		{"wide-lookahead", snapshot(codec.Version, protowire.AppendVarint(
			protowire.AppendTag(kind(uint64(green.Identifier)), 6, protowire.VarintType), 1<<63))},
		{"wide-trivia", snapshot(codec.Version, protowire.AppendBytes(
			protowire.AppendTag(kind(uint64(green.Identifier)), 3, protowire.BytesType),
			kind(1<<16|uint64(green.Whitespace))))},
		{"wrong-type", snapshot(codec.Version, protowire.AppendBytes(protowire.AppendTag(nil, 1, protowire.BytesType), []byte("x")))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := codec.Unmarshal(tt.data)
			assert.ErrorIs(t, err, codec.ErrMalformed)
		})
	}
}
