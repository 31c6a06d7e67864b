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

package change_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reparse/change"
)

func TestAffects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		r          change.Range
		start, end int
		want       bool
	}{
		{r: change.Range{Start: 2, End: 4}, start: 0, end: 2, want: false},
		{r: change.Range{Start: 2, End: 4}, start: 0, end: 3, want: true},
		{r: change.Range{Start: 2, End: 4}, start: 3, end: 10, want: true},
		{r: change.Range{Start: 2, End: 4}, start: 4, end: 10, want: false},
		{r: change.Range{Start: 5, End: 5, NewLength: 1}, start: 0, end: 5, want: false},
		{r: change.Range{Start: 5, End: 5, NewLength: 1}, start: 5, end: 9, want: false},
		{r: change.Range{Start: 5, End: 5, NewLength: 1}, start: 4, end: 6, want: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.r.Affects(tt.start, tt.end), "%v affects [%d:%d]", tt.r, tt.start, tt.end)
	}
}

func TestSet(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	s := change.NewSet(
		change.Range{Start: 1, End: 3, NewLength: 5},
		change.Range{Start: 3, End: 3, NewLength: 1},
		change.Range{Start: 7, End: 9},
	)
	assert.Equal(3, s.Len())
	assert.Equal(2, s.Delta())

	r, ok := s.Next()
	assert.True(ok)
	assert.Equal(change.Range{Start: 1, End: 3, NewLength: 5}, r)

	rest := s.Pop()
	r, _ = rest.Next()
	assert.Equal(3, r.Start)
	assert.Equal(3, s.Len(), "Pop does not modify the receiver")

	empty := rest.Pop().Pop()
	assert.True(empty.IsEmpty())
	_, ok = empty.Next()
	assert.False(ok)
	assert.True(empty.Pop().IsEmpty())
	assert.Equal("{[1:3]+5, [3:3]+1, [7:9]+0}", s.String())
}

func TestSetContract(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		change.NewSet(change.Range{Start: 5, End: 6}, change.Range{Start: 1, End: 2})
	}, "unsorted")
	assert.Panics(t, func() {
		change.NewSet(change.Range{Start: 1, End: 4}, change.Range{Start: 3, End: 6})
	}, "overlapping")
	assert.Panics(t, func() {
		change.NewSet(change.Range{Start: 3, End: 3}, change.Range{Start: 3, End: 3})
	}, "double insertion")
	assert.Panics(t, func() {
		change.NewSet(change.Range{Start: 3, End: 3}, change.Range{Start: 3, End: 5})
	}, "insertion at start of replacement")
	assert.Panics(t, func() {
		change.NewSet(change.Range{Start: 4, End: 3})
	}, "inverted")

	assert.NotPanics(t, func() {
		change.NewSet(change.Range{Start: 1, End: 3}, change.Range{Start: 3, End: 5})
	}, "adjacent")
}

func TestApply(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	text, set := change.Apply("int x = 1;",
		change.Edit{Start: 0, End: 3, Text: "bool"},
		change.Edit{Start: 8, End: 9, Text: "true"},
	)
	assert.Equal("bool x = true;", text)
	assert.Equal(4, set.Delta())

	assert.Panics(func() { change.Apply("abc", change.Edit{Start: 2, End: 9}) })
}

func TestTrim(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	text := "int x = 1;"
	e := change.Edit{Start: 8, End: 10, Text: "12;"}.Trim(text)
	assert.Equal(change.Edit{Start: 9, End: 9, Text: "2"}, e)

	e = change.Edit{Start: 0, End: 3, Text: "int"}.Trim(text)
	assert.Equal(change.Range{Start: 3, End: 3}, e.Range())

	e = change.Edit{Start: 4, End: 5, Text: "y"}.Trim(text)
	assert.Equal(change.Edit{Start: 4, End: 5, Text: "y"}, e)
}

// TestThen checks composition against applying edits one after another.
func TestThen(t *testing.T) {
	t.Parallel()

	const original = "abcdefghijklmnop"
	tests := []struct {
		name  string
		edits []change.Edit // Each in terms of the previous result.
	}{
		{name: "single", edits: []change.Edit{{Start: 3, End: 5, Text: "XY"}}},
		{name: "disjoint-after", edits: []change.Edit{
			{Start: 2, End: 3, Text: "123"},
			{Start: 10, End: 12, Text: ""},
		}},
		{name: "disjoint-before", edits: []change.Edit{
			{Start: 10, End: 12, Text: "Q"},
			{Start: 1, End: 2, Text: "ZZZ"},
		}},
		{name: "typing", edits: []change.Edit{
			{Start: 4, End: 4, Text: "a"},
			{Start: 5, End: 5, Text: "b"},
			{Start: 6, End: 6, Text: "c"},
		}},
		{name: "backspace", edits: []change.Edit{
			{Start: 8, End: 8, Text: "xyz"},
			{Start: 10, End: 11},
			{Start: 9, End: 10},
			{Start: 7, End: 9},
		}},
		{name: "overlap-two", edits: []change.Edit{
			{Start: 2, End: 4, Text: "__"},
			{Start: 8, End: 9, Text: "--"},
			{Start: 3, End: 9, Text: "!"},
		}},
		{name: "whole", edits: []change.Edit{
			{Start: 5, End: 6, Text: "five"},
			{Start: 0, End: 19, Text: "new"},
		}},
		{name: "append", edits: []change.Edit{
			{Start: 16, End: 16, Text: "qrs"},
			{Start: 19, End: 19, Text: "t"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text := original
			var set change.Set
			for _, e := range tt.edits {
				text, _ = change.Apply(text, e)
				set = set.Then(e.Range())
			}
			assert.Equal(t, len(text)-len(original), set.Delta())

			// Replay the composed set: every old byte outside a range must
			// land at the expected place in the final text.
			delta := 0
			prev := 0
			for r := range set.All() {
				require.Equal(t, original[prev:r.Start], text[prev+delta:r.Start+delta])
				delta += r.Delta()
				prev = r.End
			}
			require.Equal(t, original[prev:], text[prev+delta:])
		})
	}
}
