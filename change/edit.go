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

package change

import (
	"fmt"
	"strings"
)

// Edit replaces the bytes [Start, End) of a text with Text.
type Edit struct {
	Start, End int
	Text       string
}

// Range returns the range this edit describes.
func (e Edit) Range() Range {
	return Range{Start: e.Start, End: e.End, NewLength: len(e.Text)}
}

// Trim shrinks an edit of text to exclude any prefix or suffix of the
// replacement that matches the bytes it replaces.
//
// Replacing "1;" with "12;" becomes inserting "2" between them, which leaves
// the ";" eligible for reuse.
func (e Edit) Trim(text string) Edit {
	old := text[e.Start:e.End]
	p := commonPrefix(old, e.Text)
	e.Start += p
	old, e.Text = old[p:], e.Text[p:]

	q := commonSuffix(old, e.Text)
	e.End -= q
	e.Text = e.Text[:len(e.Text)-q]
	return e
}

// Apply applies edits to text and returns the result along with the ranges
// describing it.
//
// Edits are expressed in terms of text and must be ordered and disjoint, the
// same as for [NewSet].
func Apply(text string, edits ...Edit) (string, Set) {
	ranges := make([]Range, len(edits))
	for i, e := range edits {
		if e.End > len(text) {
			panic(fmt.Sprintf("reparse/change: edit %v past end of text (%d)", e.Range(), len(text)))
		}
		ranges[i] = e.Range()
	}
	set := NewSet(ranges...)

	var b strings.Builder
	b.Grow(len(text) + set.Delta())
	prev := 0
	for _, e := range edits {
		b.WriteString(text[prev:e.Start])
		b.WriteString(e.Text)
		prev = e.End
	}
	b.WriteString(text[prev:])
	return b.String(), set
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func commonSuffix(a, b string) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[len(a)-1-i] != b[len(b)-1-i] {
			return i
		}
	}
	return n
}
