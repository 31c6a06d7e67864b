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

package blend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/reparse/blend"
	"github.com/bufbuild/reparse/green"
)

func TestCursor(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	a := green.NewToken(green.Identifier, nil, "a", []green.Trivia{{Kind: green.Whitespace, Text: " "}})
	b := green.NewToken(green.Identifier, nil, "b", nil)
	c := green.NewToken(green.Identifier, nil, "c", []green.Trivia{{Kind: green.EndOfLine, Text: "\n"}})
	eof := green.NewToken(green.EndOfFile, nil, "", nil)
	first := green.NewNode(green.Block, a, green.NewMissing(green.Semicolon), b)
	root := green.NewNode(green.File, first, green.NewNode(green.Block), c, eof)

	cur := blend.NewCursor(root)
	assert.Same(root, cur.Current())
	assert.Nil(cur.Parent())
	assert.Equal(a, cur.DescendToFirstToken().Current())

	cur, ok := cur.DescendToFirstChild()
	assert.True(ok)
	assert.Same(first, cur.Current())
	assert.Equal(0, cur.Offset())

	cur, ok = cur.DescendToFirstChild()
	assert.True(ok)
	assert.Same(a, cur.Current())
	assert.Same(first, cur.Parent())

	_, ok = cur.DescendToFirstChild()
	assert.False(ok, "tokens have no children")
	assert.Same(a, cur.DescendToFirstToken().Current())

	saved := cur
	cur = cur.AdvanceToSibling()
	assert.Same(b, cur.Current(), "missing tokens are skipped")
	assert.Equal(2, cur.Offset())
	assert.Same(a, saved.Current(), "cursors are values")

	cur = cur.AdvanceToSibling()
	assert.Same(c, cur.Current(), "empty nodes are skipped")
	assert.Equal(3, cur.Offset())
	assert.Same(root, cur.Parent())

	cur = cur.AdvanceToSibling()
	assert.Same(eof, cur.Current(), "the end of file is always visited")
	assert.Equal(5, cur.Offset())

	cur = cur.AdvanceToSibling()
	assert.True(cur.IsExhausted())
	assert.Nil(cur.Current())
	assert.Panics(func() { cur.Offset() })
	assert.True(cur.AdvanceToSibling().IsExhausted())
	assert.True(cur.DescendToFirstToken().IsExhausted())

	// Saved cursors keep working after others moved on.
	assert.Same(b, saved.AdvanceToSibling().Current())
}

func TestCursorNil(t *testing.T) {
	t.Parallel()

	cur := blend.NewCursor(nil)
	assert.True(t, cur.IsExhausted())
	_, ok := cur.DescendToFirstChild()
	assert.False(t, ok)
}
