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

package blend

import (
	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/internal/arena"
)

// frame is one step of the path from the old root to the cursor's position.
// Frames are never modified once allocated.
type frame struct {
	node   *green.Node
	parent arena.Pointer[frame]
	index  int // Position of node among its parent's children.
	offset int // Start of node's full span in the old text.
}

// Cursor is a position in an old tree.
//
// Cursors are values: every operation returns a new cursor and leaves the
// receiver usable, so a cursor can be saved and restored by copying it.
//
// Zero-width nodes other than the end-of-file token are never visited.
type Cursor struct {
	frames *arena.Arena[frame]
	at     arena.Pointer[frame] // Nil when exhausted.
}

// NewCursor returns a cursor positioned at root.
//
// Cursors derived from the result share a frame arena, which must not be
// used by more than one goroutine.
func NewCursor(root *green.Node) Cursor {
	frames := new(arena.Arena[frame])
	if root == nil {
		return Cursor{frames: frames}
	}
	return Cursor{
		frames: frames,
		at:     frames.New(frame{node: root}),
	}
}

// IsExhausted returns whether the cursor has moved past the whole tree.
func (c Cursor) IsExhausted() bool {
	return c.at.Nil()
}

// Current returns the node at the cursor, or nil if it is exhausted.
func (c Cursor) Current() *green.Node {
	if f := c.frame(); f != nil {
		return f.node
	}
	return nil
}

// Offset returns the start of the current node's full span in the old text.
//
// Panics if the cursor is exhausted.
func (c Cursor) Offset() int {
	f := c.frame()
	if f == nil {
		panic("reparse/blend: offset of exhausted cursor")
	}
	return f.offset
}

// Parent returns the parent of the current node, or nil at the root.
func (c Cursor) Parent() *green.Node {
	f := c.frame()
	if f == nil || f.parent.Nil() {
		return nil
	}
	return f.parent.In(c.frames).node
}

// DescendToFirstChild moves to the first visible child of the current node.
// If it has none, this moves to the next sibling instead.
//
// Returns false, and the receiver unchanged, if the cursor is at a token or
// exhausted.
func (c Cursor) DescendToFirstChild() (Cursor, bool) {
	f := c.frame()
	if f == nil || f.node.IsToken() {
		return c, false
	}
	if next, ok := c.child(c.at, f, 0, f.offset); ok {
		return next, true
	}
	return c.AdvanceToSibling(), true
}

// DescendToFirstToken descends until the cursor is at a token. It does
// nothing if the cursor is already at one, or is exhausted.
func (c Cursor) DescendToFirstToken() Cursor {
	for {
		n := c.Current()
		if n == nil || n.IsToken() {
			return c
		}
		c, _ = c.DescendToFirstChild()
	}
}

// AdvanceToSibling moves past the current node: to its next visible
// sibling, or else to the next sibling of the nearest ancestor that has one.
// Past the last node of the tree, the cursor is exhausted.
func (c Cursor) AdvanceToSibling() Cursor {
	f := c.frame()
	if f == nil {
		return c
	}

	index, offset := f.index+1, f.offset+f.node.Width()
	for parent := f.parent; !parent.Nil(); {
		pf := parent.In(c.frames)
		if next, ok := c.child(parent, pf, index, offset); ok {
			return next
		}
		index, offset = pf.index+1, pf.offset+pf.node.Width()
		parent = pf.parent
	}
	return Cursor{frames: c.frames}
}

// child moves to the first visible child of the node in parent, starting at
// index i, where the child at i begins at offset.
func (c Cursor) child(parent arena.Pointer[frame], pf *frame, i, offset int) (Cursor, bool) {
	for ; i < pf.node.NumChildren(); i++ {
		n := pf.node.Child(i)
		if n.Width() > 0 || n.Kind() == green.EndOfFile {
			return Cursor{
				frames: c.frames,
				at: c.frames.New(frame{
					node:   n,
					parent: parent,
					index:  i,
					offset: offset,
				}),
			}, true
		}
	}
	return Cursor{}, false
}

func (c Cursor) frame() *frame {
	if c.frames == nil {
		return nil
	}
	return c.at.In(c.frames)
}
