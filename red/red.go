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

// Package red provides position-aware views over green syntax trees.
//
// Green nodes know their width but not where they are; a red [Node] pairs a
// green node with its absolute offset and its parent. Red nodes are cheap
// values built on demand as a tree is walked, and are never stored in the
// tree itself.
package red

import (
	"fmt"
	"iter"

	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/source"
)

// Tree is a green tree together with the text it was built from.
type Tree struct {
	File *source.File
	Root *green.Node
}

// New wraps a green tree built from file.
func New(file *source.File, root *green.Node) *Tree {
	if root.Width() != file.Len() {
		panic(fmt.Sprintf("reparse/red: tree covers %d bytes, but %q has %d", root.Width(), file.Path(), file.Len()))
	}
	return &Tree{File: file, Root: root}
}

// Node returns the red node for the root of the tree.
func (t *Tree) Node() Node {
	return Node{tree: t, green: t.Root}
}

// Node is a green node at a known position within a [Tree].
//
// The zero Node is not valid.
type Node struct {
	tree   *Tree
	green  *green.Node
	offset int
	index  int // Index within the parent.
	parent *Node
}

// Green returns the underlying green node.
func (n Node) Green() *green.Node { return n.green }

// Tree returns the tree this node belongs to.
func (n Node) Tree() *Tree { return n.tree }

// Kind returns the node's kind.
func (n Node) Kind() green.Kind { return n.green.Kind() }

// Offset returns the start of the node's full span.
func (n Node) Offset() int { return n.offset }

// FullSpan returns the span of this node, trivia included.
func (n Node) FullSpan() source.Span {
	return n.tree.File.Span(n.offset, n.offset+n.green.Width())
}

// Span returns the span of this node without the leading trivia of its first
// token and the trailing trivia of its last.
func (n Node) Span() source.Span {
	first, last := n.green.FirstToken(), n.green.LastToken()
	if first == nil {
		return n.FullSpan()
	}
	start := n.offset + first.LeadingWidth()
	end := n.offset + n.green.Width() - last.TrailingWidth()
	return n.tree.File.Span(start, max(start, end))
}

// Parent returns this node's parent, if it has one.
func (n Node) Parent() (Node, bool) {
	if n.parent == nil {
		return Node{}, false
	}
	return *n.parent, true
}

// NumChildren returns the number of children.
func (n Node) NumChildren() int { return n.green.NumChildren() }

// Children returns an iterator over the children of this node.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		parent := n
		offset := n.offset
		for i, c := range n.green.Children() {
			child := Node{tree: n.tree, green: c, offset: offset, index: i, parent: &parent}
			if !yield(child) {
				return
			}
			offset += c.Width()
		}
	}
}

// Ancestors returns an iterator over this node's ancestors, innermost first.
func (n Node) Ancestors() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for p := n.parent; p != nil; p = p.parent {
			if !yield(*p) {
				return
			}
		}
	}
}

// Tokens returns an iterator over the tokens under this node, including
// zero-width missing tokens.
func (n Node) Tokens() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		n.tokens(yield)
	}
}

func (n Node) tokens(yield func(Node) bool) bool {
	if n.green.IsToken() {
		return yield(n)
	}
	for c := range n.Children() {
		if !c.tokens(yield) {
			return false
		}
	}
	return true
}

// FindToken returns the token whose full span contains offset. An offset at
// the end of the text finds the end-of-file token.
func (n Node) FindToken(offset int) (Node, bool) {
	if offset < n.offset || offset > n.offset+n.green.Width() {
		return Node{}, false
	}

	cur := n
	for !cur.green.IsToken() {
		var next Node
		found := false
		for c := range cur.Children() {
			end := c.offset + c.green.Width()
			// Zero-width children only match an offset at the very end,
			// which is where the end-of-file token lives.
			if offset < end || (offset == end && c.green.Kind() == green.EndOfFile) {
				next, found = c, true
				break
			}
		}
		if !found {
			return Node{}, false
		}
		cur = next
	}
	return cur, true
}

// Replace returns a new tree in which this node has been replaced with
// replacement, rebuilding every ancestor. The replacement must have the
// same width.
func (n Node) Replace(replacement *green.Node) *Tree {
	if replacement.Width() != n.green.Width() {
		panic(fmt.Sprintf("reparse/red: replacing a %d-byte node with a %d-byte one", n.green.Width(), replacement.Width()))
	}

	cur, index := replacement, n.index
	for p := n.parent; p != nil; p = p.parent {
		children := make([]*green.Node, p.green.NumChildren())
		for i, c := range p.green.Children() {
			children[i] = c
		}
		children[index] = cur
		cur, index = p.green.WithChildren(children...), p.index
	}
	return &Tree{File: n.tree.File, Root: cur}
}

// String implements [fmt.Stringer].
func (n Node) String() string {
	return fmt.Sprintf("%v@%v", n.green.Kind(), n.FullSpan())
}
