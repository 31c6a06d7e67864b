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

// Package green defines immutable, position-independent syntax trees.
//
// A [Node] knows its kind, its full width and its children, but not where it
// is. Because nothing in a node depends on its absolute position, a subtree
// that an edit did not affect can be shared, pointer for pointer, between the
// tree before the edit and the tree after it.
//
// Tokens are nodes without children that carry text and attached [Trivia].
// Composite nodes compute their width and flags from their children once, at
// construction.
package green

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/bufbuild/reparse/directive"
)

// Flags are summary bits for a node.
type Flags uint8

const (
	// The token was synthesized by the parser and has no text.
	Missing Flags = 1 << iota
	// The token carries trivia made of tokens the parser skipped.
	SkippedText
	// The node or a descendant carries a diagnostic.
	ContainsDiagnostics
	// The node or a descendant carries an annotation.
	ContainsAnnotations
	// The node's trivia, or a descendant's, contains a directive.
	ContainsDirectives

	// Flags that propagate from children to parents.
	inherited = SkippedText | ContainsDiagnostics | ContainsAnnotations | ContainsDirectives
)

// String implements [fmt.Stringer].
func (f Flags) String() string {
	names := []string{"Missing", "SkippedText", "ContainsDiagnostics", "ContainsAnnotations", "ContainsDirectives"}
	var out []string
	for i, name := range names {
		if f&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return strings.Join(out, "|")
}

// Diagnostic is an error recorded on a node. Its offset is relative to the
// start of the node's full span.
type Diagnostic struct {
	Offset, Width int
	Code          string
	Message       string
}

// Annotation is out-of-band data a consumer attached to a node.
type Annotation struct {
	Kind string
	Data any
}

// Node is an immutable syntax tree node: a token or a composite.
//
// A nil *Node is not a valid node.
type Node struct {
	kind      Kind
	flags     Flags
	width     int
	lookahead int

	// Tokens only.
	text              string
	leading, trailing []Trivia

	// Composites only.
	children []*Node

	diagnostics []Diagnostic
	annotations []Annotation
}

// NewToken builds a token from its text and trivia.
func NewToken(kind Kind, leading []Trivia, text string, trailing []Trivia) *Node {
	if !kind.IsToken() {
		panic(fmt.Sprintf("reparse/green: %v is not a token kind", kind))
	}
	n := &Node{
		kind:     kind,
		text:     text,
		leading:  leading,
		trailing: trailing,
		width:    widthOf(leading) + len(text) + widthOf(trailing),
	}
	for _, t := range leading {
		n.flags |= t.flags()
	}
	for _, t := range trailing {
		n.flags |= t.flags()
	}
	return n
}

// NewMissing builds a zero-width token standing in for one the parser
// expected but did not find.
func NewMissing(kind Kind) *Node {
	n := NewToken(kind, nil, "", nil)
	n.flags |= Missing
	return n
}

// NewNode builds a composite node.
//
// Its full width is the sum of the children's, and its lookahead is the
// furthest any child's lookahead reaches past the node's end.
func NewNode(kind Kind, children ...*Node) *Node {
	if !kind.IsNode() {
		panic(fmt.Sprintf("reparse/green: %v is not a node kind", kind))
	}
	n := &Node{kind: kind, children: children}
	for _, c := range children {
		n.width += c.width
		n.flags |= c.flags & inherited
	}

	after := 0
	for _, c := range slices.Backward(children) {
		n.lookahead = max(n.lookahead, c.lookahead-after)
		after += c.width
	}
	return n
}

// WithLookahead returns a copy of this token recording that producing it
// required looking at k characters past its end.
func (n *Node) WithLookahead(k int) *Node {
	if !n.IsToken() {
		panic("reparse/green: lookahead of a composite node is derived from its children")
	}
	m := *n
	m.lookahead = max(k, 0)
	return &m
}

// WithLeading returns a copy of this token with extra trivia prepended to its
// leading trivia.
func (n *Node) WithLeading(trivia ...Trivia) *Node {
	if !n.IsToken() {
		panic("reparse/green: cannot attach trivia to a composite node")
	}
	m := NewToken(n.kind, slices.Concat(trivia, n.leading), n.text, n.trailing)
	m.flags |= n.flags & (Missing | ContainsDiagnostics | ContainsAnnotations)
	m.lookahead = n.lookahead
	m.diagnostics = n.diagnostics
	m.annotations = n.annotations
	return m
}

// WithKind returns a copy of this token reclassified as kind.
func (n *Node) WithKind(kind Kind) *Node {
	if !n.IsToken() || !kind.IsToken() {
		panic("reparse/green: only tokens can be reclassified")
	}
	m := *n
	m.kind = kind
	return &m
}

// WithDiagnostics returns a copy of this node with additional diagnostics.
func (n *Node) WithDiagnostics(diags ...Diagnostic) *Node {
	if len(diags) == 0 {
		return n
	}
	m := *n
	m.diagnostics = slices.Concat(n.diagnostics, diags)
	m.flags |= ContainsDiagnostics
	return &m
}

// WithAnnotations returns a copy of this node with additional annotations.
func (n *Node) WithAnnotations(annots ...Annotation) *Node {
	if len(annots) == 0 {
		return n
	}
	m := *n
	m.annotations = slices.Concat(n.annotations, annots)
	m.flags |= ContainsAnnotations
	return &m
}

// WithChildren returns a copy of this composite with new children, keeping
// its own diagnostics and annotations.
func (n *Node) WithChildren(children ...*Node) *Node {
	if n.IsToken() {
		panic("reparse/green: tokens have no children")
	}
	m := NewNode(n.kind, children...)
	m.diagnostics = n.diagnostics
	m.annotations = n.annotations
	if len(m.diagnostics) > 0 {
		m.flags |= ContainsDiagnostics
	}
	if len(m.annotations) > 0 {
		m.flags |= ContainsAnnotations
	}
	return m
}

// Kind returns this node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Flags returns this node's summary flags.
func (n *Node) Flags() Flags { return n.flags }

// Has returns whether all of the given flags are set.
func (n *Node) Has(f Flags) bool { return n.flags&f == f }

// Width returns this node's full width, including trivia.
func (n *Node) Width() int { return n.width }

// Lookahead returns how many characters past its full end the lexer examined
// to produce this node.
func (n *Node) Lookahead() int { return n.lookahead }

// IsToken returns whether this node is a token.
func (n *Node) IsToken() bool { return n.kind.IsToken() }

// IsMissing returns whether this is a token synthesized by the parser.
func (n *Node) IsMissing() bool { return n.flags&Missing != 0 }

// Text returns a token's text, without trivia. It is empty for composites.
func (n *Node) Text() string { return n.text }

// Leading returns a token's leading trivia.
func (n *Node) Leading() []Trivia { return slices.Clip(n.leading) }

// Trailing returns a token's trailing trivia.
func (n *Node) Trailing() []Trivia { return slices.Clip(n.trailing) }

// LeadingWidth returns the width of the leading trivia of this node's first
// token.
func (n *Node) LeadingWidth() int {
	tok := n.FirstToken()
	if tok == nil {
		return 0
	}
	return widthOf(tok.leading)
}

// TrailingWidth returns the width of the trailing trivia of this node's last
// token.
func (n *Node) TrailingWidth() int {
	tok := n.LastToken()
	if tok == nil {
		return 0
	}
	return widthOf(tok.trailing)
}

// NumChildren returns the number of children of a composite.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the ith child of a composite.
func (n *Node) Child(i int) *Node { return n.children[i] }

// Children yields the children of a composite along with their indices.
func (n *Node) Children() iter.Seq2[int, *Node] {
	return slices.All(n.children)
}

// Diagnostics returns the diagnostics recorded on this node itself.
func (n *Node) Diagnostics() []Diagnostic { return slices.Clip(n.diagnostics) }

// Annotations returns the annotations recorded on this node itself.
func (n *Node) Annotations() []Annotation { return slices.Clip(n.annotations) }

// FirstToken returns the leftmost token of this node, or nil if it is a
// composite without tokens.
func (n *Node) FirstToken() *Node {
	for !n.IsToken() {
		if len(n.children) == 0 {
			return nil
		}
		n = n.children[0]
	}
	return n
}

// LastToken returns the rightmost token of this node, including zero-width
// missing tokens, or nil if it is a composite without tokens.
func (n *Node) LastToken() *Node {
	for !n.IsToken() {
		if len(n.children) == 0 {
			return nil
		}
		n = n.children[len(n.children)-1]
	}
	return n
}

// Tokens yields every token under this node in order, including missing
// tokens but not skipped tokens held in trivia.
func (n *Node) Tokens() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.tokens(yield)
	}
}

func (n *Node) tokens(yield func(*Node) bool) bool {
	if n.IsToken() {
		return yield(n)
	}
	for _, c := range n.children {
		if !c.tokens(yield) {
			return false
		}
	}
	return true
}

// Directives yields the directives in this node's trivia, in text order.
func (n *Node) Directives() iter.Seq[directive.Directive] {
	return func(yield func(directive.Directive) bool) {
		if n.flags&ContainsDirectives == 0 {
			return
		}
		n.directives(yield)
	}
}

func (n *Node) directives(yield func(directive.Directive) bool) bool {
	if n.flags&ContainsDirectives == 0 {
		return true
	}
	if !n.IsToken() {
		for _, c := range n.children {
			if !c.directives(yield) {
				return false
			}
		}
		return true
	}

	for _, trivia := range [][]Trivia{n.leading, n.trailing} {
		for _, t := range trivia {
			switch t.Kind {
			case DirectiveTrivia:
				if !yield(t.Directive) {
					return false
				}
			case SkippedTokens:
				for _, tok := range t.Skipped {
					if !tok.directives(yield) {
						return false
					}
				}
			}
		}
	}
	return true
}

// EndsLine returns whether this node's full text ends in a newline.
func (n *Node) EndsLine() bool {
	b, ok := n.lastByte()
	return ok && b == '\n'
}

func (n *Node) lastByte() (byte, bool) {
	if !n.IsToken() {
		for _, c := range slices.Backward(n.children) {
			if b, ok := c.lastByte(); ok {
				return b, true
			}
		}
		return 0, false
	}

	if b, ok := lastByteOf(n.trailing); ok {
		return b, true
	}
	if n.text != "" {
		return n.text[len(n.text)-1], true
	}
	return lastByteOf(n.leading)
}

func lastByteOf(trivia []Trivia) (byte, bool) {
	for _, t := range slices.Backward(trivia) {
		if t.Kind == SkippedTokens {
			for _, tok := range slices.Backward(t.Skipped) {
				if b, ok := tok.lastByte(); ok {
					return b, true
				}
			}
			continue
		}
		if t.Text != "" {
			return t.Text[len(t.Text)-1], true
		}
	}
	return 0, false
}

// FullText returns this node's text, including all trivia.
func (n *Node) FullText() string {
	var b strings.Builder
	b.Grow(n.width)
	n.writeTo(&b)
	return b.String()
}

// WriteTo writes this node's full text to w.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	m, err := io.WriteString(w, n.FullText())
	return int64(m), err
}

func (n *Node) writeTo(b *strings.Builder) {
	if !n.IsToken() {
		for _, c := range n.children {
			c.writeTo(b)
		}
		return
	}
	for _, t := range n.leading {
		b.WriteString(t.FullText())
	}
	b.WriteString(n.text)
	for _, t := range n.trailing {
		b.WriteString(t.FullText())
	}
}
