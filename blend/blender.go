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

// Package blend splices an old syntax tree into the token stream of a new
// text.
//
// A [Blender] walks an old tree and the new text in lock-step. At each step
// it either reuses the next old node or token unchanged, when no change can
// have altered it, or lexes a fresh token from the new text. A parser pulls
// units out of it one at a time with [Blender.ReadNode] and
// [Blender.ReadToken], and sees the same tokens it would see lexing the new
// text from scratch.
//
// Blenders are immutable values. Each unit carries the blender positioned
// after it; keeping an older blender is how a parser backtracks.
package blend

import (
	"context"
	"errors"
	"fmt"

	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/lexer"
	"github.com/bufbuild/reparse/source"
)

// ErrAborted is returned, wrapped together with the context's cause, when a
// blender is cancelled.
var ErrAborted = errors.New("reparse/blend: aborted")

// Lexer produces the token at an offset of a file, given the lexer state
// there. It must be deterministic.
type Lexer interface {
	Lex(file *source.File, offset int, state lexer.State) (*green.Node, lexer.State)
}

// Unit is one node or token produced by a [Blender].
type Unit struct {
	Node   *green.Node
	Offset int  // Start of Node's full span in the new text.
	Reused bool // Whether Node came from the old tree.

	// The blender positioned just past this unit.
	Next Blender
}

// End returns the offset just past this unit in the new text.
func (u Unit) End() int {
	return u.Offset + u.Node.Width()
}

// session is what all blenders derived from one call to [New] share.
type session struct {
	lexer    Lexer
	file     *source.File
	oldWidth int
}

// Blender produces the units of a new text, reusing an old tree where it
// can.
type Blender struct {
	session *session

	cursor  Cursor
	changes change.Set

	newPos int
	// How far the old-tree scan is ahead of the new text: positive when new
	// text must be lexed to catch up, negative when old tokens must be
	// skipped.
	delta int

	oldState, newState lexer.State
}

// New returns a blender that produces units for file, which is the text of
// old with changes applied.
//
// start is the lexer state at the beginning of the file. old may be nil, in
// which case every token is lexed.
func New(lx Lexer, old *green.Node, file *source.File, changes change.Set, start lexer.State) Blender {
	b := Blender{
		session:  &session{lexer: lx, file: file},
		cursor:   NewCursor(old),
		changes:  changes,
		oldState: start,
		newState: start,
	}
	if old != nil {
		b.session.oldWidth = old.Width()
		b.cursor, _ = b.cursor.DescendToFirstChild()
		if want := old.Width() + changes.Delta(); want != file.Len() {
			panic(fmt.Sprintf("reparse/blend: changes turn %d bytes into %d, but new text has %d", old.Width(), want, file.Len()))
		}
	}
	return b
}

// Offset returns the offset in the new text of the next unit.
func (b Blender) Offset() int {
	return b.newPos
}

// State returns the lexer state at the next unit.
func (b Blender) State() lexer.State {
	return b.newState
}

// File returns the new text.
func (b Blender) File() *source.File {
	return b.session.file
}

// ReadNode returns the next unit, reusing the largest old node possible.
func (b Blender) ReadNode(ctx context.Context) (Unit, error) {
	return b.read(ctx, false)
}

// ReadToken returns the next token, either reused or lexed.
func (b Blender) ReadToken(ctx context.Context) (Unit, error) {
	return b.read(ctx, true)
}

func (b Blender) read(ctx context.Context, asToken bool) (Unit, error) {
	if err := ctx.Err(); err != nil {
		return Unit{}, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
	}

	for {
		b.skipPastChanges()

		switch {
		case b.cursor.IsExhausted() || b.delta > 0:
			return b.lex(), nil
		case b.delta < 0:
			b.skipOld()
			continue
		}

		if asToken {
			b.cursor = b.cursor.DescendToFirstToken()
		}
		if unit, ok := b.reuse(); ok {
			return unit, nil
		}

		if b.cursor.Current().IsToken() {
			b.skipOld()
		} else {
			b.cursor, _ = b.cursor.DescendToFirstChild()
		}
	}
}

// lex lexes a new token at the current offset.
func (b Blender) lex() Unit {
	tok, state := b.session.lexer.Lex(b.session.file, b.newPos, b.newState)
	unit := Unit{Node: tok, Offset: b.newPos}

	b.newPos += tok.Width()
	b.delta -= tok.Width()
	b.newState = state
	b.skipPastChanges()

	unit.Next = b
	return unit
}

// skipOld moves past the next old token without emitting it.
func (b *Blender) skipOld() {
	b.cursor = b.cursor.DescendToFirstToken()
	tok := b.cursor.Current()

	b.delta += tok.Width()
	b.oldState = advance(b.oldState, tok)
	b.cursor = b.cursor.AdvanceToSibling()
	b.skipPastChanges()
}

// skipPastChanges consumes the changes that end at or before the old-tree
// scan position.
func (b *Blender) skipPastChanges() {
	oldPos := b.session.oldWidth
	if !b.cursor.IsExhausted() {
		oldPos = b.cursor.Offset()
	}

	for {
		r, ok := b.changes.Next()
		if !ok || oldPos < r.End {
			return
		}
		b.changes = b.changes.Pop()
		b.delta += r.Delta()
	}
}

// reuse emits the node at the cursor if it is safe to.
func (b Blender) reuse() (Unit, bool) {
	n := b.cursor.Current()
	if !b.reusable(n) {
		return Unit{}, false
	}

	unit := Unit{Node: n, Offset: b.newPos, Reused: true}
	b.newPos += n.Width()
	b.cursor = b.cursor.AdvanceToSibling()
	b.oldState = advance(b.oldState, n)
	b.newState = advance(b.newState, n)

	unit.Next = b
	return unit, true
}

// advance replays the effects of n on a lexer state.
func advance(state lexer.State, n *green.Node) lexer.State {
	for d := range n.Directives() {
		state.Directives = state.Directives.Apply(d)
	}
	state.Mode = state.Mode.After(n)
	return state
}
