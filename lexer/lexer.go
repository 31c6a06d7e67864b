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

// Package lexer turns source text into green tokens, one token at a time.
//
// Lexing is restartable: [Lexer.Lex] produces the token at any offset given
// only the [State] in effect there, and reports that state for the next
// token. Every token records how far past its own end the lexer had to look
// to produce it, which bounds the text whose change could alter it.
package lexer

import (
	"fmt"

	"github.com/bufbuild/reparse/directive"
	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/source"
)

// Mode is the contextual lexing mode at a token boundary.
type Mode uint8

const (
	// The previous token did not end a line. Directives are not recognized.
	MidLine Mode = iota
	// At the start of the file, or just past a newline.
	LineStart
)

// After returns the mode in effect after n, given the mode before it.
func (m Mode) After(n *green.Node) Mode {
	if n.Width() == 0 {
		return m
	}
	if n.EndsLine() {
		return LineStart
	}
	return MidLine
}

// String implements [fmt.Stringer].
func (m Mode) String() string {
	switch m {
	case MidLine:
		return "MidLine"
	case LineStart:
		return "LineStart"
	default:
		return fmt.Sprintf("lexer.Mode(%d)", int(m))
	}
}

// State is everything besides the text that determines what the lexer
// produces at some offset.
type State struct {
	Mode       Mode
	Directives directive.Stack
}

// Equivalent returns whether lexing in either state produces the same
// tokens.
func (s State) Equivalent(other State) bool {
	return s.Mode == other.Mode && s.Directives.Equivalent(other.Directives)
}

// Lexer is the lexer configuration.
type Lexer struct {
	// Symbols defined before the first line of every file.
	Predefined []string
}

// Start returns the state at the start of a file.
func (l *Lexer) Start() State {
	return State{
		Mode:       LineStart,
		Directives: directive.Predefined(l.Predefined...),
	}
}

// Lex lexes the token whose full span begins at offset, including its
// leading and trailing trivia, and returns it with the state after it.
//
// At the end of the file, this returns a zero-width [green.EndOfFile] token,
// which may still carry leading trivia.
func (l *Lexer) Lex(file *source.File, offset int, state State) (*green.Node, State) {
	if offset < 0 || offset > file.Len() {
		panic(fmt.Sprintf("reparse/lexer: offset %d out of range for %q (%d bytes)", offset, file.Path(), file.Len()))
	}

	lx := &lexer{
		text:      file.Text(),
		start:     offset,
		cursor:    offset,
		horizon:   offset,
		stack:     state.Directives,
		lineStart: state.Mode == LineStart,
	}

	lx.leadingTrivia()
	textStart := lx.cursor
	kind := lx.token()
	text := lx.text[textStart:lx.cursor]
	if kind != green.EndOfFile {
		lx.trailingTrivia()
	}

	tok := green.NewToken(kind, lx.leading, text, lx.trailing).
		WithLookahead(lx.horizon - lx.cursor).
		WithDiagnostics(lx.diags...)

	return tok, State{
		Mode:       state.Mode.After(tok),
		Directives: lx.stack,
	}
}

// All lexes an entire file from its start, ending with the end-of-file
// token.
func (l *Lexer) All(file *source.File) []*green.Node {
	var tokens []*green.Node
	state := l.Start()
	offset := 0
	for {
		var tok *green.Node
		tok, state = l.Lex(file, offset, state)
		tokens = append(tokens, tok)
		offset += tok.Width()
		if tok.Kind() == green.EndOfFile {
			return tokens
		}
	}
}
