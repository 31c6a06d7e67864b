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

package lexer

import (
	"github.com/bufbuild/reparse/directive"
	"github.com/bufbuild/reparse/green"
)

// leadingTrivia consumes everything before the next token: whitespace,
// newlines, comments, directives and text excluded by an inactive
// conditional.
func (l *lexer) leadingTrivia() {
	mp := l.mustProgress()
	for !l.done() {
		mp.check()

		if !l.stack.Active() && l.disabledText() {
			continue
		}

		start := l.cursor
		switch c := l.peek(0); {
		case isSpace(c):
			l.space(&l.leading)
		case c == '\n':
			l.cursor++
			l.leading = append(l.leading, green.Trivia{Kind: green.EndOfLine, Text: "\n"})
			l.lineStart = true
		case c == '/' && l.peek(1) == '/':
			l.lineComment(&l.leading)
			l.lineStart = false
		case c == '/' && l.peek(1) == '*':
			l.blockComment(&l.leading)
			l.lineStart = false
		case c == '#' && l.lineStart:
			l.directive()
		default:
			return
		}

		if l.cursor == start {
			return
		}
	}

	if l.stack.InGroup() {
		l.errorf(l.cursor, l.cursor, "unterminated-if", "expected #endif before end of file")
	}
}

// trailingTrivia consumes trivia after a token, up to and including the end
// of its line.
func (l *lexer) trailingTrivia() {
	for !l.done() {
		switch c := l.peek(0); {
		case isSpace(c):
			l.space(&l.trailing)
		case c == '\n':
			l.cursor++
			l.trailing = append(l.trailing, green.Trivia{Kind: green.EndOfLine, Text: "\n"})
			return
		case c == '/' && l.peek(1) == '/':
			l.lineComment(&l.trailing)
		case c == '/' && l.peek(1) == '*':
			l.blockComment(&l.trailing)
		default:
			return
		}
	}
}

func (l *lexer) space(out *[]green.Trivia) {
	start := l.cursor
	for isSpace(l.peek(0)) {
		l.cursor++
	}
	*out = append(*out, green.Trivia{Kind: green.Whitespace, Text: l.text[start:l.cursor]})
}

// lineComment consumes a comment up to, but not including, the newline.
func (l *lexer) lineComment(out *[]green.Trivia) {
	start := l.cursor
	if _, ok := l.seekInclusive("\n"); ok {
		l.cursor--
	} else {
		l.seekEOF()
	}
	*out = append(*out, green.Trivia{Kind: green.LineComment, Text: l.text[start:l.cursor]})
}

func (l *lexer) blockComment(out *[]green.Trivia) {
	start := l.cursor
	l.cursor += 2
	if _, ok := l.seekInclusive("*/"); !ok {
		l.seekEOF()
		l.errorf(start, start+2, "unterminated-comment", "block comment is not terminated")
	}
	*out = append(*out, green.Trivia{Kind: green.BlockComment, Text: l.text[start:l.cursor]})
}

// disabledText consumes whole lines excluded by an inactive conditional, up
// to the next line holding a conditional directive. Returns false if there
// was nothing to consume.
func (l *lexer) disabledText() bool {
	start := l.cursor
	for !l.done() {
		if l.lineStart && l.conditionalAhead() {
			break
		}
		if _, ok := l.seekInclusive("\n"); !ok {
			l.seekEOF()
		}
		l.lineStart = true
	}

	if l.cursor == start {
		return false
	}
	l.leading = append(l.leading, green.Trivia{Kind: green.DisabledText, Text: l.text[start:l.cursor]})
	return true
}

// conditionalAhead returns whether the line at the cursor is an #if, #elif,
// #else or #endif directive.
func (l *lexer) conditionalAhead() bool {
	i := 0
	for isSpace(l.peek(i)) {
		i++
	}
	if l.peek(i) != '#' {
		return false
	}
	i++
	for isSpace(l.peek(i)) {
		i++
	}
	j := i
	for c := l.peek(j); c >= 'a' && c <= 'z'; c = l.peek(j) {
		j++
	}
	return directive.Lookup(l.text[l.cursor+i:l.cursor+j]).IsConditional()
}
