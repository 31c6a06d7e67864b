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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bufbuild/reparse/directive"
	"github.com/bufbuild/reparse/green"
)

// lexer is the book-keeping for lexing a single token.
type lexer struct {
	text string

	start, cursor int
	// One past the last byte examined, where examining the end of the text
	// counts as examining the byte at len(text).
	horizon int

	stack     directive.Stack
	lineStart bool // Only whitespace since the last newline.

	leading, trailing []green.Trivia
	diags             []green.Diagnostic
}

// see records that the byte at idx was examined.
func (l *lexer) see(idx int) {
	l.horizon = max(l.horizon, min(idx, len(l.text))+1)
}

// done returns whether the cursor is at the end of the text.
func (l *lexer) done() bool {
	l.see(l.cursor)
	return l.cursor >= len(l.text)
}

// peek returns the byte i bytes past the cursor, or 0 past the end.
func (l *lexer) peek(i int) byte {
	idx := l.cursor + i
	l.see(idx)
	if idx >= len(l.text) {
		return 0
	}
	return l.text[idx]
}

// peekRune returns the rune at the cursor and its length; at the end of the
// text it returns -1.
func (l *lexer) peekRune() (rune, int) {
	if l.done() {
		return -1, 0
	}
	r, n := utf8.DecodeRuneInString(l.text[l.cursor:])
	if r == utf8.RuneError && n == 1 {
		// Deciding that an encoding is invalid may take a look at bytes past
		// the first.
		l.see(l.cursor + utf8.UTFMax - 1)
	} else {
		l.see(l.cursor + n - 1)
	}
	return r, n
}

// takeWhile consumes runes while they match f.
func (l *lexer) takeWhile(f func(rune) bool) string {
	start := l.cursor
	for {
		r, n := l.peekRune()
		if r == -1 || !f(r) {
			break
		}
		l.cursor += n
	}
	return l.text[start:l.cursor]
}

// seekInclusive consumes through the next occurrence of needle.
func (l *lexer) seekInclusive(needle string) (string, bool) {
	rest := l.text[l.cursor:]
	idx := strings.Index(rest, needle)
	if idx == -1 {
		return "", false
	}
	l.cursor += idx + len(needle)
	l.see(l.cursor - 1)
	return rest[:idx+len(needle)], true
}

// seekEOF consumes the rest of the text.
func (l *lexer) seekEOF() string {
	rest := l.text[l.cursor:]
	l.cursor = len(l.text)
	l.see(l.cursor)
	return rest
}

// errorf records a diagnostic for the absolute span [start, end).
func (l *lexer) errorf(start, end int, code, format string, args ...any) {
	l.diags = append(l.diags, green.Diagnostic{
		Offset:  start - l.start,
		Width:   end - start,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// mustProgress returns a progress checker for this lexer.
func (l *lexer) mustProgress() mustProgress {
	return mustProgress{l, -1}
}

// mustProgress turns lexer loops that stop advancing into panics rather than
// hangs.
type mustProgress struct {
	l    *lexer
	prev int
}

// check panics if the lexer has not advanced since the last call.
func (mp *mustProgress) check() {
	if mp.prev == mp.l.cursor {
		panic(fmt.Sprintf("reparse/lexer: no progress at offset %d", mp.l.cursor))
	}
	mp.prev = mp.l.cursor
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
