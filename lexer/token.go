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
	"unicode"

	"github.com/bufbuild/reparse/green"
)

// token consumes the token at the cursor and returns its kind.
func (l *lexer) token() green.Kind {
	r, n := l.peekRune()
	switch {
	case r == -1:
		return green.EndOfFile

	case isIdentStart(r):
		word := l.takeWhile(isIdentContinue)
		if kw, ok := green.Keyword(word); ok {
			return kw
		}
		return green.Identifier

	case r >= '0' && r <= '9':
		l.number()
		return green.NumberLiteral

	case r == '"':
		l.string()
		return green.StringLiteral
	}

	if kind := l.punct(); kind != green.Unknown {
		return kind
	}

	start := l.cursor
	l.cursor += n
	l.errorf(start, l.cursor, "bad-char", "unexpected character %q", r)
	return green.BadToken
}

// number consumes digits, letters and underscores, with at most one
// fractional part.
func (l *lexer) number() {
	l.takeWhile(isNumberContinue)
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.cursor++
		l.takeWhile(isNumberContinue)
	}
}

// string consumes a double-quoted string, which may not span lines.
func (l *lexer) string() {
	start := l.cursor
	l.cursor++
	for {
		switch l.peek(0) {
		case '"':
			l.cursor++
			return
		case '\\':
			if c := l.peek(1); c != '\n' && c != 0 {
				l.cursor += 2
				continue
			}
			l.cursor++
		case '\n':
			l.errorf(start, l.cursor, "unterminated-string", "string literal is not terminated")
			return
		case 0:
			if l.done() {
				l.errorf(start, l.cursor, "unterminated-string", "string literal is not terminated")
				return
			}
			l.cursor++
		default:
			l.cursor++
		}
	}
}

var (
	singles = map[byte]green.Kind{
		'{': green.OpenBrace, '}': green.CloseBrace,
		'(': green.OpenParen, ')': green.CloseParen,
		'[': green.OpenBracket, ']': green.CloseBracket,
		';': green.Semicolon, ',': green.Comma, '.': green.Dot,
		'*': green.Star, '/': green.Slash, '%': green.Percent,
		'>': green.Greater, '=': green.Equals, '<': green.Less,
		'!': green.Bang, '+': green.Plus, '-': green.Minus,
	}

	// Indexed by first byte; only these bytes need a second look.
	compounds = map[byte]map[byte]green.Kind{
		'=': {'=': green.EqualsEquals, '>': green.Arrow},
		'<': {'=': green.LessEquals, '<': green.LessLess},
		'!': {'=': green.BangEquals},
		'+': {'=': green.PlusEquals},
		'-': {'=': green.MinusEquals},
		'&': {'&': green.AmpAmp},
		'|': {'|': green.PipePipe},
	}
)

// punct consumes the longest punctuation token at the cursor, or returns
// [green.Unknown].
//
// '>' is always a token on its own: the parser decides whether two of them,
// or '>' and '=', form a compound operator.
func (l *lexer) punct() green.Kind {
	c := l.peek(0)
	if seconds, ok := compounds[c]; ok {
		if kind, ok := seconds[l.peek(1)]; ok {
			l.cursor += 2
			return kind
		}
	}
	if kind, ok := singles[c]; ok {
		l.cursor++
		return kind
	}
	return green.Unknown
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumberContinue(r rune) bool {
	return r < 0x80 && (isIdentByte(byte(r)))
}

// isIdentByte returns whether c can appear in an ASCII identifier.
func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isIdent returns whether s is an ASCII identifier.
func isIdent(s string) bool {
	if s == "" || isDigit(s[0]) {
		return false
	}
	for i := range len(s) {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// isIdentStart returns whether r has the XID_Start property, or is '_'.
func isIdentStart(r rune) bool {
	if r < 0x80 {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}
	return unicode.In(r, unicode.Letter, unicode.Nl, unicode.Other_ID_Start) &&
		!unicode.In(r, unicode.Pattern_Syntax, unicode.Pattern_White_Space)
}

// isIdentContinue returns whether r has the XID_Continue property.
func isIdentContinue(r rune) bool {
	if r < 0x80 {
		return isIdentByte(byte(r))
	}
	return unicode.In(r,
		unicode.Letter,
		unicode.Cf, // Includes some joiners.
		unicode.Mn,
		unicode.Mc,
		unicode.Nl,
		unicode.Nd,
		unicode.Pc,
		unicode.Other_ID_Start,
	) && !unicode.In(r, unicode.Pattern_Syntax, unicode.Pattern_White_Space)
}
