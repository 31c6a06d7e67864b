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
	"strings"

	"github.com/bufbuild/reparse/directive"
	"github.com/bufbuild/reparse/green"
)

// directive consumes a directive line, including its newline, evaluates it
// against the current stack and records the result as trivia.
func (l *lexer) directive() {
	start := l.cursor
	line, ok := l.seekInclusive("\n")
	if !ok {
		line = l.seekEOF()
	}

	d := l.evaluate(start, line)
	l.stack = l.stack.Apply(d)
	l.leading = append(l.leading, green.Trivia{Kind: green.DirectiveTrivia, Text: line, Directive: d})
	l.lineStart = ok
}

// evaluate evaluates the directive line starting at the absolute offset
// start.
func (l *lexer) evaluate(start int, line string) directive.Directive {
	body := strings.TrimRight(line, "\r\n")
	if idx := strings.Index(body, "//"); idx != -1 {
		body = body[:idx]
	}
	end := start + len(body)

	rest := strings.TrimLeft(body[1:], " \t")
	wordLen := 0
	for wordLen < len(rest) && isIdentByte(rest[wordLen]) {
		wordLen++
	}
	word := rest[:wordLen]
	rest = strings.TrimSpace(rest[wordLen:])

	s := l.stack
	bad := func(code, format string, args ...any) directive.Directive {
		l.errorf(start, end, code, format, args...)
		return directive.Directive{Kind: directive.Bad, Active: s.Active()}
	}

	switch kind := directive.Lookup(word); kind {
	case directive.If:
		cond, ok := l.condition(rest, s)
		if !ok {
			// Still open the group, so that its #endif matches.
			l.errorf(start, end, "bad-condition", "malformed condition in #if")
		}
		return directive.Directive{Kind: kind, Active: s.Active() && cond, BranchTaken: cond}

	case directive.Elif:
		if !s.InGroup() || s.HasElse() {
			return bad("unexpected-directive", "#elif without matching #if")
		}
		cond, ok := l.condition(rest, s)
		if !ok {
			l.errorf(start, end, "bad-condition", "malformed condition in #elif")
		}
		taken := !s.PrevBranchTaken() && cond
		return directive.Directive{Kind: kind, Active: s.GroupActive() && taken, BranchTaken: taken}

	case directive.Else:
		if !s.InGroup() || s.HasElse() {
			return bad("unexpected-directive", "#else without matching #if")
		}
		taken := !s.PrevBranchTaken()
		return directive.Directive{Kind: kind, Active: s.GroupActive() && taken, BranchTaken: taken}

	case directive.Endif:
		if !s.InGroup() {
			return bad("unexpected-directive", "#endif without matching #if")
		}
		return directive.Directive{Kind: kind, Active: s.GroupActive()}

	case directive.Define, directive.Undef:
		if !isIdent(rest) {
			return bad("bad-symbol", "%v expects a symbol name", kind)
		}
		return directive.Directive{Kind: kind, Symbol: rest, Active: s.Active()}

	case directive.Region, directive.EndRegion:
		return directive.Directive{Kind: kind, Active: s.Active()}

	default:
		if word == "" {
			return bad("bad-directive", "expected directive name after #")
		}
		return bad("bad-directive", "unknown directive #%s", word)
	}
}

// condition evaluates a conditional expression made of symbols, true, false,
// !, &&, || and parentheses.
//
// A malformed condition evaluates to false.
func (l *lexer) condition(text string, s directive.Stack) (value, ok bool) {
	p := &condition{text: text, stack: s}
	value = p.or()
	p.skipSpace()
	if p.failed || p.pos != len(p.text) {
		return false, false
	}
	return value, true
}

type condition struct {
	text   string
	pos    int
	stack  directive.Stack
	failed bool
}

func (p *condition) or() bool {
	v := p.and()
	for p.eat("||") {
		w := p.and()
		v = v || w
	}
	return v
}

func (p *condition) and() bool {
	v := p.unary()
	for p.eat("&&") {
		w := p.unary()
		v = v && w
	}
	return v
}

func (p *condition) unary() bool {
	if p.eat("!") {
		return !p.unary()
	}
	return p.primary()
}

func (p *condition) primary() bool {
	if p.eat("(") {
		v := p.or()
		if !p.eat(")") {
			p.failed = true
		}
		return v
	}

	p.skipSpace()
	start := p.pos
	for p.pos < len(p.text) && isIdentByte(p.text[p.pos]) {
		p.pos++
	}
	switch sym := p.text[start:p.pos]; sym {
	case "":
		p.failed = true
		return false
	case "true":
		return true
	case "false":
		return false
	default:
		return p.stack.IsDefined(sym)
	}
}

func (p *condition) eat(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.text[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *condition) skipSpace() {
	for p.pos < len(p.text) && isSpace(p.text[p.pos]) {
		p.pos++
	}
}
