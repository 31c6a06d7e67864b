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

package parser

import "github.com/bufbuild/reparse/green"

// Binding power of each binary operator; higher binds tighter.
var precedence = map[green.Kind]int{
	green.PipePipe:       1,
	green.AmpAmp:         2,
	green.EqualsEquals:   3,
	green.BangEquals:     3,
	green.Less:           4,
	green.LessEquals:     4,
	green.Greater:        4,
	green.GreaterEquals:  4,
	green.LessLess:       5,
	green.GreaterGreater: 5,
	green.Plus:           6,
	green.Minus:          6,
	green.Star:           7,
	green.Slash:          7,
	green.Percent:        7,
}

// parseExpr parses a full expression, assignments included.
func parseExpr(p *parser) *green.Node {
	lhs := parseBinary(p, 1)
	if p.peekIs(green.Equals, green.PlusEquals, green.MinusEquals) {
		op := p.take()
		return p.node(green.AssignExpr, lhs, op, parseExpr(p))
	}
	return lhs
}

// parseBinary parses operators binding at least as tight as prec.
func parseBinary(p *parser, prec int) *green.Node {
	lhs := parseUnary(p)
	for {
		kind, n := peekOperator(p)
		next := precedence[kind]
		if next == 0 || next < prec {
			return lhs
		}
		op := takeOperator(p, kind, n)
		lhs = p.node(green.BinaryExpr, lhs, op, parseBinary(p, next+1))
	}
}

// peekOperator returns the kind of the operator at the next token, and how
// many tokens it spans. The lexer never produces >= or >>, since inside
// type arguments those are two tokens; here a > directly followed by
// another token makes one operator.
func peekOperator(p *parser) (green.Kind, int) {
	tok := p.peek(0)
	if tok.Kind() != green.Greater || len(tok.Trailing()) > 0 {
		return tok.Kind(), 1
	}

	next := p.peek(1)
	if len(next.Leading()) > 0 {
		return tok.Kind(), 1
	}
	switch next.Kind() {
	case green.Greater:
		return green.GreaterGreater, 2
	case green.Equals:
		return green.GreaterEquals, 2
	default:
		return tok.Kind(), 1
	}
}

// takeOperator consumes the operator found by peekOperator.
func takeOperator(p *parser, kind green.Kind, n int) *green.Node {
	first := p.take()
	if n == 1 {
		return first
	}
	second := p.take()
	return green.NewToken(kind, first.Leading(), first.Text()+second.Text(), second.Trailing()).
		WithLookahead(second.Lookahead())
}

func parseUnary(p *parser) *green.Node {
	if p.peekIs(green.Bang, green.Minus) {
		op := p.take()
		return p.node(green.UnaryExpr, op, parseUnary(p))
	}
	return parsePostfix(p)
}

func parsePostfix(p *parser) *green.Node {
	expr, ok := parsePrimary(p)
	if !ok {
		return expr
	}
	for {
		switch p.peek(0).Kind() {
		case green.OpenParen:
			expr = p.node(green.CallExpr, expr, parseArgs(p))
		case green.OpenBracket:
			open := p.take()
			index := parseExpr(p)
			expr = p.node(green.IndexExpr, expr, open, index, p.expect(green.CloseBracket))
		case green.Dot:
			dot := p.take()
			expr = p.node(green.MemberExpr, expr, dot, p.expect(green.Identifier))
		default:
			return expr
		}
	}
}

// parsePrimary parses an operand. If there is none, it returns a name made
// of a missing identifier and false.
func parsePrimary(p *parser) (*green.Node, bool) {
	switch p.peek(0).Kind() {
	case green.Identifier:
		if p.peek(1).Kind() == green.Arrow {
			param := p.take()
			arrow := p.take()
			return p.node(green.LambdaExpr, param, arrow, parseExpr(p)), true
		}
		return p.node(green.NameExpr, p.take()), true
	case green.NumberLiteral, green.StringLiteral, green.TrueKeyword, green.FalseKeyword:
		return p.node(green.LiteralExpr, p.take()), true
	case green.OpenParen:
		open := p.take()
		inner := parseExpr(p)
		return p.node(green.ParenExpr, open, inner, p.expect(green.CloseParen)), true
	default:
		return p.node(green.NameExpr, green.NewMissing(green.Identifier)), false
	}
}

func parseArgs(p *parser) *green.Node {
	children := []*green.Node{p.take()}
	if !p.peekIs(green.CloseParen) {
		for {
			children = append(children, parseExpr(p))
			if !p.peekIs(green.Comma) {
				break
			}
			children = append(children, p.take())
		}
	}
	children = append(children, p.expect(green.CloseParen))
	return p.node(green.ArgList, children...)
}

// startsExpr returns whether a token of this kind can begin an expression.
func startsExpr(kind green.Kind) bool {
	switch kind {
	case green.Identifier, green.NumberLiteral, green.StringLiteral,
		green.TrueKeyword, green.FalseKeyword, green.OpenParen,
		green.Bang, green.Minus:
		return true
	default:
		return false
	}
}
