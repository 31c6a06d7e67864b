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

// parseFile parses a whole file.
func parseFile(p *parser) *green.Node {
	children := parseStmts(p, false)
	children = append(children, p.expect(green.EndOfFile))
	return p.node(green.File, children...)
}

// parseStmts parses statements up to the end of the file, or up to a
// closing brace if inBlock is set. Tokens that cannot start a statement
// are skipped.
func parseStmts(p *parser, inBlock bool) []*green.Node {
	var stmts []*green.Node
	for {
		tok := p.peek(0)
		switch {
		case tok.Kind() == green.EndOfFile:
			return stmts
		case inBlock && tok.Kind() == green.CloseBrace:
			return stmts
		case startsStmt(tok.Kind()):
			stmts = append(stmts, parseStmt(p))
		default:
			p.skip()
		}
	}
}

// parseStmt parses a single statement, reusing one from the old tree if it
// can.
func parseStmt(p *parser) *green.Node {
	if stmt := p.reuse(); stmt != nil {
		return stmt
	}

	switch p.peek(0).Kind() {
	case green.OpenBrace:
		return parseBlock(p)
	case green.IfKeyword:
		return parseIf(p)
	case green.WhileKeyword:
		return parseWhile(p)
	case green.ReturnKeyword:
		return parseReturn(p)
	case green.FuncKeyword:
		return parseFunc(p)
	}

	if startsDecl(p) {
		return parseVarDecl(p)
	}
	expr := parseExpr(p)
	return p.node(green.ExprStmt, expr, p.expect(green.Semicolon))
}

func parseBlock(p *parser) *green.Node {
	children := []*green.Node{p.take()}
	children = append(children, parseStmts(p, true)...)
	children = append(children, p.expect(green.CloseBrace))
	return p.node(green.Block, children...)
}

func parseIf(p *parser) *green.Node {
	children := []*green.Node{
		p.take(),
		p.expect(green.OpenParen),
		parseExpr(p),
		p.expect(green.CloseParen),
		parseStmt(p),
	}
	if p.peekIs(green.ElseKeyword) {
		children = append(children, p.node(green.ElseClause, p.take(), parseStmt(p)))
	}
	return p.node(green.IfStmt, children...)
}

func parseWhile(p *parser) *green.Node {
	return p.node(green.WhileStmt,
		p.take(),
		p.expect(green.OpenParen),
		parseExpr(p),
		p.expect(green.CloseParen),
		parseStmt(p),
	)
}

func parseReturn(p *parser) *green.Node {
	children := []*green.Node{p.take()}
	if startsExpr(p.peek(0).Kind()) {
		children = append(children, parseExpr(p))
	}
	children = append(children, p.expect(green.Semicolon))
	return p.node(green.ReturnStmt, children...)
}

func parseFunc(p *parser) *green.Node {
	children := []*green.Node{
		p.take(),
		p.expect(green.Identifier),
		parseParams(p),
	}
	if startsType(p.peek(0).Kind()) {
		children = append(children, parseType(p))
	}
	if p.peekIs(green.OpenBrace) {
		children = append(children, parseBlock(p))
	} else {
		children = append(children, p.node(green.Block,
			green.NewMissing(green.OpenBrace),
			green.NewMissing(green.CloseBrace),
		))
	}
	return p.node(green.FuncDecl, children...)
}

func parseParams(p *parser) *green.Node {
	open := p.expect(green.OpenParen)
	if open.IsMissing() {
		return p.node(green.ParamList, open, green.NewMissing(green.CloseParen))
	}

	children := []*green.Node{open}
	if !p.peekIs(green.CloseParen) {
		for {
			children = append(children, p.node(green.Param, parseType(p), p.expect(green.Identifier)))
			if !p.peekIs(green.Comma) {
				break
			}
			children = append(children, p.take())
		}
	}
	children = append(children, p.expect(green.CloseParen))
	return p.node(green.ParamList, children...)
}

func parseVarDecl(p *parser) *green.Node {
	children := []*green.Node{parseType(p), p.expect(green.Identifier)}
	if p.peekIs(green.Equals) {
		children = append(children, p.take(), parseExpr(p))
	}
	children = append(children, p.expect(green.Semicolon))
	return p.node(green.VarDecl, children...)
}

// startsStmt returns whether a token of this kind can begin a statement.
func startsStmt(kind green.Kind) bool {
	switch kind {
	case green.OpenBrace, green.IfKeyword, green.WhileKeyword,
		green.ReturnKeyword, green.FuncKeyword:
		return true
	}
	return startsType(kind) || startsExpr(kind)
}

// isStmt returns whether kind is a statement's kind.
func isStmt(kind green.Kind) bool {
	switch kind {
	case green.Block, green.IfStmt, green.WhileStmt, green.ReturnStmt,
		green.FuncDecl, green.VarDecl, green.ExprStmt:
		return true
	default:
		return false
	}
}

// closed returns whether a statement's extent is settled by its own tokens.
//
// An if statement without an else is open: had the text after it been
// different, an else might have been parsed into it.
func closed(stmt *green.Node) bool {
	switch stmt.Kind() {
	case green.Block, green.ReturnStmt, green.FuncDecl, green.VarDecl, green.ExprStmt:
		return true
	case green.IfStmt:
		last := stmt.Child(stmt.NumChildren() - 1)
		return last.Kind() == green.ElseClause && closed(last)
	case green.WhileStmt, green.ElseClause:
		return closed(stmt.Child(stmt.NumChildren() - 1))
	default:
		return false
	}
}
