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

// Package parser is a recursive-descent parser for a small C-like language,
// built on top of a [blend.Blender].
//
// Parsing after an edit pulls whole statements out of the previous tree
// where the blender allows it, and produces the same tree a parse from
// scratch would.
//
// The grammar:
//
//	File      := Stmt* EOF
//	Stmt      := Block | If | While | Return | Func | VarDecl | ExprStmt
//	Block     := '{' Stmt* '}'
//	If        := 'if' '(' Expr ')' Stmt ('else' Stmt)?
//	While     := 'while' '(' Expr ')' Stmt
//	Return    := 'return' Expr? ';'
//	Func      := 'func' Ident '(' (Param (',' Param)*)? ')' Type? Block
//	Param     := Type Ident
//	VarDecl   := Type Ident ('=' Expr)? ';'
//	Type      := 'int' | 'bool' | 'string' | 'void' | 'var' | Ident TypeArgs?
//	TypeArgs  := '<' Type (',' Type)* '>'
//	ExprStmt  := Expr ';'
//
// Expressions are assignments, binary operators by precedence, prefix ! and
// -, calls, indexing, member access, parentheses, literals and single
// parameter lambdas (x => expr).
package parser

import (
	"context"

	"github.com/bufbuild/reparse/blend"
	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/lexer"
	"github.com/bufbuild/reparse/red"
	"github.com/bufbuild/reparse/source"
)

// Options configures a parse.
type Options struct {
	// Symbols defined before the first line, as if by #define.
	Predefined []string
}

// Lexer returns the lexer these options describe.
func (o Options) Lexer() *lexer.Lexer {
	return &lexer.Lexer{Predefined: o.Predefined}
}

// Stats counts where the units of a parse came from.
type Stats struct {
	ReusedNodes   int // Statements taken whole from the old tree.
	ReusedTokens  int // Tokens taken one at a time from the old tree.
	LexedTokens   int
	SkippedTokens int // Tokens dropped by error recovery.
}

// Result is the outcome of a parse.
type Result struct {
	Tree  *red.Tree
	Stats Stats
}

// Parse parses file from scratch.
//
// The only error returned is [blend.ErrAborted], wrapped with the cause, if
// ctx is cancelled partway through.
func Parse(ctx context.Context, file *source.File, opts Options) (*Result, error) {
	return Reparse(ctx, nil, file, change.Set{}, opts)
}

// Reparse parses file, which is the text old was parsed from with changes
// applied, reusing as much of old as possible. opts must be the options old
// was parsed with.
//
// The resulting tree is identical to the one Parse would produce.
func Reparse(ctx context.Context, old *green.Node, file *source.File, changes change.Set, opts Options) (*Result, error) {
	lx := opts.Lexer()
	p := &parser{
		ctx: ctx,
		at:  blend.New(lx, old, file, changes, lx.Start()),
	}

	root := parseFile(p)
	if p.err != nil {
		return nil, p.err
	}
	return &Result{Tree: red.New(file, root), Stats: p.stats}, nil
}
