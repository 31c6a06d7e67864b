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

package green

import "fmt"

// Kind identifies what a [Node] or a piece of [Trivia] is.
//
// One enum covers tokens, trivia and composite nodes, so that a node's kind
// alone says which of those it is.
type Kind uint16

const (
	Unknown Kind = iota

	// Tokens produced by the lexer.
	Identifier
	NumberLiteral
	StringLiteral

	IntKeyword
	BoolKeyword
	StringKeyword
	VoidKeyword
	FuncKeyword
	IfKeyword
	ElseKeyword
	WhileKeyword
	ReturnKeyword
	TrueKeyword
	FalseKeyword

	OpenBrace
	CloseBrace
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	Semicolon
	Comma
	Dot
	Equals
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Less
	LessEquals
	LessLess
	Greater
	EqualsEquals
	BangEquals
	AmpAmp
	PipePipe
	PlusEquals
	MinusEquals
	Arrow

	BadToken
	EndOfFile

	// Tokens that only the parser produces, by fusing or reclassifying
	// lexer tokens.
	GreaterEquals
	GreaterGreater
	VarKeyword

	// Trivia.
	Whitespace
	EndOfLine
	LineComment
	BlockComment
	DisabledText
	DirectiveTrivia
	SkippedTokens

	// Composite nodes.
	File
	Block
	IfStmt
	ElseClause
	WhileStmt
	ReturnStmt
	FuncDecl
	ParamList
	Param
	VarDecl
	ExprStmt
	TypeName
	TypeArgs
	NameExpr
	LiteralExpr
	ParenExpr
	UnaryExpr
	BinaryExpr
	AssignExpr
	CallExpr
	ArgList
	IndexExpr
	MemberExpr
	LambdaExpr

	kindCount
)

var kindNames = [...]string{
	Unknown:       "Unknown",
	Identifier:    "Identifier",
	NumberLiteral: "NumberLiteral",
	StringLiteral: "StringLiteral",

	IntKeyword:    "int",
	BoolKeyword:   "bool",
	StringKeyword: "string",
	VoidKeyword:   "void",
	FuncKeyword:   "func",
	IfKeyword:     "if",
	ElseKeyword:   "else",
	WhileKeyword:  "while",
	ReturnKeyword: "return",
	TrueKeyword:   "true",
	FalseKeyword:  "false",

	OpenBrace:    "{",
	CloseBrace:   "}",
	OpenParen:    "(",
	CloseParen:   ")",
	OpenBracket:  "[",
	CloseBracket: "]",
	Semicolon:    ";",
	Comma:        ",",
	Dot:          ".",
	Equals:       "=",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	Bang:         "!",
	Less:         "<",
	LessEquals:   "<=",
	LessLess:     "<<",
	Greater:      ">",
	EqualsEquals: "==",
	BangEquals:   "!=",
	AmpAmp:       "&&",
	PipePipe:     "||",
	PlusEquals:   "+=",
	MinusEquals:  "-=",
	Arrow:        "=>",

	BadToken:  "BadToken",
	EndOfFile: "EndOfFile",

	GreaterEquals:  ">=",
	GreaterGreater: ">>",
	VarKeyword:     "var",

	Whitespace:      "Whitespace",
	EndOfLine:       "EndOfLine",
	LineComment:     "LineComment",
	BlockComment:    "BlockComment",
	DisabledText:    "DisabledText",
	DirectiveTrivia: "Directive",
	SkippedTokens:   "SkippedTokens",

	File:        "File",
	Block:       "Block",
	IfStmt:      "IfStmt",
	ElseClause:  "ElseClause",
	WhileStmt:   "WhileStmt",
	ReturnStmt:  "ReturnStmt",
	FuncDecl:    "FuncDecl",
	ParamList:   "ParamList",
	Param:       "Param",
	VarDecl:     "VarDecl",
	ExprStmt:    "ExprStmt",
	TypeName:    "TypeName",
	TypeArgs:    "TypeArgs",
	NameExpr:    "NameExpr",
	LiteralExpr: "LiteralExpr",
	ParenExpr:   "ParenExpr",
	UnaryExpr:   "UnaryExpr",
	BinaryExpr:  "BinaryExpr",
	AssignExpr:  "AssignExpr",
	CallExpr:    "CallExpr",
	ArgList:     "ArgList",
	IndexExpr:   "IndexExpr",
	MemberExpr:  "MemberExpr",
	LambdaExpr:  "LambdaExpr",
}

var keywords = map[string]Kind{
	"int":    IntKeyword,
	"bool":   BoolKeyword,
	"string": StringKeyword,
	"void":   VoidKeyword,
	"func":   FuncKeyword,
	"if":     IfKeyword,
	"else":   ElseKeyword,
	"while":  WhileKeyword,
	"return": ReturnKeyword,
	"true":   TrueKeyword,
	"false":  FalseKeyword,
}

// Keyword returns the reserved keyword kind spelled by word, if any.
//
// Contextual keywords such as var are not reserved and are not returned.
func Keyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}

// String implements [fmt.Stringer].
//
// Keywords and punctuation are rendered as their spelling.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("green.Kind(%d)", int(k))
}

// IsToken returns whether this is a token kind, including the kinds only the
// parser produces.
func (k Kind) IsToken() bool {
	return k >= Identifier && k <= VarKeyword
}

// IsTrivia returns whether this is a trivia kind.
func (k Kind) IsTrivia() bool {
	return k >= Whitespace && k <= SkippedTokens
}

// IsNode returns whether this is a composite node kind.
func (k Kind) IsNode() bool {
	return k >= File && k < kindCount
}

// IsKeyword returns whether this is a keyword, reserved or contextual.
func (k Kind) IsKeyword() bool {
	return (k >= IntKeyword && k <= FalseKeyword) || k == VarKeyword
}

// IsFabricated returns whether tokens of this kind are made by the parser
// out of lexer tokens, rather than produced by the lexer directly.
func (k Kind) IsFabricated() bool {
	switch k {
	case GreaterEquals, GreaterGreater, VarKeyword:
		return true
	default:
		return false
	}
}
