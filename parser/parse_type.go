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

// startsDecl returns whether the statement at the next token is a variable
// declaration: a type followed by a name.
func startsDecl(p *parser) bool {
	switch p.peek(0).Kind() {
	case green.IntKeyword, green.BoolKeyword, green.StringKeyword, green.VoidKeyword:
		return true
	}
	n, ok := scanType(p, 0)
	return ok && p.peek(n).Kind() == green.Identifier
}

// scanType looks for a type starting i tokens ahead, returning the number of
// tokens ahead of the one after it. Nothing is consumed.
func scanType(p *parser, i int) (int, bool) {
	switch p.peek(i).Kind() {
	case green.IntKeyword, green.BoolKeyword, green.StringKeyword, green.VoidKeyword:
		return i + 1, true
	case green.Identifier:
	default:
		return 0, false
	}

	i++
	if p.peek(i).Kind() != green.Less {
		return i, true
	}
	i++
	for {
		next, ok := scanType(p, i)
		if !ok {
			return 0, false
		}
		i = next
		switch p.peek(i).Kind() {
		case green.Comma:
			i++
		case green.Greater:
			return i + 1, true
		default:
			return 0, false
		}
	}
}

// startsType returns whether a token of this kind can begin a type.
func startsType(kind green.Kind) bool {
	switch kind {
	case green.IntKeyword, green.BoolKeyword, green.StringKeyword, green.VoidKeyword, green.Identifier:
		return true
	default:
		return false
	}
}

// parseType parses a type name. A bare var is the contextual keyword.
func parseType(p *parser) *green.Node {
	if !startsType(p.peek(0).Kind()) {
		return p.node(green.TypeName, green.NewMissing(green.Identifier))
	}

	name := p.take()
	if name.Kind() != green.Identifier {
		return p.node(green.TypeName, name)
	}
	if !p.peekIs(green.Less) {
		if name.Text() == "var" {
			name = name.WithKind(green.VarKeyword)
		}
		return p.node(green.TypeName, name)
	}
	return p.node(green.TypeName, name, parseTypeArgs(p))
}

// parseTypeArgs parses a type argument list. Its closing angle bracket is a
// single token, so nested lists close with one token each.
func parseTypeArgs(p *parser) *green.Node {
	children := []*green.Node{p.take()}
	for {
		children = append(children, parseType(p))
		if !p.peekIs(green.Comma) {
			break
		}
		children = append(children, p.take())
	}
	children = append(children, p.expect(green.Greater))
	return p.node(green.TypeArgs, children...)
}
