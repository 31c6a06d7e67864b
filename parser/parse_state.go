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

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bufbuild/reparse/blend"
	"github.com/bufbuild/reparse/green"
)

// parser is the state of a single parse.
type parser struct {
	ctx context.Context

	// The blender positioned before toks[0].
	at   blend.Blender
	toks []blend.Unit
	pos  int // Index of the next token to consume.

	// Tokens discarded by error recovery, waiting to be attached to the next
	// token consumed.
	skipped []*green.Node

	stats Stats
	err   error
}

// after returns the blender positioned after the buffered tokens.
func (p *parser) after() blend.Blender {
	if len(p.toks) == 0 {
		return p.at
	}
	return p.toks[len(p.toks)-1].Next
}

// peek returns the token i tokens past the next one, without consuming
// anything. Past the end of the file it returns the end-of-file token.
func (p *parser) peek(i int) *green.Node {
	for p.pos+i >= len(p.toks) {
		if n := len(p.toks); n > 0 && p.toks[n-1].Node.Kind() == green.EndOfFile {
			return p.toks[n-1].Node
		}

		b := p.after()
		u, err := b.ReadToken(p.ctx)
		if err != nil {
			p.fail(b, err)
			continue
		}
		p.toks = append(p.toks, u)
	}
	return p.toks[p.pos+i].Node
}

// fail records err and ends the token stream, so that the parse unwinds.
func (p *parser) fail(b blend.Blender, err error) {
	if p.err == nil {
		p.err = err
	}
	p.toks = append(p.toks, blend.Unit{
		Node:   green.NewToken(green.EndOfFile, nil, "", nil),
		Offset: b.Offset(),
		Next:   b,
	})
}

// next consumes the next token as-is.
func (p *parser) next() *green.Node {
	p.peek(0)
	u := p.toks[p.pos]
	p.pos++
	if u.Reused {
		p.stats.ReusedTokens++
	} else {
		p.stats.LexedTokens++
	}
	return u.Node
}

// take consumes the next token, attaching any pending skipped tokens to it.
func (p *parser) take() *green.Node {
	tok := p.next()
	if len(p.skipped) > 0 {
		tok = tok.WithLeading(green.Skipped(p.skipped...))
		p.skipped = nil
	}
	return tok
}

// skip discards the next token.
func (p *parser) skip() {
	p.skipped = append(p.skipped, p.next())
	p.stats.SkippedTokens++
}

// expect consumes a token of the given kind, or makes up a missing one.
func (p *parser) expect(kind green.Kind) *green.Node {
	if p.peek(0).Kind() == kind {
		return p.take()
	}
	return green.NewMissing(kind)
}

// peekIs reports whether the next token has one of the given kinds.
func (p *parser) peekIs(kinds ...green.Kind) bool {
	return slices.Contains(kinds, p.peek(0).Kind())
}

// reuse tries to take a whole statement from the old tree.
//
// Any buffered lookahead is dropped first, since the blender has to be
// asked for a node at the next token's position.
func (p *parser) reuse() *green.Node {
	if p.err != nil || len(p.skipped) > 0 {
		return nil
	}

	b := p.at
	if p.pos > 0 {
		b = p.toks[p.pos-1].Next
	}
	p.at, p.toks, p.pos = b, nil, 0

	u, err := b.ReadNode(p.ctx)
	switch {
	case err != nil:
		p.fail(b, err)
		return nil
	case u.Node.IsToken():
		p.toks = append(p.toks, u)
		return nil
	case !isStmt(u.Node.Kind()) || !closed(u.Node):
		return nil
	}

	p.at = u.Next
	p.stats.ReusedNodes++
	return u.Node
}

// node builds a composite node, recording diagnostics for its missing
// children and for tokens skipped in front of them.
func (p *parser) node(kind green.Kind, children ...*green.Node) *green.Node {
	var diags []green.Diagnostic
	offset := 0
	for _, c := range children {
		switch {
		case !c.IsToken():
		case c.IsMissing():
			diags = append(diags, green.Diagnostic{
				Offset:  offset,
				Code:    "missing",
				Message: fmt.Sprintf("expected %s", describe(c.Kind())),
			})
		case c.Has(green.SkippedText):
			at := offset
			for _, t := range c.Leading() {
				if t.Kind == green.SkippedTokens {
					diags = append(diags, green.Diagnostic{
						Offset:  at,
						Width:   t.Width(),
						Code:    "unexpected",
						Message: fmt.Sprintf("unexpected %s", describeText(t.FullText())),
					})
				}
				at += t.Width()
			}
		}
		offset += c.Width()
	}
	return green.NewNode(kind, children...).WithDiagnostics(diags...)
}

// describe names a token kind for a diagnostic.
func describe(kind green.Kind) string {
	switch kind {
	case green.Identifier:
		return "identifier"
	case green.EndOfFile:
		return "end of file"
	default:
		return "`" + kind.String() + "`"
	}
}

// describeText quotes skipped text for a diagnostic, trimmed of whitespace
// and shortened to its first line.
func describeText(text string) string {
	text = strings.TrimSpace(text)
	if line, _, cut := strings.Cut(text, "\n"); cut {
		text = strings.TrimSpace(line) + " ..."
	}
	return "`" + text + "`"
}
