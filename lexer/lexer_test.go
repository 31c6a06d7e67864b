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

package lexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/lexer"
	"github.com/bufbuild/reparse/source"
)

var sameTree = cmp.Options{
	cmp.AllowUnexported(green.Node{}),
	cmpopts.EquateEmpty(),
}

func lex(t *testing.T, lx *lexer.Lexer, text string) []*green.Node {
	t.Helper()
	tokens := lx.All(source.NewFile("test.rp", text))

	var total int
	for _, tok := range tokens {
		total += tok.Width()
	}
	require.Equal(t, len(text), total, "tokens must cover the text")
	return tokens
}

func kinds(tokens []*green.Node) []green.Kind {
	out := make([]green.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind()
	}
	return out
}

func codes(tok *green.Node) []string {
	var out []string
	for _, d := range tok.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func TestTokens(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	tokens := lex(t, &lexer.Lexer{}, "int x = 1;\n")
	assert.Equal([]green.Kind{
		green.IntKeyword, green.Identifier, green.Equals,
		green.NumberLiteral, green.Semicolon, green.EndOfFile,
	}, kinds(tokens))

	var texts, full []string
	var lookahead []int
	for _, tok := range tokens {
		texts = append(texts, tok.Text())
		full = append(full, tok.FullText())
		lookahead = append(lookahead, tok.Lookahead())
	}
	assert.Equal([]string{"int", "x", "=", "1", ";", ""}, texts)
	assert.Equal([]string{"int ", "x ", "= ", "1", ";\n", ""}, full)
	assert.Equal([]int{1, 1, 1, 1, 0, 1}, lookahead)
}

func TestPunctuation(t *testing.T) {
	t.Parallel()

	tokens := lex(t, &lexer.Lexer{}, "a<=b<<c==d=>e!=f&&g||h+=i-=j>>k>=l")
	var got []green.Kind
	for _, tok := range tokens {
		if tok.Kind() != green.Identifier {
			got = append(got, tok.Kind())
		}
	}
	assert.Equal(t, []green.Kind{
		green.LessEquals, green.LessLess, green.EqualsEquals, green.Arrow,
		green.BangEquals, green.AmpAmp, green.PipePipe, green.PlusEquals,
		green.MinusEquals, green.Greater, green.Greater, green.Greater, green.Equals,
		green.EndOfFile,
	}, got)
}

func TestTrivia(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	tokens := lex(t, &lexer.Lexer{}, "  // lead\n/* block */ a /* tail */ // more\n\nb")
	require.Len(t, tokens, 3)

	a := tokens[0]
	assert.Equal("a", a.Text())
	var leading, trailing []green.Kind
	for _, tr := range a.Leading() {
		leading = append(leading, tr.Kind)
	}
	for _, tr := range a.Trailing() {
		trailing = append(trailing, tr.Kind)
	}
	assert.Equal([]green.Kind{green.Whitespace, green.LineComment, green.EndOfLine, green.BlockComment, green.Whitespace}, leading)
	assert.Equal([]green.Kind{green.Whitespace, green.BlockComment, green.Whitespace, green.LineComment, green.EndOfLine}, trailing)
	assert.Equal(0, a.Lookahead())

	// The blank line belongs to the next token.
	assert.Equal("\nb", tokens[1].FullText())
}

func TestDirectives(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	tokens := lex(t, &lexer.Lexer{}, "#define A\n#if A\nx\n#else\ny\n#endif\nz")
	assert.Equal([]green.Kind{green.Identifier, green.Identifier, green.EndOfFile}, kinds(tokens))
	x, z := tokens[0], tokens[1]

	assert.Equal("x", x.Text())
	assert.True(x.Has(green.ContainsDirectives))
	assert.Equal("z", z.Text())

	var leading []green.Kind
	for _, tr := range z.Leading() {
		leading = append(leading, tr.Kind)
	}
	assert.Equal([]green.Kind{green.DirectiveTrivia, green.DisabledText, green.DirectiveTrivia}, leading)
	assert.Equal("y\n", z.Leading()[1].Text)
	assert.False(z.Leading()[0].Directive.Active)
	assert.Empty(codes(z))
}

func TestPredefined(t *testing.T) {
	t.Parallel()

	const text = "#if DEBUG && !RELEASE\na\n#elif RELEASE\nb\n#endif\n"

	tokens := lex(t, &lexer.Lexer{Predefined: []string{"DEBUG"}}, text)
	assert.Equal(t, "a", tokens[0].Text())

	tokens = lex(t, &lexer.Lexer{Predefined: []string{"RELEASE"}}, text)
	assert.Equal(t, "b", tokens[0].Text())

	tokens = lex(t, &lexer.Lexer{}, text)
	assert.Equal(t, []green.Kind{green.EndOfFile}, kinds(tokens))
}

func TestLexErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text  string
		kinds []green.Kind
		codes []string // On the token carrying them.
	}{
		{text: `"abc`, kinds: []green.Kind{green.StringLiteral, green.EndOfFile}, codes: []string{"unterminated-string"}},
		{text: "/* abc", kinds: []green.Kind{green.EndOfFile}, codes: []string{"unterminated-comment"}},
		{text: "#endif\n", kinds: []green.Kind{green.EndOfFile}, codes: []string{"unexpected-directive"}},
		{text: "#if A\nx\n", kinds: []green.Kind{green.EndOfFile}, codes: []string{"unterminated-if"}},
		{text: "#if (A\n#endif\n", kinds: []green.Kind{green.EndOfFile}, codes: []string{"bad-condition"}},
		{text: "#pragma once\n", kinds: []green.Kind{green.EndOfFile}, codes: []string{"bad-directive"}},
		{text: "x #\n", kinds: []green.Kind{green.Identifier, green.BadToken, green.EndOfFile}, codes: []string{"bad-char"}},
		{text: "a & b", kinds: []green.Kind{green.Identifier, green.BadToken, green.Identifier, green.EndOfFile}, codes: []string{"bad-char"}},
	}

	for _, tt := range tests {
		tokens := lex(t, &lexer.Lexer{}, tt.text)
		assert.Equal(t, tt.kinds, kinds(tokens), "%q", tt.text)

		var got []string
		for _, tok := range tokens {
			got = append(got, codes(tok)...)
		}
		assert.Equal(t, tt.codes, got, "%q", tt.text)
	}
}

func TestMode(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	line := green.NewToken(green.Semicolon, nil, ";", []green.Trivia{{Kind: green.EndOfLine, Text: "\n"}})
	mid := green.NewToken(green.Semicolon, nil, ";", nil)
	eof := green.NewToken(green.EndOfFile, nil, "", nil)

	assert.Equal(lexer.LineStart, lexer.MidLine.After(line))
	assert.Equal(lexer.MidLine, lexer.LineStart.After(mid))
	assert.Equal(lexer.LineStart, lexer.LineStart.After(eof))
	assert.Equal("MidLine", lexer.MidLine.String())
}

const sample = `#define FAST
func main(int n) int {
  // Count down.
  while (n > 0) { n -= 1; }
#if FAST
  return n >> 1;
#else
  return "slow";
#endif
  /* done */ list<map<int,string>> xs = f(1.5, x.y[2]);
}
`

// TestRestart checks that lexing at any token boundary, in the state the
// lexer reported there, reproduces the same token.
func TestRestart(t *testing.T) {
	t.Parallel()

	lx := &lexer.Lexer{}
	file := source.NewFile("test.rp", sample)

	state := lx.Start()
	offset := 0
	for {
		tok, next := lx.Lex(file, offset, state)
		again, again2 := lx.Lex(file, offset, state)
		require.Empty(t, cmp.Diff(tok, again, sameTree))
		require.True(t, next.Equivalent(again2))

		offset += tok.Width()
		state = next
		if tok.Kind() == green.EndOfFile {
			break
		}
	}
	assert.Equal(t, len(sample), offset)
}

// TestLookaheadBound checks that a token only depends on the text within its
// full span widened by its lookahead.
func TestLookaheadBound(t *testing.T) {
	t.Parallel()

	lx := &lexer.Lexer{}
	file := source.NewFile("test.rp", sample)

	state := lx.Start()
	offset := 0
	for {
		tok, next := lx.Lex(file, offset, state)
		if tok.Kind() == green.EndOfFile {
			break
		}

		window := offset + tok.Width() + tok.Lookahead()
		if window <= len(sample) {
			for _, junk := range []string{"", " ", "\n", "=", "x", "/*", "#if X\n"} {
				edited := source.NewFile("test.rp", sample[:window]+junk)
				got, _ := lx.Lex(edited, offset, state)
				require.Empty(t, cmp.Diff(tok, got, sameTree), "token at %d, suffix %q", offset, junk)
			}
		}

		offset += tok.Width()
		state = next
	}
}
