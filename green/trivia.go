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

import (
	"strings"

	"github.com/bufbuild/reparse/directive"
)

// Trivia is text attached to a token that is not part of its value:
// whitespace, comments, preprocessor directives, text excluded by an inactive
// conditional, and tokens the parser skipped over.
type Trivia struct {
	Kind Kind
	Text string

	// Set for [DirectiveTrivia]: the directive as it was evaluated.
	Directive directive.Directive

	// Set for [SkippedTokens]: the tokens that were skipped, in order. Text is
	// empty for skipped-token trivia; its text is that of the tokens.
	Skipped []*Node
}

// Skipped wraps tokens the parser could not place into a single piece of
// trivia.
func Skipped(tokens ...*Node) Trivia {
	return Trivia{Kind: SkippedTokens, Skipped: tokens}
}

// Width returns the length of this trivia's text.
func (t Trivia) Width() int {
	if t.Kind != SkippedTokens {
		return len(t.Text)
	}
	var n int
	for _, tok := range t.Skipped {
		n += tok.Width()
	}
	return n
}

// FullText returns this trivia's text.
func (t Trivia) FullText() string {
	if t.Kind != SkippedTokens {
		return t.Text
	}
	var b strings.Builder
	for _, tok := range t.Skipped {
		tok.writeTo(&b)
	}
	return b.String()
}

func (t Trivia) flags() Flags {
	switch t.Kind {
	case DirectiveTrivia:
		return ContainsDirectives
	case SkippedTokens:
		f := SkippedText
		for _, tok := range t.Skipped {
			f |= tok.flags & inherited
		}
		return f
	default:
		return 0
	}
}

func widthOf(trivia []Trivia) int {
	var n int
	for _, t := range trivia {
		n += t.Width()
	}
	return n
}
