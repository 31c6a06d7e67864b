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
	"fmt"
	"strconv"
	"strings"
)

// Dump renders a tree as indented text, one node per line, for tests and
// debugging.
//
// Tokens show their text and trivia; missing tokens are marked with "?".
// Diagnostics and annotations follow the node they are recorded on.
func Dump(n *Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dump(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.kind.String())

	if n.IsToken() {
		if n.IsMissing() {
			b.WriteString("?")
		} else {
			b.WriteString(" ")
			b.WriteString(strconv.Quote(n.text))
		}
		dumpTrivia(b, "leading", n.leading)
		dumpTrivia(b, "trailing", n.trailing)
	}
	if n.lookahead > 0 {
		fmt.Fprintf(b, " +%d", n.lookahead)
	}
	for _, d := range n.diagnostics {
		fmt.Fprintf(b, " !%s@%d:%d", d.Code, d.Offset, d.Offset+d.Width)
	}
	for _, a := range n.annotations {
		fmt.Fprintf(b, " @%s", a.Kind)
	}
	b.WriteString("\n")

	for _, c := range n.children {
		dump(b, c, depth+1)
	}
}

func dumpTrivia(b *strings.Builder, label string, trivia []Trivia) {
	if len(trivia) == 0 {
		return
	}
	fmt.Fprintf(b, " %s=[", label)
	for i, t := range trivia {
		if i > 0 {
			b.WriteString(" ")
		}
		switch t.Kind {
		case SkippedTokens:
			b.WriteString("skipped(")
			for j, tok := range t.Skipped {
				if j > 0 {
					b.WriteString(" ")
				}
				b.WriteString(strconv.Quote(tok.FullText()))
			}
			b.WriteString(")")
		case DirectiveTrivia:
			fmt.Fprintf(b, "%s{%v}", strconv.Quote(t.Text), t.Directive)
		default:
			b.WriteString(strconv.Quote(t.Text))
		}
	}
	b.WriteString("]")
}
