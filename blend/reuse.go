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

package blend

import (
	"github.com/bufbuild/reparse/green"
)

// reusable returns whether n, at the cursor, may be copied into the new tree
// as-is.
func (b Blender) reusable(n *green.Node) bool {
	// Zero-width nodes are made up by the parser.
	if n.Width() == 0 {
		return false
	}

	// Annotations belong to the tree they were attached to.
	if n.Has(green.ContainsAnnotations) {
		return false
	}

	// The bytes the lexer examined must be untouched, including the ones past
	// the end it peeked at.
	if r, ok := b.changes.Next(); ok {
		start := b.cursor.Offset()
		if r.Affects(start, start+n.Width()+n.Lookahead()) {
			return false
		}
	}

	if n.Has(green.ContainsDiagnostics) {
		return false
	}
	if n.IsToken() && n.Has(green.SkippedText) {
		if parent := b.cursor.Parent(); parent != nil && parent.Has(green.ContainsDiagnostics) {
			return false
		}
	}

	if n.Kind().IsFabricated() {
		return false
	}

	// A construct missing its last token may come out differently once it
	// is followed by other text.
	if n.IsMissing() {
		return false
	}
	if last := n.LastToken(); last != nil && last.IsMissing() {
		return false
	}

	// The lexer must be in the same state on both sides, or it could have
	// produced something else here.
	if b.oldState.Mode != b.newState.Mode {
		return false
	}
	if b.oldState.Directives.Active() != b.newState.Directives.Active() {
		return false
	}
	// Directives are evaluated against the whole stack, and so is the end of
	// the file, which reports unterminated conditionals.
	if n.Has(green.ContainsDirectives) || n.LastToken().Kind() == green.EndOfFile {
		if !b.newState.Directives.Equivalent(b.oldState.Directives) {
			return false
		}
	}

	return true
}
