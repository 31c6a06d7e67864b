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

// Package reparse parses a small C-like statement language and keeps its
// syntax trees up to date as the text is edited, reusing unchanged parts of
// the previous tree instead of parsing from scratch.
//
// The work is split into phases, each in its own package:
//  1. Lexing, including #define/#if preprocessor directives.
//     Also see: lexer
//  2. Blending, which interleaves nodes from the old tree with freshly
//     lexed tokens around the changed ranges.
//     Also see: blend, change
//  3. Parsing, which consumes blended units and decides which old
//     statements can be taken whole.
//     Also see: parser
//  4. Reporting diagnostics found in the tree.
//     Also see: report
//
// This package ties the phases together. It is also capable of taking
// advantage of multiple CPU cores when several candidate edits of the same
// tree need to be evaluated.
//
// Trees
//
// Trees are immutable. A reparse never modifies the tree it reuses, so the
// same old tree may be reparsed against any number of edits, from any number
// of goroutines. The result of a reparse is always identical to what a parse
// from scratch of the new text would produce.
//
// Documents
//
// A Document holds the current text and tree of a file being edited, such as
// one open in an editor. Edits are applied in order and each one is
// expressed in terms of the text left by the previous one:
//
//	doc, err := reparse.Open(ctx, "main.rp", text, 1)
//	...
//	stats, err := doc.Apply(ctx, 2, change.Edit{Start: 10, End: 12, Text: "x"})
//
// Speculation
//
// Speculate reparses the same tree against several alternative edits
// concurrently. The degree of parallelism defaults to GOMAXPROCS and can be
// customized with WithParallelism.
package reparse
