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

// Package report gathers the diagnostics recorded in a syntax tree and
// renders them for people to read.
package report

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/red"
	"github.com/bufbuild/reparse/source"
)

// Level represents the severity of a diagnostic message.
type Level int8

const (
	// Red. Indicates text that does not lex or parse.
	Error Level = 1 + iota
	// Yellow. Indicates something that probably should not be ignored.
	Warning
	// Cyan. This is the diagnostics version of "info".
	Remark
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	default:
		return fmt.Sprintf("report.Level(%d)", int(l))
	}
}

// Diagnostic is a diagnostic placed at an absolute span of a file.
type Diagnostic struct {
	Level   Level
	Span    source.Span
	Code    string
	Message string
}

// Error implements [error].
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%v: %s: %s", d.Span, d.Level, d.Message)
}

// levels holds the codes that are not errors.
var levels = map[string]Level{
	"unexpected-directive": Warning,
}

// Collect returns every diagnostic in tree, ordered by position. This
// includes the diagnostics of tokens discarded by error recovery.
func Collect(tree *red.Tree) []Diagnostic {
	var out []Diagnostic
	collect(tree.File, tree.Root, 0, &out)
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Span.Start, b.Span.Start),
			cmp.Compare(a.Span.End, b.Span.End),
		)
	})
	return out
}

func collect(file *source.File, n *green.Node, offset int, out *[]Diagnostic) {
	if !n.Has(green.ContainsDiagnostics) {
		return
	}

	for _, d := range n.Diagnostics() {
		level, ok := levels[d.Code]
		if !ok {
			level = Error
		}
		start := offset + d.Offset
		*out = append(*out, Diagnostic{
			Level:   level,
			Span:    file.Span(start, start+d.Width),
			Code:    d.Code,
			Message: d.Message,
		})
	}

	if n.IsToken() {
		at := offset
		for _, t := range n.Leading() {
			pos := at
			for _, skipped := range t.Skipped {
				collect(file, skipped, pos, out)
				pos += skipped.Width()
			}
			at += t.Width()
		}
		return
	}

	for _, c := range n.Children() {
		collect(file, c, offset, out)
		offset += c.Width()
	}
}

// Counts returns how many of diags are errors and how many are warnings.
func Counts(diags []Diagnostic) (errors, warnings int) {
	for _, d := range diags {
		switch d.Level {
		case Error:
			errors++
		case Warning:
			warnings++
		}
	}
	return errors, warnings
}
