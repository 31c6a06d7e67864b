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

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
)

// TabstopWidth is the size we render all tabstops as.
const TabstopWidth = 4

// Renderer configures a diagnostic rendering operation.
type Renderer struct {
	// If set, uses a compact one-line format for each diagnostic.
	Compact bool

	// If set, rendering results are enriched with ANSI color escapes.
	Colorize bool
}

// Render renders a list of diagnostics to out, returning how many errors and
// warnings were rendered.
func (r Renderer) Render(diags []Diagnostic, out io.Writer) (errorCount, warningCount int, err error) {
	for i, d := range diags {
		if i > 0 && !r.Compact {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return 0, 0, err
			}
		}
		if _, err := io.WriteString(out, r.Diagnostic(d)); err != nil {
			return 0, 0, err
		}
	}
	errorCount, warningCount = Counts(diags)
	return errorCount, warningCount, nil
}

// RenderString is like [Renderer.Render], but returns a string.
func (r Renderer) RenderString(diags []Diagnostic) string {
	var b strings.Builder
	_, _, _ = r.Render(diags, &b)
	return b.String()
}

// Diagnostic renders a single diagnostic, ending in a newline.
func (r Renderer) Diagnostic(d Diagnostic) string {
	c := newStyleSheet(r)
	start := d.Span.StartLoc(runes)

	var out strings.Builder
	if r.Compact {
		fmt.Fprintf(&out, "%s%s:%d:%d: %s%s: %s%s [%s]\n",
			c.accent, d.Span.Path(), start.Line, start.Column,
			c.level(d.Level), d.Level, c.reset, d.Message, d.Code)
		return out.String()
	}

	lineStart, lineEnd := d.Span.LineOffsets(start.Line)
	line := strings.TrimSuffix(d.Span.Slice(lineStart, lineEnd), "\n")
	from := d.Span.Start - lineStart
	to := min(d.Span.End-lineStart, len(line))

	lineno := strconv.Itoa(start.Line)
	gutter := strings.Repeat(" ", len(lineno))
	prefix := stringWidth(line[:from])
	width := max(stringWidth(line[:to])-prefix, 1)

	fmt.Fprintf(&out, "%s%s[%s]%s: %s\n", c.level(d.Level), d.Level, d.Code, c.reset, d.Message)
	fmt.Fprintf(&out, "%s%s--> %s%s:%d:%d\n", gutter, c.accent, c.reset, d.Span.Path(), start.Line, start.Column)
	fmt.Fprintf(&out, "%s %s|%s\n", gutter, c.accent, c.reset)
	fmt.Fprintf(&out, "%s%s |%s %s\n", c.accent, lineno, c.reset, expandTabs(line))
	fmt.Fprintf(&out, "%s %s|%s %s%s%s%s\n", gutter, c.accent, c.reset,
		strings.Repeat(" ", prefix), c.level(d.Level), strings.Repeat("^", width), c.reset)
	return out.String()
}

// stringWidth calculates the rendered width of text, accounting for tabstops.
func stringWidth(text string) int {
	column := 0
	for {
		chunk, rest, tab := strings.Cut(text, "\t")
		column += uniseg.StringWidth(chunk)
		if !tab {
			return column
		}
		column += TabstopWidth - column%TabstopWidth
		text = rest
	}
}

// expandTabs replaces the tabs in text with the spaces [stringWidth] counts
// for them.
func expandTabs(text string) string {
	if !strings.Contains(text, "\t") {
		return text
	}
	var out strings.Builder
	column := 0
	for {
		chunk, rest, tab := strings.Cut(text, "\t")
		out.WriteString(chunk)
		column += uniseg.StringWidth(chunk)
		if !tab {
			return out.String()
		}
		spaces := TabstopWidth - column%TabstopWidth
		out.WriteString(strings.Repeat(" ", spaces))
		column += spaces
		text = rest
	}
}
