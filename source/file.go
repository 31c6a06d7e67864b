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

// Package source provides the immutable text buffer a syntax tree is built
// over, along with byte offset to line/column conversions.
package source

import (
	"slices"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/rivo/uniseg"
)

// Unit is a unit of measure for columns.
type Unit int

const (
	Bytes     Unit = iota // Columns are byte offsets into the line.
	Runes                 // Columns count Unicode code points.
	UTF16                 // Columns count UTF-16 code units, as LSP does.
	TermWidth             // Columns count terminal cells (grapheme widths).
)

// File is a source text with a path.
//
// Files are immutable once created and may be shared by any number of
// concurrent reparse sessions. A nil *File behaves like an empty file with
// the path "".
type File struct {
	path, text string

	once sync.Once
	// Offsets immediately after each '\n' in text, prefixed with 0.
	lineIndex []int
}

// Location is a user-displayable location within a source code file.
type Location struct {
	// The byte offset of this location.
	Offset int

	// 1-indexed line and column numbers.
	Line, Column int
}

// NewFile constructs a new source file.
func NewFile(path, text string) *File {
	return &File{path: path, text: text}
}

// Path returns this file's path.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Text returns this file's textual contents.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.text
}

// Len returns the length of the text in bytes.
func (f *File) Len() int {
	return len(f.Text())
}

// Slice returns the text in [start, end), clamped to the file.
func (f *File) Slice(start, end int) string {
	text := f.Text()
	start = min(max(start, 0), len(text))
	end = min(max(end, start), len(text))
	return text[start:end]
}

// Span is a shorthand for creating a new [Span].
func (f *File) Span(start, end int) Span {
	if f == nil {
		return Span{}
	}
	return Span{File: f, Start: start, End: end}
}

// LineCount returns the number of lines in this file. A trailing newline
// starts an (empty) last line.
func (f *File) LineCount() int {
	return len(f.lines())
}

// LineOffsets returns the offsets for the given 1-indexed line, including
// its trailing newline.
func (f *File) LineOffsets(line int) (start, end int) {
	lines := f.lines()
	if line >= len(lines) {
		return lines[len(lines)-1], f.Len()
	}
	return lines[line-1], lines[line]
}

// Location converts a byte offset into a line and column, measuring the
// column in the given units.
//
// This operation is O(log n) in the number of lines.
func (f *File) Location(offset int, units Unit) Location {
	if f == nil || offset <= 0 {
		return Location{Offset: 0, Line: 1, Column: 1}
	}
	offset = min(offset, f.Len())

	lines := f.lines()
	line, exact := slices.BinarySearch(lines, offset)
	if !exact {
		line--
	}

	chunk := f.text[lines[line]:offset]
	var column int
	switch units {
	case Bytes:
		column = len(chunk)
	case Runes:
		for range chunk {
			column++
		}
	case UTF16:
		for _, r := range chunk {
			column += utf16.RuneLen(r)
		}
	case TermWidth:
		column = TextWidth(chunk)
	}

	return Location{Offset: offset, Line: line + 1, Column: column + 1}
}

// Offset inverts [File.Location]: it converts a 1-indexed line and column
// into a byte offset. Columns past the end of the line clamp to the end of
// the line (before its newline); lines past the end clamp to the end of the
// file.
//
// Panics if units is [TermWidth].
func (f *File) Offset(line, column int, units Unit) int {
	if f == nil || line < 1 {
		return 0
	}
	if line > f.LineCount() {
		return f.Len()
	}

	start, end := f.LineOffsets(line)
	chunk := strings.TrimSuffix(f.text[start:end], "\n")

	column-- // Make it 0-indexed.
	switch units {
	case Bytes:
		return start + min(max(column, 0), len(chunk))
	case Runes, UTF16:
		for i, r := range chunk {
			if column <= 0 {
				return start + i
			}
			if units == UTF16 {
				column -= utf16.RuneLen(r)
			} else {
				column--
			}
		}
		return start + len(chunk)
	default:
		panic("reparse/source: Offset does not support TermWidth columns")
	}
}

// TextWidth returns the width of s in terminal cells. Tabs count as one
// cell; callers that expand tabs must do so first.
func TextWidth(s string) int {
	return uniseg.StringWidth(s)
}

func (f *File) lines() []int {
	if f == nil {
		return []int{0}
	}

	f.once.Do(func() {
		f.lineIndex = append(f.lineIndex, 0)
		text := f.text
		next := 0
		for {
			newline := strings.IndexByte(text, '\n') + 1
			if newline == 0 {
				break
			}
			text = text[newline:]
			next += newline
			f.lineIndex = append(f.lineIndex, next)
		}
	})
	return f.lineIndex
}
