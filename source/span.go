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

package source

import "fmt"

// Span is a half-open byte range [Start, End) within a [File].
type Span struct {
	*File
	Start, End int
}

// Spanner is any type that has a [Span].
type Spanner interface {
	Span() Span
}

// IsZero returns whether this is the zero span.
func (s Span) IsZero() bool {
	return s.File == nil && s.Start == 0 && s.End == 0
}

// Len returns the length of this span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text returns the text this span covers.
func (s Span) Text() string {
	return s.File.Slice(s.Start, s.End)
}

// Contains returns whether offset lies within this span. An empty span
// contains its own start.
func (s Span) Contains(offset int) bool {
	if s.Start == s.End {
		return offset == s.Start
	}
	return s.Start <= offset && offset < s.End
}

// StartLoc returns the location of the start of this span.
func (s Span) StartLoc(units Unit) Location {
	return s.File.Location(s.Start, units)
}

// EndLoc returns the location of the end of this span.
func (s Span) EndLoc(units Unit) Location {
	return s.File.Location(s.End, units)
}

// String implements [fmt.Stringer].
func (s Span) String() string {
	start := s.StartLoc(Runes)
	return fmt.Sprintf("%s:%d:%d[%d:%d]", s.Path(), start.Line, start.Column, s.Start, s.End)
}
