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

// Package change describes how a new text differs from an old one.
//
// A [Set] is an ordered list of disjoint [Range] values, each replacing a
// span of the old text with some number of bytes of new text. Sets are
// immutable: consuming a range returns a new set.
package change

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/bufbuild/reparse/internal/interval"
)

// Range replaces the bytes [Start, End) of the old text with NewLength bytes.
//
// A range with Start == End is a pure insertion.
type Range struct {
	Start, End int
	NewLength  int
}

// Len returns the length of the replaced old span.
func (r Range) Len() int { return r.End - r.Start }

// Delta returns how much this range grows the text by.
func (r Range) Delta() int { return r.NewLength - r.Len() }

// IsInsertion returns whether this range replaces nothing.
func (r Range) IsInsertion() bool { return r.Start == r.End }

// Affects returns whether this range can change the meaning of old text
// spanning [start, end).
//
// A replacement affects the span if the two overlap. An insertion at q
// affects it only if q falls strictly inside; text inserted at either edge
// leaves the span's own bytes intact.
func (r Range) Affects(start, end int) bool {
	if r.IsInsertion() {
		return start < r.Start && r.Start < end
	}
	return r.Start < end && start < r.End
}

// String implements [fmt.Stringer].
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d]+%d", r.Start, r.End, r.NewLength)
}

// Set is an ordered list of non-overlapping ranges, all expressed in terms of
// the old text.
//
// The zero value is the empty set, which describes an unchanged text.
type Set struct {
	ranges []Range
}

// NewSet validates ranges and wraps them in a [Set].
//
// Panics if the ranges are malformed, out of order or overlapping: callers
// are expected to know how their own edits relate.
func NewSet(ranges ...Range) Set {
	var seen interval.Map[int, int]
	for i, r := range ranges {
		if r.Start < 0 || r.End < r.Start || r.NewLength < 0 {
			panic(fmt.Sprintf("reparse/change: malformed range %v", r))
		}
		if i > 0 && r.Start < ranges[i-1].End {
			panic(fmt.Sprintf("reparse/change: range %v out of order after %v", r, ranges[i-1]))
		}

		// Insertions occupy the point they insert at, so that two insertions
		// at one offset, or an insertion at the start of a replacement,
		// collide.
		end := r.End - 1
		if r.IsInsertion() {
			end = r.Start
		}
		if overlap := seen.Insert(r.Start, end, i); overlap.Value != nil {
			panic(fmt.Sprintf("reparse/change: range %v overlaps %v", r, ranges[*overlap.Value]))
		}
	}
	return Set{ranges: slices.Clone(ranges)}
}

// Len returns the number of ranges in this set.
func (s Set) Len() int { return len(s.ranges) }

// IsEmpty returns whether this set contains no ranges.
func (s Set) IsEmpty() bool { return len(s.ranges) == 0 }

// Next returns the earliest range in this set, if any.
func (s Set) Next() (Range, bool) {
	if len(s.ranges) == 0 {
		return Range{}, false
	}
	return s.ranges[0], true
}

// Pop returns this set without its earliest range.
func (s Set) Pop() Set {
	if len(s.ranges) == 0 {
		return s
	}
	return Set{ranges: s.ranges[1:]}
}

// All yields the ranges of this set in order.
func (s Set) All() iter.Seq[Range] {
	return slices.Values(s.ranges)
}

// Delta returns the total growth of the text.
func (s Set) Delta() int {
	var d int
	for _, r := range s.ranges {
		d += r.Delta()
	}
	return d
}

// Then composes an edit onto this set.
//
// r is expressed in terms of the text this set produces; the result
// describes both edits relative to the original old text. Ranges that r
// overlaps or touches are merged with it.
func (s Set) Then(r Range) Set {
	if r.Start < 0 || r.End < r.Start || r.NewLength < 0 {
		panic(fmt.Sprintf("reparse/change: malformed range %v", r))
	}

	// deltas[i] is the growth caused by ranges before i.
	deltas := make([]int, len(s.ranges)+1)
	for i, x := range s.ranges {
		deltas[i+1] = deltas[i] + x.Delta()
	}

	lo, hi := len(s.ranges), 0
	for i, x := range s.ranges {
		newStart := x.Start + deltas[i]
		newEnd := newStart + x.NewLength
		if newStart <= r.End && r.Start <= newEnd {
			lo = min(lo, i)
			hi = i + 1
		}
	}

	var merged Range
	if lo >= hi {
		// Disjoint from everything: find where it goes.
		lo = len(s.ranges)
		for i, x := range s.ranges {
			if x.Start+deltas[i] > r.End {
				lo = i
				break
			}
		}
		hi = lo
		merged = Range{
			Start:     r.Start - deltas[lo],
			End:       r.End - deltas[lo],
			NewLength: r.NewLength,
		}
	} else {
		first, last := s.ranges[lo], s.ranges[hi-1]
		curStart := min(first.Start+deltas[lo], r.Start)
		curEnd := max(last.End+deltas[hi], r.End)
		merged = Range{
			Start:     min(first.Start, r.Start-deltas[lo]),
			End:       max(last.End, r.End-deltas[hi]),
			NewLength: curEnd - curStart - r.Len() + r.NewLength,
		}
	}

	out := make([]Range, 0, len(s.ranges)+1)
	out = append(out, s.ranges[:lo]...)
	out = append(out, merged)
	out = append(out, s.ranges[hi:]...)
	return NewSet(out...)
}

// String implements [fmt.Stringer].
func (s Set) String() string {
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
