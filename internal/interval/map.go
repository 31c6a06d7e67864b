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

// Package interval provides a btree-backed map of disjoint closed intervals.
package interval

import (
	"fmt"
	"iter"

	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints" //nolint:exptostd // Need integers, not cmp.Ordered.
)

// Endpoint is a type that may be used as an interval endpoint.
type Endpoint = constraints.Integer

// Map maps pairwise disjoint closed intervals with endpoints in K to values
// of type V.
//
// A zero value is ready to use.
type Map[K Endpoint, V any] struct {
	// Keys are the ends of intervals.
	tree btree.Map[K, *entry[K, V]]
}

// Interval is an entry of a [Map].
type Interval[K Endpoint, V any] struct {
	Start, End K // Inclusive.

	// Nil if this interval is not present in the map.
	Value *V
}

type entry[K Endpoint, V any] struct {
	start K
	value V
}

// Len returns the number of intervals in the map.
func (m *Map[K, V]) Len() int {
	return m.tree.Len()
}

// Get looks up the interval which contains point, if one exists.
func (m *Map[K, V]) Get(point K) Interval[K, V] {
	iter := m.tree.Iter()
	if !iter.Seek(point) || point < iter.Value().start {
		return Interval[K, V]{}
	}

	return Interval[K, V]{
		Start: iter.Value().start,
		End:   iter.Key(),
		Value: &iter.Value().value,
	}
}

// Intervals returns an iterator over the intervals in this map, in order.
func (m *Map[K, V]) Intervals() iter.Seq[Interval[K, V]] {
	return func(yield func(Interval[K, V]) bool) {
		iter := m.tree.Iter()
		for more := iter.First(); more; more = iter.Next() {
			if !yield(Interval[K, V]{
				Start: iter.Value().start,
				End:   iter.Key(),
				Value: &iter.Value().value,
			}) {
				return
			}
		}
	}
}

// Insert inserts [start, end] with the given value.
//
// If [start, end] overlaps an interval already in the map, nothing is
// inserted, and the overlapping interval with the least start is returned;
// this case is distinguished by overlap.Value != nil.
func (m *Map[K, V]) Insert(start, end K, value V) (overlap Interval[K, V]) {
	if start > end {
		panic(fmt.Sprintf("reparse/interval: start (%#v) > end (%#v)", start, end))
	}

	// Let [a, b] be the new interval and [c, d] the least interval in the
	// map with a <= d.
	iter := m.tree.Iter()
	if !iter.Seek(start) || end < iter.Value().start {
		// Either no such interval exists, or b < c: no overlap.
		m.tree.Set(end, &entry[K, V]{start: start, value: value})
		return Interval[K, V]{}
	}

	// Otherwise c <= b and a <= d, so [c, d] overlaps [a, b]. Because the
	// map is disjoint and [c, d] has the least end past a, it also has the
	// least start among the overlapping intervals.
	return Interval[K, V]{
		Start: iter.Value().start,
		End:   iter.Key(),
		Value: &iter.Value().value,
	}
}

// Format implements [fmt.Formatter].
func (m *Map[K, V]) Format(s fmt.State, v rune) {
	fmt.Fprint(s, "{")
	first := true
	m.tree.Scan(func(end K, entry *entry[K, V]) bool {
		if !first {
			fmt.Fprint(s, ", ")
		}
		first = false

		if entry.start == end {
			fmt.Fprintf(s, "%#v: ", entry.start)
		} else {
			fmt.Fprintf(s, "[%#v, %#v]: ", entry.start, end)
		}
		fmt.Fprintf(s, fmt.FormatString(s, v), entry.value)
		return true
	})
	fmt.Fprint(s, "}")
}
