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

// Package arena defines an append-only Arena with compressed pointers.
//
// Values in an arena are never moved or overwritten once allocated, which
// makes pointers into it safe to hold in persistent (copy-on-write) data
// structures such as reuse cursors.
package arena

import (
	"fmt"
	"math/bits"
)

const (
	minLenShift = 4
	minLen      = 1 << minLenShift
)

// Pointer is a compressed pointer into an [Arena].
//
// The pointer value of a particular pointer in an arena is equal to one
// plus the number of elements allocated before it. The zero value is nil.
type Pointer[T any] uint32

// Nil returns whether this pointer is nil.
func (p Pointer[T]) Nil() bool {
	return p == 0
}

// In looks up this pointer in the given arena.
//
// arena must be the arena that allocated this pointer. If p is nil, returns
// nil.
func (p Pointer[T]) In(arena *Arena[T]) *T {
	if p.Nil() {
		return nil
	}
	return arena.at(int(p) - 1)
}

// Arena is an append-only slab of T.
//
// It maintains a table of logarithmically-growing slices that mimic the
// resizing behavior of an ordinary slice, without ever moving a value once
// it has been allocated. Lookup is O(1): two loads instead of one.
//
// A zero Arena is empty and ready to use. An Arena is not safe for concurrent
// use.
type Arena[T any] struct {
	// Invariants:
	// 1. cap(table[0]) == minLen.
	// 2. cap(table[n]) == 2*cap(table[n-1]).
	// 3. len(table[n]) == cap(table[n]) for n < len(table)-1.
	table [][]T
}

// New allocates a new value on the arena.
func (a *Arena[T]) New(value T) Pointer[T] {
	if a.table == nil {
		a.table = [][]T{make([]T, 0, minLen)}
	}

	last := &a.table[len(a.table)-1]
	if len(*last) == cap(*last) {
		a.table = append(a.table, make([]T, 0, 2*cap(*last)))
		last = &a.table[len(a.table)-1]
	}

	*last = append(*last, value)
	return Pointer[T](a.Len())
}

// Len returns the number of values allocated so far.
func (a *Arena[T]) Len() int {
	if len(a.table) == 0 {
		return 0
	}
	return lenOfFirstN(len(a.table)-1) + len(a.table[len(a.table)-1])
}

func (a *Arena[T]) at(idx int) *T {
	if idx < 0 || idx >= a.Len() {
		panic(fmt.Sprintf("reparse/arena: pointer out of range: %#x", idx))
	}

	// The cumulative starting index of slice k is (2^k - 1) << minLenShift, so
	// adding minLen and taking the high bit recovers k.
	slice := bits.UintSize - bits.LeadingZeros(uint(idx)+minLen)
	slice -= minLenShift + 1

	return &a.table[slice][idx-lenOfFirstN(slice)]
}

// lenOfFirstN returns the total capacity of the first n slices.
func lenOfFirstN(n int) int {
	// 2^m + 2^(m+1) + ... + 2^(m+n-1) = 2^(m+n) - 2^m.
	return (minLen << n) - minLen
}
