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

// Package directive models conditional-compilation state.
//
// A [Stack] records which #if/#elif/#else groups are open at some point of a
// token stream, which branch of each is active, and which symbols are
// defined. Stacks are persistent values: applying a directive returns a new
// stack and never modifies the old one, so a stack can be captured alongside
// a reuse cursor and compared later.
//
// Defined symbols are interned into a table owned by the stack returned from
// [Predefined], and shared by every stack derived from it. The table lives
// as long as those stacks do, typically a single parse.
package directive

import (
	"fmt"
	"slices"

	"github.com/bufbuild/reparse/internal/intern"
)

// Kind is a kind of preprocessor directive.
type Kind uint8

const (
	Bad Kind = iota // Unrecognized or malformed directive.
	If
	Elif
	Else
	Endif
	Define
	Undef
	Region
	EndRegion
)

// Lookup returns the directive kind named by word, the text after '#'.
func Lookup(word string) Kind {
	switch word {
	case "if":
		return If
	case "elif":
		return Elif
	case "else":
		return Else
	case "endif":
		return Endif
	case "define":
		return Define
	case "undef":
		return Undef
	case "region":
		return Region
	case "endregion":
		return EndRegion
	default:
		return Bad
	}
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case Bad:
		return "#bad"
	case If:
		return "#if"
	case Elif:
		return "#elif"
	case Else:
		return "#else"
	case Endif:
		return "#endif"
	case Define:
		return "#define"
	case Undef:
		return "#undef"
	case Region:
		return "#region"
	case EndRegion:
		return "#endregion"
	default:
		return fmt.Sprintf("directive.Kind(%d)", int(k))
	}
}

// IsConditional returns whether this kind opens, continues or closes a
// conditional group.
func (k Kind) IsConditional() bool {
	switch k {
	case If, Elif, Else, Endif:
		return true
	default:
		return false
	}
}

// Directive is the evaluated effect of one directive line, as recorded by
// the lexer when it was first seen.
//
// Recording the evaluation makes replaying a directive independent of the
// state it was originally evaluated in.
type Directive struct {
	Kind Kind

	// The symbol named by #define or #undef.
	Symbol string

	// Whether the directive itself appeared in active code. For #if, #elif
	// and #else it is whether the branch it introduces is active.
	Active bool

	// For #if, #elif and #else: whether this branch was selected. A branch
	// can be taken but inactive when its enclosing group is inactive.
	BranchTaken bool
}

// String implements [fmt.Stringer].
func (d Directive) String() string {
	s := d.Kind.String()
	if d.Symbol != "" {
		s += " " + d.Symbol
	}
	if d.Active {
		s += " active"
	}
	if d.BranchTaken {
		s += " taken"
	}
	return s
}

// frame is one open #if/#elif/#else or #region entry.
type frame struct {
	kind   Kind
	active bool
	taken  bool
	depth  int // Number of open #if groups, counting this one.
	next   *frame
}

// Stack is the conditional-compilation state at a point in a token stream.
//
// The zero value is an empty stack: no open groups, nothing defined.
type Stack struct {
	top     *frame
	symbols *intern.Table
	defined []intern.ID // Sorted; never mutated once shared.
}

// Predefined returns an empty stack with the given symbols defined.
func Predefined(syms ...string) Stack {
	s := Stack{symbols: new(intern.Table)}
	for _, sym := range syms {
		s = s.define(sym)
	}
	return s
}

// Apply returns the stack that results from applying d to s.
func (s Stack) Apply(d Directive) Stack {
	switch d.Kind {
	case If:
		s.top = &frame{kind: If, active: d.Active, taken: d.BranchTaken, depth: s.Depth() + 1, next: s.top}
	case Elif, Else:
		if s.group() == nil {
			return s // Unmatched; reported by the lexer.
		}
		s.top = &frame{kind: d.Kind, active: d.Active, taken: d.BranchTaken, depth: s.Depth(), next: s.top}
	case Endif:
		if f := s.group(); f != nil {
			s.top = f.next
		}
	case Region:
		s.top = &frame{kind: Region, active: s.Active(), depth: s.Depth(), next: s.top}
	case EndRegion:
		for f := s.top; f != nil; f = f.next {
			if f.kind == Region {
				s.top = f.next
				break
			}
			if f.kind == If {
				break // #endregion cannot close a region across an open #if.
			}
		}
	case Define:
		if d.Active {
			s = s.define(d.Symbol)
		}
	case Undef:
		if d.Active {
			s = s.undefine(d.Symbol)
		}
	}
	return s
}

// Active returns whether code at this point is active, i.e. not excluded by
// any enclosing conditional branch.
func (s Stack) Active() bool {
	for f := s.top; f != nil; f = f.next {
		if f.kind != Region {
			return f.active
		}
	}
	return true
}

// InGroup returns whether an #if group is open, i.e. whether #elif, #else and
// #endif are meaningful here.
func (s Stack) InGroup() bool {
	return s.group() != nil
}

// GroupActive returns whether the code enclosing the innermost open #if group
// is active. This is the activity an #elif or #else in the group inherits.
func (s Stack) GroupActive() bool {
	f := s.group()
	if f == nil {
		return s.Active()
	}
	return Stack{top: f.next}.Active()
}

// PrevBranchTaken returns whether any branch of the innermost open #if group has
// already been taken.
func (s Stack) PrevBranchTaken() bool {
	for f := s.top; f != nil; f = f.next {
		switch f.kind {
		case If:
			return f.taken
		case Elif, Else:
			if f.taken {
				return true
			}
		}
	}
	return false
}

// HasElse returns whether the innermost open #if group already has an #else.
func (s Stack) HasElse() bool {
	for f := s.top; f != nil; f = f.next {
		switch f.kind {
		case If:
			return false
		case Else:
			return true
		}
	}
	return false
}

// Depth returns the number of open #if groups.
func (s Stack) Depth() int {
	if s.top == nil {
		return 0
	}
	return s.top.depth
}

// IsDefined returns whether sym is currently defined.
func (s Stack) IsDefined(sym string) bool {
	if s.symbols == nil {
		return false
	}
	id, ok := s.symbols.Query(sym)
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(s.defined, id)
	return found
}

// Defined returns the defined symbols, in no particular order.
func (s Stack) Defined() []string {
	out := make([]string, len(s.defined))
	for i, id := range s.defined {
		out[i] = s.symbols.Value(id)
	}
	return out
}

// Equivalent returns whether two stacks describe the same conditional
// state: the same open groups and branches, with the same activity, and the
// same defined symbols. Where the directives came from is not compared.
func (s Stack) Equivalent(other Stack) bool {
	if !s.sameDefined(other) {
		return false
	}

	a, b := s.top, other.top
	for a != nil && b != nil {
		if a == b {
			return true // Shared tail.
		}
		if a.kind != b.kind || a.active != b.active || a.taken != b.taken || a.depth != b.depth {
			return false
		}
		a, b = a.next, b.next
	}
	return a == nil && b == nil
}

// String implements [fmt.Stringer].
func (s Stack) String() string {
	var frames []string
	for f := s.top; f != nil; f = f.next {
		frames = append(frames, fmt.Sprintf("%v(active=%v taken=%v)", f.kind, f.active, f.taken))
	}
	slices.Reverse(frames)
	return fmt.Sprintf("%v defined=%v", frames, s.Defined())
}

// group returns the frame of the innermost open #if.
func (s Stack) group() *frame {
	for f := s.top; f != nil; f = f.next {
		if f.kind == If {
			return f
		}
	}
	return nil
}

// sameDefined returns whether both stacks define the same symbols.
func (s Stack) sameDefined(other Stack) bool {
	if len(s.defined) != len(other.defined) {
		return false
	}
	if s.symbols == other.symbols {
		return slices.Equal(s.defined, other.defined)
	}
	for _, id := range s.defined {
		if !other.IsDefined(s.symbols.Value(id)) {
			return false
		}
	}
	return true
}

func (s Stack) define(sym string) Stack {
	if s.symbols == nil {
		s.symbols = new(intern.Table)
	}
	id := s.symbols.Intern(sym)
	idx, found := slices.BinarySearch(s.defined, id)
	if found {
		return s
	}
	s.defined = slices.Insert(slices.Clip(s.defined), idx, id)
	return s
}

func (s Stack) undefine(sym string) Stack {
	if s.symbols == nil {
		return s
	}
	id, ok := s.symbols.Query(sym)
	if !ok {
		return s
	}
	idx, found := slices.BinarySearch(s.defined, id)
	if !found {
		return s
	}
	s.defined = slices.Delete(slices.Clone(s.defined), idx, idx+1)
	return s
}
