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

package directive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/reparse/directive"
)

func TestConditionals(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	s := directive.Predefined("DEBUG")
	assert.True(s.Active())
	assert.True(s.IsDefined("DEBUG"))
	assert.False(s.IsDefined("RELEASE"))
	assert.False(s.InGroup())

	s = s.Apply(directive.Directive{Kind: directive.If, Active: true, BranchTaken: true})
	assert.Equal(1, s.Depth())
	assert.True(s.Active())
	assert.True(s.PrevBranchTaken())

	s = s.Apply(directive.Directive{Kind: directive.Else})
	assert.Equal(1, s.Depth())
	assert.False(s.Active())
	assert.True(s.PrevBranchTaken())
	assert.True(s.HasElse())
	assert.True(s.GroupActive())

	// Nested groups inside an inactive branch are inactive no matter what.
	inner := s.Apply(directive.Directive{Kind: directive.If, BranchTaken: true})
	assert.Equal(2, inner.Depth())
	assert.False(inner.Active())
	assert.False(inner.GroupActive())
	assert.Equal(1, inner.Apply(directive.Directive{Kind: directive.Endif}).Depth())

	s = s.Apply(directive.Directive{Kind: directive.Endif})
	assert.Equal(0, s.Depth())
	assert.True(s.Active())

	// Unmatched directives leave the stack alone.
	assert.True(s.Apply(directive.Directive{Kind: directive.Endif}).Equivalent(s))
	assert.True(s.Apply(directive.Directive{Kind: directive.Elif, Active: true}).Equivalent(s))
}

func TestElifChain(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var s directive.Stack
	s = s.Apply(directive.Directive{Kind: directive.If})
	assert.False(s.PrevBranchTaken())
	s = s.Apply(directive.Directive{Kind: directive.Elif, Active: true, BranchTaken: true})
	assert.True(s.Active())
	assert.True(s.PrevBranchTaken())
	assert.False(s.HasElse())
	s = s.Apply(directive.Directive{Kind: directive.Elif})
	assert.False(s.Active())
	assert.True(s.PrevBranchTaken())
	s = s.Apply(directive.Directive{Kind: directive.Endif})
	assert.Equal(0, s.Depth())
}

func TestDefines(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var s directive.Stack
	s1 := s.Apply(directive.Directive{Kind: directive.Define, Symbol: "A", Active: true})
	assert.True(s1.IsDefined("A"))
	assert.False(s.IsDefined("A"), "stacks are persistent")

	// Directives in inactive code have no effect.
	assert.False(s.Apply(directive.Directive{Kind: directive.Define, Symbol: "A"}).IsDefined("A"))

	s2 := s1.Apply(directive.Directive{Kind: directive.Define, Symbol: "B", Active: true})
	assert.ElementsMatch([]string{"A", "B"}, s2.Defined())
	s3 := s2.Apply(directive.Directive{Kind: directive.Undef, Symbol: "A", Active: true})
	assert.False(s3.IsDefined("A"))
	assert.True(s2.IsDefined("A"))
	assert.True(s3.IsDefined("B"))
}

func TestRegions(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var s directive.Stack
	s = s.Apply(directive.Directive{Kind: directive.Region, Active: true})
	s = s.Apply(directive.Directive{Kind: directive.If, Active: false})
	assert.False(s.Active())

	// Closing the region across an open #if is not allowed.
	assert.True(s.Apply(directive.Directive{Kind: directive.EndRegion}).Equivalent(s))

	s = s.Apply(directive.Directive{Kind: directive.Endif})
	assert.True(s.Active())
	s = s.Apply(directive.Directive{Kind: directive.EndRegion})
	assert.True(s.Equivalent(directive.Stack{}))
}

func TestEquivalent(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	build := func(active bool, syms ...string) directive.Stack {
		s := directive.Predefined(syms...)
		return s.Apply(directive.Directive{Kind: directive.If, Active: active, BranchTaken: active})
	}

	assert.True(build(true, "X").Equivalent(build(true, "X")))
	assert.False(build(true, "X").Equivalent(build(false, "X")))
	assert.False(build(true, "X").Equivalent(build(true, "Y")))
	assert.False(build(true).Equivalent(directive.Predefined()))
	assert.True(directive.Predefined("A", "B").Equivalent(directive.Predefined("B", "A")))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, directive.Elif, directive.Lookup("elif"))
	assert.Equal(t, directive.Bad, directive.Lookup("include"))
	assert.Equal(t, "#endregion", directive.EndRegion.String())
	assert.True(t, directive.Else.IsConditional())
	assert.False(t, directive.Define.IsConditional())
}
