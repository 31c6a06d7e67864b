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

// Package codec stores green trees in the Protobuf wire format, so that a
// tree can outlive the process that parsed it and still serve as the old
// tree of a reparse.
//
// A snapshot records the symbols predefined for the parse, since a tree is
// only a valid old tree for reparses that predefine the same ones. For each
// node it records the kind, text, trivia (directive records and
// skipped tokens included), lookahead, diagnostics and annotations. Widths
// and flags are recomputed when decoding. Annotation data survives only if
// it is a string or a byte slice.
//
// The encoding, as Protobuf messages:
//
//	message Snapshot { uint32 version = 1; Node root = 2; repeated string predefined = 3; }
//	message Node {
//	  uint32 kind = 1; bytes text = 2;
//	  repeated Trivia leading = 3; repeated Trivia trailing = 4;
//	  repeated Node children = 5; uint32 lookahead = 6; bool missing = 7;
//	  repeated Diagnostic diagnostics = 8; repeated Annotation annotations = 9;
//	}
//	message Trivia { uint32 kind = 1; bytes text = 2; Directive directive = 3; repeated Node skipped = 4; }
//	message Directive { uint32 kind = 1; string symbol = 2; bool active = 3; bool branch_taken = 4; }
//	message Diagnostic { uint32 offset = 1; uint32 width = 2; string code = 3; string message = 4; }
//	message Annotation { string kind = 1; string text = 2; bytes data = 3; }
package codec

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bufbuild/reparse/directive"
	"github.com/bufbuild/reparse/green"
)

// Version is the snapshot format version written by [Marshal].
const Version = 1

// ErrMalformed is returned, wrapped, for snapshots that cannot be decoded.
var ErrMalformed = errors.New("reparse/codec: malformed snapshot")

// maxDepth bounds nesting, so that hostile input cannot exhaust the stack.
const maxDepth = 10000

// Snapshot is a tree along with the symbols predefined when parsing it.
type Snapshot struct {
	Root       *green.Node
	Predefined []string // Sorted, without duplicates, once decoded.
}

// SamePredefined returns whether syms, in any order, are the symbols this
// snapshot was parsed with.
func (s Snapshot) SamePredefined(syms []string) bool {
	return slices.Equal(normalize(s.Predefined), normalize(syms))
}

// Marshal encodes a tree parsed without predefined symbols.
func Marshal(root *green.Node) []byte {
	return Encode(Snapshot{Root: root})
}

// Encode encodes a snapshot.
func Encode(s Snapshot) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, appendNode(nil, s.Root))
	for _, sym := range normalize(s.Predefined) {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, sym)
	}
	return b
}

func normalize(syms []string) []string {
	syms = slices.Sorted(slices.Values(syms))
	return slices.Compact(syms)
}

func appendNode(b []byte, n *green.Node) []byte {
	b = appendVarint(b, 1, uint64(n.Kind()))
	if n.IsToken() {
		if n.Text() != "" {
			b = protowire.AppendTag(b, 2, protowire.BytesType)
			b = protowire.AppendString(b, n.Text())
		}
		for _, t := range n.Leading() {
			b = protowire.AppendTag(b, 3, protowire.BytesType)
			b = protowire.AppendBytes(b, appendTrivia(nil, t))
		}
		for _, t := range n.Trailing() {
			b = protowire.AppendTag(b, 4, protowire.BytesType)
			b = protowire.AppendBytes(b, appendTrivia(nil, t))
		}
		b = appendVarint(b, 6, uint64(n.Lookahead()))
		if n.IsMissing() {
			b = appendVarint(b, 7, 1)
		}
	}
	for _, c := range n.Children() {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, appendNode(nil, c))
	}
	for _, d := range n.Diagnostics() {
		var m []byte
		m = appendVarint(m, 1, uint64(d.Offset))
		m = appendVarint(m, 2, uint64(d.Width))
		m = appendString(m, 3, d.Code)
		m = appendString(m, 4, d.Message)
		b = protowire.AppendTag(b, 8, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	for _, a := range n.Annotations() {
		m := appendString(nil, 1, a.Kind)
		switch data := a.Data.(type) {
		case string:
			m = appendString(m, 2, data)
		case []byte:
			m = protowire.AppendTag(m, 3, protowire.BytesType)
			m = protowire.AppendBytes(m, data)
		}
		b = protowire.AppendTag(b, 9, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	return b
}

func appendTrivia(b []byte, t green.Trivia) []byte {
	b = appendVarint(b, 1, uint64(t.Kind))
	b = appendString(b, 2, t.Text)
	if t.Kind == green.DirectiveTrivia {
		d := t.Directive
		var m []byte
		m = appendVarint(m, 1, uint64(d.Kind))
		m = appendString(m, 2, d.Symbol)
		m = appendBool(m, 3, d.Active)
		m = appendBool(m, 4, d.BranchTaken)
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	for _, tok := range t.Skipped {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, appendNode(nil, tok))
	}
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// Unmarshal decodes the tree of a snapshot encoded by [Marshal] or
// [Encode].
func Unmarshal(data []byte) (*green.Node, error) {
	s, err := Decode(data)
	return s.Root, err
}

// Decode decodes a snapshot encoded by [Encode].
func Decode(data []byte) (Snapshot, error) {
	var (
		version uint64
		root    *green.Node
		syms    []string
	)
	err := fields(data, func(f field) error {
		switch f.num {
		case 1:
			v, err := f.varint()
			version = v
			return err
		case 2:
			b, err := f.bytes()
			if err != nil {
				return err
			}
			root, err = decodeNode(b, 0)
			return err
		case 3:
			b, err := f.bytes()
			syms = append(syms, string(b))
			return err
		}
		return nil
	})
	switch {
	case err != nil:
		return Snapshot{}, err
	case version != Version:
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, version)
	case root == nil:
		return Snapshot{}, fmt.Errorf("%w: no root node", ErrMalformed)
	}
	return Snapshot{Root: root, Predefined: normalize(syms)}, nil
}

func decodeNode(data []byte, depth int) (*green.Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nested too deeply", ErrMalformed)
	}

	var (
		kind              green.Kind
		text              string
		leading, trailing []green.Trivia
		children          []*green.Node
		lookahead         int
		missing           bool
		diags             []green.Diagnostic
		annots            []green.Annotation
	)
	err := fields(data, func(f field) error {
		switch f.num {
		case 1:
			v, err := f.bounded(math.MaxUint16)
			kind = green.Kind(v)
			return err
		case 2:
			b, err := f.bytes()
			text = string(b)
			return err
		case 3, 4:
			b, err := f.bytes()
			if err != nil {
				return err
			}
			t, err := decodeTrivia(b, depth)
			if err != nil {
				return err
			}
			if f.num == 3 {
				leading = append(leading, t)
			} else {
				trailing = append(trailing, t)
			}
		case 5:
			b, err := f.bytes()
			if err != nil {
				return err
			}
			c, err := decodeNode(b, depth+1)
			if err != nil {
				return err
			}
			children = append(children, c)
		case 6:
			v, err := f.bounded(math.MaxInt32)
			lookahead = int(v)
			return err
		case 7:
			v, err := f.varint()
			missing = v != 0
			return err
		case 8:
			b, err := f.bytes()
			if err != nil {
				return err
			}
			d, err := decodeDiagnostic(b)
			diags = append(diags, d)
			return err
		case 9:
			b, err := f.bytes()
			if err != nil {
				return err
			}
			a, err := decodeAnnotation(b)
			annots = append(annots, a)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var n *green.Node
	switch {
	case kind.IsToken():
		if len(children) > 0 {
			return nil, fmt.Errorf("%w: token %v has children", ErrMalformed, kind)
		}
		if missing {
			n = green.NewMissing(kind)
		} else {
			n = green.NewToken(kind, leading, text, trailing)
		}
		n = n.WithLookahead(lookahead)
	case kind.IsNode():
		if text != "" || leading != nil || trailing != nil {
			return nil, fmt.Errorf("%w: %v has text", ErrMalformed, kind)
		}
		n = green.NewNode(kind, children...)
	default:
		return nil, fmt.Errorf("%w: bad node kind %d", ErrMalformed, kind)
	}
	return n.WithDiagnostics(diags...).WithAnnotations(annots...), nil
}

func decodeTrivia(data []byte, depth int) (green.Trivia, error) {
	var t green.Trivia
	err := fields(data, func(f field) error {
		switch f.num {
		case 1:
			v, err := f.bounded(math.MaxUint16)
			t.Kind = green.Kind(v)
			return err
		case 2:
			b, err := f.bytes()
			t.Text = string(b)
			return err
		case 3:
			b, err := f.bytes()
			if err != nil {
				return err
			}
			t.Directive, err = decodeDirective(b)
			return err
		case 4:
			b, err := f.bytes()
			if err != nil {
				return err
			}
			tok, err := decodeNode(b, depth+1)
			if err != nil {
				return err
			}
			if !tok.IsToken() {
				return fmt.Errorf("%w: skipped %v is not a token", ErrMalformed, tok.Kind())
			}
			t.Skipped = append(t.Skipped, tok)
		}
		return nil
	})
	if err == nil && !t.Kind.IsTrivia() {
		err = fmt.Errorf("%w: bad trivia kind %d", ErrMalformed, t.Kind)
	}
	return t, err
}

func decodeDirective(data []byte) (directive.Directive, error) {
	var d directive.Directive
	err := fields(data, func(f field) error {
		switch f.num {
		case 1:
			v, err := f.bounded(math.MaxUint8)
			d.Kind = directive.Kind(v)
			return err
		case 2:
			b, err := f.bytes()
			d.Symbol = string(b)
			return err
		case 3:
			v, err := f.varint()
			d.Active = v != 0
			return err
		case 4:
			v, err := f.varint()
			d.BranchTaken = v != 0
			return err
		}
		return nil
	})
	return d, err
}

func decodeDiagnostic(data []byte) (green.Diagnostic, error) {
	var d green.Diagnostic
	err := fields(data, func(f field) error {
		switch f.num {
		case 1:
			v, err := f.bounded(math.MaxInt32)
			d.Offset = int(v)
			return err
		case 2:
			v, err := f.bounded(math.MaxInt32)
			d.Width = int(v)
			return err
		case 3:
			b, err := f.bytes()
			d.Code = string(b)
			return err
		case 4:
			b, err := f.bytes()
			d.Message = string(b)
			return err
		}
		return nil
	})
	return d, err
}

func decodeAnnotation(data []byte) (green.Annotation, error) {
	var a green.Annotation
	err := fields(data, func(f field) error {
		switch f.num {
		case 1:
			b, err := f.bytes()
			a.Kind = string(b)
			return err
		case 2:
			b, err := f.bytes()
			a.Data = string(b)
			return err
		case 3:
			b, err := f.bytes()
			a.Data = b
			return err
		}
		return nil
	})
	return a, err
}
