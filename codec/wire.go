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

package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is one field of a message being decoded.
type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte // The value, tag excluded.
}

// varint returns this field's value as an integer.
func (f field) varint() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, fmt.Errorf("%w: field %d is not a varint", ErrMalformed, f.num)
	}
	v, n := protowire.ConsumeVarint(f.raw)
	if n < 0 {
		return 0, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
	}
	return v, nil
}

// bounded is like varint, but rejects values above limit, so that they are
// not silently truncated by a conversion.
func (f field) bounded(limit uint64) (uint64, error) {
	v, err := f.varint()
	if err == nil && v > limit {
		return 0, fmt.Errorf("%w: field %d is out of range: %d", ErrMalformed, f.num, v)
	}
	return v, err
}

// bytes returns this field's value as a length-prefixed byte string.
func (f field) bytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, fmt.Errorf("%w: field %d is not length-prefixed", ErrMalformed, f.num)
	}
	v, n := protowire.ConsumeBytes(f.raw)
	if n < 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
	}
	return v, nil
}

// fields calls yield for each field of a message, in order. Unknown fields
// are passed along too; callers ignore the ones they do not recognize.
func fields(data []byte, yield func(field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(m))
		}
		if err := yield(field{num: num, typ: typ, raw: data[:m]}); err != nil {
			return err
		}
		data = data[m:]
	}
	return nil
}
