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

package reparse

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/internal/logging"
	"github.com/bufbuild/reparse/parser"
	"github.com/bufbuild/reparse/red"
	"github.com/bufbuild/reparse/source"
)

// ErrBadEdit is returned for edits that are out of range or out of order.
var ErrBadEdit = errors.New("reparse: bad edit")

// Option customizes Parse, Reparse, Edit, Open and Speculate.
type Option func(*options)

type options struct {
	parser      parser.Options
	logger      *log.Logger
	parallelism int
}

// WithDefines defines preprocessor symbols before the first line, as if by
// #define. A tree must always be reparsed with the symbols it was parsed
// with.
func WithDefines(symbols ...string) Option {
	return func(o *options) {
		o.parser.Predefined = append(o.parser.Predefined, symbols...)
	}
}

// WithLogger sets the logger used to report parse statistics. If not given,
// the logger attached to the context is used.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithParallelism limits how many reparses Speculate runs at once. A
// non-positive value means GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

func newOptions(ctx context.Context, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.FromContext(ctx)
	}
	if o.parallelism <= 0 {
		o.parallelism = runtime.GOMAXPROCS(-1)
	}
	return o
}

// Parse parses file from scratch.
func Parse(ctx context.Context, file *source.File, opts ...Option) (*parser.Result, error) {
	o := newOptions(ctx, opts)
	return o.reparse(ctx, nil, file, change.Set{})
}

// Reparse parses file, which is old's text with changes applied, reusing
// what it can of old.
func Reparse(ctx context.Context, old *red.Tree, file *source.File, changes change.Set, opts ...Option) (*parser.Result, error) {
	o := newOptions(ctx, opts)
	return o.reparse(ctx, old, file, changes)
}

// Edit applies edits to old's text and reparses the result.
//
// Edits are expressed in terms of old's text and must be ordered and
// non-overlapping. Edits that touch, such as two insertions at one offset,
// are applied in order.
func Edit(ctx context.Context, old *red.Tree, edits []change.Edit, opts ...Option) (*parser.Result, error) {
	o := newOptions(ctx, opts)
	return o.edit(ctx, old, edits)
}

func (o *options) edit(ctx context.Context, old *red.Tree, edits []change.Edit) (*parser.Result, error) {
	text := old.File.Text()
	merged, err := mergeEdits(text, edits)
	if err != nil {
		return nil, err
	}

	trimmed := merged[:0]
	for _, e := range merged {
		e = e.Trim(text)
		if e.Start == e.End && e.Text == "" {
			continue
		}
		trimmed = append(trimmed, e)
	}

	newText, set := change.Apply(text, trimmed...)
	return o.reparse(ctx, old, source.NewFile(old.File.Path(), newText), set)
}

// mergeEdits validates edits against text and joins each edit that starts
// where the previous one ends into it, so that the result is separated by
// at least one unchanged byte. Trimming never widens an edit, so the
// trimmed result remains a valid change set.
func mergeEdits(text string, edits []change.Edit) ([]change.Edit, error) {
	merged := make([]change.Edit, 0, len(edits))
	prev := 0
	for _, e := range edits {
		if e.Start < prev || e.End < e.Start || e.End > len(text) {
			return nil, fmt.Errorf("%w: %d:%d in %d bytes", ErrBadEdit, e.Start, e.End, len(text))
		}
		prev = e.End
		if n := len(merged); n > 0 && merged[n-1].End == e.Start {
			last := &merged[n-1]
			last.End = e.End
			last.Text += e.Text
			continue
		}
		merged = append(merged, e)
	}
	return merged, nil
}

func (o *options) reparse(ctx context.Context, old *red.Tree, file *source.File, changes change.Set) (*parser.Result, error) {
	start := time.Now()
	res, err := parser.Reparse(ctx, oldRoot(old), file, changes, o.parser)
	if err != nil {
		o.logger.Debug("parse aborted", logging.FieldPath, file.Path(), logging.FieldError, err)
		return nil, err
	}
	o.logger.Debug("parsed",
		logging.FieldPath, file.Path(),
		logging.FieldReused, res.Stats.ReusedNodes+res.Stats.ReusedTokens,
		logging.FieldLexed, res.Stats.LexedTokens,
		logging.FieldSkipped, res.Stats.SkippedTokens,
		logging.FieldElapsed, time.Since(start),
	)
	return res, nil
}

func oldRoot(old *red.Tree) *green.Node {
	if old == nil {
		return nil
	}
	return old.Root
}
