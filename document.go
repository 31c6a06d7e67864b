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
	"sync"

	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/internal/logging"
	"github.com/bufbuild/reparse/parser"
	"github.com/bufbuild/reparse/red"
	"github.com/bufbuild/reparse/report"
	"github.com/bufbuild/reparse/source"
)

// ErrStaleVersion is returned when an update to a [Document] does not
// advance its version.
var ErrStaleVersion = errors.New("reparse: stale document version")

// Document is a file being edited. It is safe for concurrent use; updates
// are applied one at a time.
type Document struct {
	opts options

	mu      sync.RWMutex
	version int32
	result  *parser.Result
	diags   []report.Diagnostic
}

// Open parses text and returns a document for it.
func Open(ctx context.Context, path, text string, version int32, opts ...Option) (*Document, error) {
	d := &Document{opts: newOptions(ctx, opts)}
	res, err := d.opts.reparse(ctx, nil, source.NewFile(path, text), change.Set{})
	if err != nil {
		return nil, err
	}
	d.set(version, res)
	return d, nil
}

// Path returns the path the document was opened with.
func (d *Document) Path() string {
	return d.Tree().File.Path()
}

// Version returns the version of the most recent update.
func (d *Document) Version() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Tree returns the current tree.
func (d *Document) Tree() *red.Tree {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.result.Tree
}

// Text returns the current text.
func (d *Document) Text() string {
	return d.Tree().File.Text()
}

// Stats returns the statistics of the most recent parse.
func (d *Document) Stats() parser.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.result.Stats
}

// Diagnostics returns the diagnostics of the current tree, sorted by
// position.
func (d *Document) Diagnostics() []report.Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.diags
}

// Apply applies edits in order and reparses, moving the document to version.
//
// Each edit is expressed in terms of the text left by the edits before it.
// If any edit is out of range, or the parse is cancelled, the document is
// left unchanged.
func (d *Document) Apply(ctx context.Context, version int32, edits ...change.Edit) (parser.Stats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.apply(ctx, version, edits)
}

// Replace replaces the whole text, moving the document to version.
func (d *Document) Replace(ctx context.Context, version int32, text string) (parser.Stats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.apply(ctx, version, []change.Edit{{End: d.result.Tree.File.Len(), Text: text}})
}

func (d *Document) apply(ctx context.Context, version int32, edits []change.Edit) (parser.Stats, error) {
	if version <= d.version {
		return parser.Stats{}, fmt.Errorf("%w: %d after %d", ErrStaleVersion, version, d.version)
	}

	old := d.result.Tree
	text := old.File.Text()
	var set change.Set
	for i, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > len(text) {
			return parser.Stats{}, fmt.Errorf("%w: edit %d (%d:%d) in %d bytes", ErrBadEdit, i, e.Start, e.End, len(text))
		}
		e = e.Trim(text)
		if e.Start == e.End && e.Text == "" {
			continue
		}
		text = text[:e.Start] + e.Text + text[e.End:]
		set = set.Then(e.Range())
	}

	res, err := d.opts.reparse(ctx, old, source.NewFile(old.File.Path(), text), set)
	if err != nil {
		return parser.Stats{}, err
	}
	d.opts.logger.Debug("document updated",
		logging.FieldDocument, old.File.Path(),
		logging.FieldVersion, version,
	)
	d.setLocked(version, res)
	return res.Stats, nil
}

func (d *Document) set(version int32, res *parser.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setLocked(version, res)
}

func (d *Document) setLocked(version int32, res *parser.Result) {
	d.version = version
	d.result = res
	d.diags = report.Collect(res.Tree)
}
