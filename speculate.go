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

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/parser"
	"github.com/bufbuild/reparse/red"
)

// Speculate applies each candidate list of edits to old, as if by [Edit],
// and returns the results in the same order.
//
// Candidates are reparsed concurrently; old is shared between them. If any
// candidate fails, the remaining ones are cancelled and the first error is
// returned.
func Speculate(ctx context.Context, old *red.Tree, candidates [][]change.Edit, opts ...Option) ([]*parser.Result, error) {
	o := newOptions(ctx, opts)
	results := make([]*parser.Result, len(candidates))

	sem := semaphore.NewWeighted(int64(o.parallelism))
	g, gctx := errgroup.WithContext(ctx)
	for i, edits := range candidates {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			res, err := o.edit(gctx, old, edits)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		// Acquire can fail without any reparse reporting an error.
		return nil, context.Cause(ctx)
	}
	return results, nil
}
