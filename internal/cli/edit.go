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

package cli

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/bufbuild/reparse"
	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/codec"
	"github.com/bufbuild/reparse/green"
	"github.com/bufbuild/reparse/internal/logging"
	"github.com/bufbuild/reparse/parser"
	"github.com/bufbuild/reparse/red"
	"github.com/bufbuild/reparse/source"
)

var (
	// ErrStaleSnapshot is returned when a snapshot was not taken of the
	// file it is used with.
	ErrStaleSnapshot = errors.New("snapshot does not match file")

	// ErrMismatch is returned by edit --verify when the reparsed tree
	// differs from a parse from scratch.
	ErrMismatch = errors.New("reparsed tree differs from a fresh parse")
)

type editFlags struct {
	replace  []string
	snapshot string
	verify   bool
	write    bool
}

func newEditCommand(g *globals) *cobra.Command {
	flags := new(editFlags)

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Apply edits to a file and reparse it incrementally",
		Long:  editLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], g, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.replace, "replace", "r", nil, "replace bytes `start:end=text`; may be repeated")
	cmd.Flags().StringVar(&flags.snapshot, "tree", "", "reparse against the tree in this snapshot instead of parsing the file")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "check the result against a parse from scratch")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write the edited file, and snapshot if given, back to disk")
	_ = cmd.MarkFlagRequired("replace")
	return cmd
}

const editLongDescription = `Apply edits to a file and reparse it incrementally, printing how much
of the old tree was reused.

Each edit replaces the bytes [start, end) of the original file. Quoted
replacement text is unquoted with Go syntax, so "\n" inserts a newline.
Edits at the same offset are applied in the order given.

Examples:
  reparse edit main.rp -r 10:12=foo                # Replace two bytes
  reparse edit main.rp -r 0:0='"x;\n"' --verify    # Insert a line and check the result
  reparse edit main.rp --tree main.rp.tree -r 4:5=1 -w  # Reuse a saved tree`

func runEdit(cmd *cobra.Command, path string, g *globals, flags *editFlags) error {
	ctx := cmd.Context()
	logger := logging.Default()

	edits, err := parseEdits(flags.replace)
	if err != nil {
		return err
	}

	file, err := readFile(path)
	if err != nil {
		return err
	}
	old, err := g.oldTree(ctx, file, flags.snapshot)
	if err != nil {
		return err
	}

	res, err := reparse.Edit(ctx, old, edits, g.options()...)
	if err != nil {
		return err
	}
	printStats(cmd, res.Stats)

	if flags.verify {
		if err := verify(ctx, cmd, g, res); err != nil {
			return err
		}
		logger.Debug("verified", logging.FieldPath, path)
	}

	if flags.write {
		if err := writeFile(path, []byte(res.Tree.File.Text())); err != nil {
			return err
		}
		if flags.snapshot != "" {
			if err := writeFile(flags.snapshot, g.snapshot(res.Tree.Root)); err != nil {
				return err
			}
		}
	}

	return g.report(cmd, res)
}

// oldTree loads the tree file was last parsed into from a snapshot, or
// parses it if there is none.
func (g *globals) oldTree(ctx context.Context, file *source.File, snapshot string) (*red.Tree, error) {
	if snapshot == "" {
		res, err := reparse.Parse(ctx, file, g.options()...)
		if err != nil {
			return nil, err
		}
		return res.Tree, nil
	}

	data, err := os.ReadFile(snapshot)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	s, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", snapshot, err)
	}
	if s.Root.FullText() != file.Text() {
		return nil, fmt.Errorf("%s: %w %s", snapshot, ErrStaleSnapshot, file.Path())
	}
	if !s.SamePredefined(g.cfg.Defines) {
		return nil, fmt.Errorf("%s: %w: parsed with defines %q, not %q",
			snapshot, ErrStaleSnapshot, s.Predefined, g.cfg.Defines)
	}
	return red.New(file, s.Root), nil
}

// snapshot encodes root, which was parsed with the configured defines.
func (g *globals) snapshot(root *green.Node) []byte {
	return codec.Encode(codec.Snapshot{Root: root, Predefined: g.cfg.Defines})
}

func verify(ctx context.Context, cmd *cobra.Command, g *globals, res *parser.Result) error {
	fresh, err := reparse.Parse(ctx, res.Tree.File, g.options()...)
	if err != nil {
		return err
	}
	if bytes.Equal(codec.Marshal(fresh.Tree.Root), codec.Marshal(res.Tree.Root)) {
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(green.Dump(fresh.Tree.Root)),
		B:        difflib.SplitLines(green.Dump(res.Tree.Root)),
		FromFile: "parse",
		ToFile:   "reparse",
		Context:  3,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.ErrOrStderr(), diff)
	return ErrMismatch
}

// parseEdits parses start:end=text arguments, sorted by position.
func parseEdits(args []string) ([]change.Edit, error) {
	edits := make([]change.Edit, 0, len(args))
	for _, arg := range args {
		span, text, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("edit %q: want start:end=text", arg)
		}
		start, end, ok := strings.Cut(span, ":")
		if !ok {
			end = start
		}

		var e change.Edit
		var err error
		if e.Start, err = strconv.Atoi(start); err != nil {
			return nil, fmt.Errorf("edit %q: bad start: %w", arg, err)
		}
		if e.End, err = strconv.Atoi(end); err != nil {
			return nil, fmt.Errorf("edit %q: bad end: %w", arg, err)
		}
		e.Text = text
		if strings.HasPrefix(text, `"`) {
			if e.Text, err = strconv.Unquote(text); err != nil {
				return nil, fmt.Errorf("edit %q: bad text: %w", arg, err)
			}
		}
		edits = append(edits, e)
	}
	slices.SortStableFunc(edits, func(a, b change.Edit) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return edits, nil
}

func printStats(cmd *cobra.Command, stats parser.Stats) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"reused %d nodes and %d tokens, lexed %d tokens, skipped %d tokens\n",
		stats.ReusedNodes, stats.ReusedTokens, stats.LexedTokens, stats.SkippedTokens)
}

func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
