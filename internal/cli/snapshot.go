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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bufbuild/reparse"
	"github.com/bufbuild/reparse/internal/logging"
)

// SnapshotExtension is appended to a file's path to name its snapshot when
// no output is given.
const SnapshotExtension = ".tree"

func newSnapshotCommand(g *globals) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Save the syntax tree of a file",
		Long: `Parse a file and save its syntax tree, so that a later "reparse edit --tree"
can reuse it without parsing the file again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readFile(args[0])
			if err != nil {
				return err
			}
			res, err := reparse.Parse(cmd.Context(), file, g.options()...)
			if err != nil {
				return err
			}

			if output == "" {
				output = args[0] + SnapshotExtension
			}
			data := g.snapshot(res.Tree.Root)
			if err := writeFile(output, data); err != nil {
				return err
			}
			logging.Default().Info("wrote snapshot", logging.FieldPath, output, "bytes", len(data))
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot path (default <file>"+SnapshotExtension+")")
	return cmd
}
