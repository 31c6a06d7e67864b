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
	"github.com/bufbuild/reparse/green"
)

func newParseCommand(g *globals) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readFile(args[0])
			if err != nil {
				return err
			}
			res, err := reparse.Parse(cmd.Context(), file, g.options()...)
			if err != nil {
				return err
			}

			if tree {
				fmt.Fprint(cmd.OutOrStdout(), green.Dump(res.Tree.Root))
			}
			return g.report(cmd, res)
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "print the syntax tree")
	return cmd
}
