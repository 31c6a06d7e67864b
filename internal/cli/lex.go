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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bufbuild/reparse/source"
)

func newLexCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lex <file>",
		Short: "Print the tokens of a file",
		Long: `Print the tokens of a file, one per line, with the location where each
token's text starts. Trivia, including preprocessor directives and the text
of inactive conditional blocks, is attached to the tokens and not printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			offset := 0
			for _, tok := range g.parserOptions().Lexer().All(file) {
				loc := file.Location(offset+tok.LeadingWidth(), source.Runes)
				fmt.Fprintf(out, "%d:%d\t%v\t%s\n", loc.Line, loc.Column, tok.Kind(), strconv.Quote(tok.Text()))
				offset += tok.Width()
			}
			return nil
		},
	}
}
