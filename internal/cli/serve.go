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
	"github.com/spf13/cobra"

	"github.com/bufbuild/reparse/internal/logging"
	"github.com/bufbuild/reparse/lsp"
)

func newServeCommand(g *globals, info BuildInfo) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server",
		Long: `Run a Language Server Protocol server that reparses open documents as
they are edited and publishes their diagnostics. The server talks over stdin
and stdout unless --tcp is given.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			lsp.Configure(g.cfg.LogLevel)
			server := lsp.NewServer(info.Version, logging.Default(), g.options()...)
			if address != "" {
				logging.Default().Info("listening", "address", address)
				return server.RunTCP(address)
			}
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&address, "tcp", "", "listen for clients on this address instead of using stdio")
	return cmd
}
