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

// Package cli provides the Cobra command structure for the reparse tool.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bufbuild/reparse"
	"github.com/bufbuild/reparse/internal/config"
	"github.com/bufbuild/reparse/internal/logging"
	"github.com/bufbuild/reparse/parser"
	"github.com/bufbuild/reparse/report"
	"github.com/bufbuild/reparse/source"
)

// ErrDiagnostics is returned when a parse reports errors. The errors
// themselves have already been printed.
var ErrDiagnostics = errors.New("errors found")

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globals holds the persistent flags and the configuration they select.
type globals struct {
	configPath string
	debug      bool
	defines    []string
	color      string
	compact    bool

	cfg config.Config
}

// NewRootCommand creates the root reparse command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	g := new(globals)

	rootCmd := &cobra.Command{
		Use:   "reparse",
		Short: "Incrementally parse and reparse source files",
		Long: `reparse parses a small C-like statement language and keeps the syntax
tree up to date as the text is edited, reusing the unchanged parts of the
previous tree.

It can print tokens and trees, apply edits and report how much of the old
tree survived, save trees to snapshots, and serve documents to editors over
the Language Server Protocol.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return g.load()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "path to config file (default "+config.DefaultFile+")")
	flags.BoolVar(&g.debug, "debug", false, "enable debug logging")
	flags.StringSliceVarP(&g.defines, "define", "D", nil, "define a preprocessor symbol")
	flags.StringVar(&g.color, "color", "auto", "colorize diagnostics: auto, always, never")
	flags.BoolVar(&g.compact, "compact", false, "print one line per diagnostic")

	rootCmd.AddCommand(newLexCommand(g))
	rootCmd.AddCommand(newParseCommand(g))
	rootCmd.AddCommand(newEditCommand(g))
	rootCmd.AddCommand(newSnapshotCommand(g))
	rootCmd.AddCommand(newServeCommand(g, info))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

func (g *globals) load() error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	cfg.Defines = append(cfg.Defines, g.defines...)
	if g.debug {
		cfg.LogLevel = "debug"
	}
	logging.SetLevel(cfg.LogLevel)
	g.cfg = cfg

	logging.Default().Debug("configuration loaded",
		"defines", cfg.Defines,
		"parallelism", cfg.Parallelism,
	)
	return nil
}

func (g *globals) options() []reparse.Option {
	return []reparse.Option{
		reparse.WithDefines(g.cfg.Defines...),
		reparse.WithParallelism(g.cfg.Parallelism),
		reparse.WithLogger(logging.Default()),
	}
}

func (g *globals) parserOptions() parser.Options {
	return parser.Options{Predefined: g.cfg.Defines}
}

func (g *globals) renderer(w io.Writer) report.Renderer {
	return report.Renderer{Compact: g.compact, Colorize: colorEnabled(g.color, w)}
}

// colorEnabled reports whether output to w should be colorized. In auto
// mode, that is when w is a terminal and NO_COLOR is unset.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// report prints the diagnostics of res and returns [ErrDiagnostics] if any
// of them is an error.
func (g *globals) report(cmd *cobra.Command, res *parser.Result) error {
	diags := report.Collect(res.Tree)
	out := cmd.ErrOrStderr()
	errs, _, err := g.renderer(out).Render(diags, out)
	if err != nil {
		return err
	}
	if errs > 0 {
		return ErrDiagnostics
	}
	return nil
}

func readFile(path string) (*source.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return source.NewFile(path, string(data)), nil
}
