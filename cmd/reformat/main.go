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

// Command reformat re-lays-out the whitespace of source files.
//
// By default, formatted text is printed to stdout. With --write files are
// rewritten in place, with --diff a unified diff is printed, and with --check
// the names of files that would change are printed and the exit status is 1
// if there are any.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bufbuild/reformat/config"
	"github.com/bufbuild/reformat/lang"
	"github.com/bufbuild/reformat/lang/clike"
)

// errUnformatted is returned under --check when some file would change.
var errUnformatted = errors.New("some files are not formatted")

func main() {
	cmd := newCommand(lang.NewSet(clike.Pack()))
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errUnformatted) {
			fmt.Fprintln(os.Stderr, "reformat:", err)
		}
		os.Exit(1)
	}
}

func newCommand(langs *lang.Set) *cobra.Command {
	r := &runner{langs: langs}
	cmd := &cobra.Command{
		Use:   "reformat [flags] <path|glob> [path|glob...]",
		Short: "Re-lay-out the whitespace of source files",
		Long: `reformat changes only the whitespace between tokens: comments and
directives are kept, and only the indentation of lines they start may move.

Directories are searched recursively for files of a known language. Globs may
use ** to match any number of directories.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			r.stdout = cmd.OutOrStdout()
			r.stderr = cmd.ErrOrStderr()
			return r.run(cmd.Context(), args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&r.write, "write", "w", false, "rewrite files in place")
	flags.BoolVarP(&r.diff, "diff", "d", false, "print a unified diff instead of the formatted text")
	flags.BoolVar(&r.check, "check", false, "list files that are not formatted, and fail if there are any")
	flags.StringVar(&r.rangeFlag, "range", "", "format only the byte range `start:end` (single file only)")
	flags.StringVar(&r.configPath, "config", "", "configuration file to use instead of searching for "+config.FileName)
	flags.StringVar(&r.langName, "lang", "", "language to format as, instead of choosing by extension")
	flags.BoolVarP(&r.verbose, "verbose", "v", false, "log debug information to stderr")
	cmd.MarkFlagsMutuallyExclusive("write", "diff", "check")
	return cmd
}
