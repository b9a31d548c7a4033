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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/bufbuild/reformat/config"
	"github.com/bufbuild/reformat/format"
	"github.com/bufbuild/reformat/lang"
	"github.com/bufbuild/reformat/source"
)

// runner holds the flags of one invocation.
type runner struct {
	langs *lang.Set

	write, diff, check, verbose bool
	rangeFlag, configPath       string
	langName                    string

	stdout, stderr io.Writer
	logger         *slog.Logger

	configs map[string]*config.File // By directory.
}

func (r *runner) run(ctx context.Context, args []string) error {
	level := slog.LevelWarn
	if r.verbose {
		level = slog.LevelDebug
	}
	r.logger = slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level}))
	r.configs = make(map[string]*config.File)

	paths, err := r.expand(args)
	if err != nil {
		return err
	}
	var rng *[2]int
	if r.rangeFlag != "" {
		if len(paths) != 1 {
			return fmt.Errorf("--range requires exactly one file, got %d", len(paths))
		}
		start, end, err := parseRange(r.rangeFlag)
		if err != nil {
			return err
		}
		rng = &[2]int{start, end}
	}

	var failed, unformatted int
	for _, path := range paths {
		changed, err := r.file(ctx, path, rng)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(r.stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if changed {
			unformatted++
		}
	}

	switch {
	case failed > 0:
		return fmt.Errorf("failed to format %d of %d files", failed, len(paths))
	case r.check && unformatted > 0:
		return errUnformatted
	}
	return nil
}

// expand turns the arguments into a sorted, deduplicated list of files.
func (r *runner) expand(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
			return nil, fmt.Errorf("invalid glob %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: no such file or directory", arg)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				paths = append(paths, match)
				continue
			}
			found, err := r.search(match)
			if err != nil {
				return nil, err
			}
			paths = append(paths, found...)
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// search finds every file under dir that some language can format.
func (r *runner) search(dir string) ([]string, error) {
	var paths []string
	err := doublestar.GlobWalk(os.DirFS(dir), "**/*", func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		if r.langName != "" {
			paths = append(paths, filepath.Join(dir, filepath.FromSlash(path)))
			return nil
		}
		if _, err := r.langs.ForPath(path); err == nil {
			paths = append(paths, filepath.Join(dir, filepath.FromSlash(path)))
		}
		return nil
	})
	return paths, err
}

// file formats a single file, reporting whether it changed.
func (r *runner) file(ctx context.Context, path string, rng *[2]int) (bool, error) {
	pack, err := r.pack(path)
	if err != nil {
		return false, err
	}
	cfg, err := r.config(path)
	if err != nil {
		return false, err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	file := source.NewFile(path, string(text))
	tree, err := pack.Parse(file)
	if err != nil {
		return false, err
	}

	opts := cfg.Options(pack.Name)
	opts.Logger = r.logger.With("lang", pack.Name)

	var span source.Span
	if rng != nil {
		span = file.Span(rng[0], rng[1])
	}
	result, err := format.Format(ctx, tree, pack.Rules(opts), opts, span)
	if err != nil {
		return false, err
	}

	changed := len(result.TextChanges()) > 0
	formatted := result.FormattedText()
	switch {
	case r.check:
		if changed {
			fmt.Fprintln(r.stdout, path)
		}
	case r.diff:
		if changed {
			if err := r.printDiff(path, file.Text(), formatted); err != nil {
				return false, err
			}
		}
	case r.write:
		if changed {
			info, err := os.Stat(path)
			if err != nil {
				return false, err
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return false, err
			}
			r.logger.Debug("rewrote file", "path", path, "edits", len(result.TextChanges()))
		}
	default:
		if _, err := io.WriteString(r.stdout, formatted); err != nil {
			return false, err
		}
	}
	return changed, nil
}

func (r *runner) pack(path string) (*lang.Pack, error) {
	if r.langName != "" {
		return r.langs.Lookup(r.langName)
	}
	return r.langs.ForPath(path)
}

// config returns the configuration for path, searching upward from its
// directory unless --config was given.
func (r *runner) config(path string) (*config.File, error) {
	if r.configPath != "" {
		if cfg, ok := r.configs[""]; ok {
			return cfg, nil
		}
		cfg, err := config.Load(r.configPath)
		if err != nil {
			return nil, err
		}
		r.configs[""] = cfg
		return cfg, nil
	}

	dir := filepath.Dir(path)
	if cfg, ok := r.configs[dir]; ok {
		return cfg, nil
	}
	found, ok, err := config.Find(dir)
	if err != nil {
		return nil, err
	}
	var cfg *config.File
	if ok {
		if cfg, err = config.Load(found); err != nil {
			return nil, err
		}
		r.logger.Debug("using configuration", "path", found, "for", dir)
	}
	r.configs[dir] = cfg
	return cfg, nil
}

var (
	diffHeader = color.New(color.Bold)
	diffHunk   = color.New(color.FgCyan)
	diffAdd    = color.New(color.FgGreen)
	diffRemove = color.New(color.FgRed)
)

func (r *runner) printDiff(path, before, after string) error {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (formatted)",
		Context:  3,
	})
	if err != nil {
		return err
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		var c *color.Color
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			c = diffHeader
		case strings.HasPrefix(line, "@@"):
			c = diffHunk
		case strings.HasPrefix(line, "+"):
			c = diffAdd
		case strings.HasPrefix(line, "-"):
			c = diffRemove
		}
		if c == nil {
			_, err = io.WriteString(r.stdout, line)
		} else {
			_, err = c.Fprint(r.stdout, line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// parseRange parses a --range value of the form start:end.
func parseRange(value string) (start, end int, err error) {
	a, b, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --range %q: want start:end", value)
	}
	if start, err = strconv.Atoi(a); err != nil {
		return 0, 0, fmt.Errorf("invalid --range start: %w", err)
	}
	if end, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("invalid --range end: %w", err)
	}
	if start < 0 || end < start {
		return 0, 0, errors.New("invalid --range: want 0 <= start <= end")
	}
	return start, end, nil
}
