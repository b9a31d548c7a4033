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

// Package config loads formatter settings from .reformat.toml files.
//
// A configuration file looks like this:
//
//	newline = "lf"
//
//	[indent]
//	size = 2
//	use_tabs = false
//
//	[rules]
//	clike.brace_style = "next_line"
//
//	[languages.clike.indent]
//	size = 4
//
// Keys under [rules] are passed through to the rules as [format.Options.Values].
// Nested tables are flattened, so the dotted key above is seen by rules as
// "clike.brace_style".
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bufbuild/reformat/format"
)

// FileName is the name of configuration files searched for by [Find].
const FileName = ".reformat.toml"

// File is a decoded configuration file.
type File struct {
	// The path the file was loaded from, if any.
	Path string `toml:"-"`

	Indent  Indent         `toml:"indent"`
	NewLine string         `toml:"newline"` // "lf", "crlf" or "cr".
	Rules   map[string]any `toml:"rules"`

	// Per-language settings, keyed by language name. These are layered over
	// the top-level settings.
	Languages map[string]Override `toml:"languages"`
}

// Indent configures indentation. Zero values mean "use the default".
type Indent struct {
	Size    int   `toml:"size"`
	TabSize int   `toml:"tab_size"`
	UseTabs *bool `toml:"use_tabs"`
}

// Override holds settings for a single language.
type Override struct {
	Indent  Indent         `toml:"indent"`
	NewLine string         `toml:"newline"`
	Rules   map[string]any `toml:"rules"`
}

var newLines = map[string]string{
	"":     "",
	"lf":   "\n",
	"crlf": "\r\n",
	"cr":   "\r",
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*File, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes configuration text.
func Parse(text string) (*File, error) {
	f := new(File)
	meta, err := toml.Decode(text, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	var unknown []string
	for _, k := range meta.Undecoded() {
		if !isRuleKey(k) {
			unknown = append(unknown, k.String())
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return f, nil
}

// isRuleKey returns whether k lies in a [rules] table. The decoder reports
// every key of a table decoded into a map as undecoded.
func isRuleKey(k toml.Key) bool {
	switch {
	case len(k) > 0 && k[0] == "rules":
		return true
	case len(k) > 2 && k[0] == "languages" && k[2] == "rules":
		return true
	}
	return false
}

func (f *File) check() error {
	var errs []error
	checkIndent := func(where string, in Indent, newLine string) {
		if in.Size < 0 {
			errs = append(errs, fmt.Errorf("%sindent.size must not be negative, got %d", where, in.Size))
		}
		if in.TabSize < 0 {
			errs = append(errs, fmt.Errorf("%sindent.tab_size must not be negative, got %d", where, in.TabSize))
		}
		if _, ok := newLines[newLine]; !ok {
			errs = append(errs, fmt.Errorf("%snewline must be one of lf, crlf or cr, got %q", where, newLine))
		}
	}
	checkIndent("", f.Indent, f.NewLine)
	for name, o := range f.Languages {
		checkIndent(fmt.Sprintf("languages.%s.", name), o.Indent, o.NewLine)
	}
	return errors.Join(errs...)
}

// Options builds the formatting options for the given language.
//
// A nil File produces zero options, which format with the defaults.
func (f *File) Options(lang string) format.Options {
	var opts format.Options
	if f == nil {
		return opts
	}

	values := make(map[string]any)
	layer := func(in Indent, newLine string, rules map[string]any) {
		if in.Size > 0 {
			opts.IndentSize = in.Size
		}
		if in.TabSize > 0 {
			opts.TabSize = in.TabSize
		}
		if in.UseTabs != nil {
			opts.UseTabs = *in.UseTabs
		}
		if nl := newLines[newLine]; nl != "" {
			opts.NewLine = nl
		}
		flatten(values, "", rules)
	}

	layer(f.Indent, f.NewLine, f.Rules)
	if o, ok := f.Languages[lang]; ok {
		layer(o.Indent, o.NewLine, o.Rules)
	}
	if len(values) > 0 {
		opts.Values = values
	}
	return opts
}

// flatten copies rules into values, joining the keys of nested tables with
// dots.
func flatten(values map[string]any, prefix string, rules map[string]any) {
	// Sorted, so that a dotted key and an equivalent table resolve the same
	// way every time.
	for _, k := range slices.Sorted(maps.Keys(rules)) {
		v := rules[k]
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(values, k, table)
			continue
		}
		values[k] = v
	}
}

// Find searches dir and its parents for a configuration file. It returns
// false if there is none.
func Find(dir string) (string, bool, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}
