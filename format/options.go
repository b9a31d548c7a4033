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

package format

import (
	"log/slog"
	"runtime"

	"github.com/bufbuild/reformat/internal/width"
)

// Options controls the layout decisions of the engine.
//
// Options are supplied by the caller; the engine never loads configuration
// itself (see package config for one way of doing that).
type Options struct {
	// The number of columns per indentation unit. Defaults to 4.
	IndentSize int

	// The number of columns a tab character counts as. Defaults to IndentSize.
	TabSize int

	// If set, indentation is emitted with tabs where possible.
	UseTabs bool

	// The line terminator used for line breaks the engine creates. Defaults
	// to "\n". Line breaks inside comments are never rewritten.
	NewLine string

	// Arbitrary settings queried by rules, e.g. "clike.brace_style".
	Values map[string]any

	// The maximum number of goroutines used for the parallel passes.
	// Defaults to GOMAXPROCS.
	Parallelism int

	// Destination for debug and warning records. Defaults to discarding.
	Logger *slog.Logger
}

// withDefaults returns a copy of opts with default values applied.
func (opts Options) withDefaults() Options {
	if opts.IndentSize <= 0 {
		opts.IndentSize = 4
	}
	if opts.TabSize <= 0 {
		opts.TabSize = opts.IndentSize
	}
	if opts.NewLine == "" {
		opts.NewLine = "\n"
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts
}

// Value looks up a rule setting.
func (opts Options) Value(key string) (any, bool) {
	v, ok := opts.Values[key]
	return v, ok
}

// Int looks up an integer rule setting, returning fallback if it is missing
// or not a number.
func (opts Options) Int(key string, fallback int) int {
	switch v := opts.Values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// Bool looks up a boolean rule setting, returning fallback if it is missing
// or not a bool.
func (opts Options) Bool(key string, fallback bool) bool {
	if v, ok := opts.Values[key].(bool); ok {
		return v
	}
	return fallback
}

// Text looks up a string rule setting, returning fallback if it is missing
// or not a string.
func (opts Options) Text(key, fallback string) string {
	if v, ok := opts.Values[key].(string); ok {
		return v
	}
	return fallback
}

// indent renders the indentation string for a column.
func (opts Options) indent(column int) string {
	return width.Indent(column, opts.TabSize, opts.UseTabs)
}
