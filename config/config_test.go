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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reformat/config"
	"github.com/bufbuild/reformat/format"
)

const sample = `
newline = "crlf"

[indent]
size = 2
use_tabs = true

[rules]
clike.brace_style = "next_line"
clike.max_blank_lines = 2

[languages.clike]
newline = "lf"

[languages.clike.indent]
size = 8

[languages.clike.rules]
clike.final_newline = false
`

func TestOptions(t *testing.T) {
	t.Parallel()

	f, err := config.Parse(sample)
	require.NoError(t, err)

	clike := f.Options("clike")
	assert.Equal(t, 8, clike.IndentSize)
	assert.True(t, clike.UseTabs)
	assert.Equal(t, "\n", clike.NewLine)
	assert.Equal(t, "next_line", clike.Text("clike.brace_style", ""))
	assert.Equal(t, 2, clike.Int("clike.max_blank_lines", 1))
	assert.False(t, clike.Bool("clike.final_newline", true))

	other := f.Options("other")
	assert.Equal(t, 2, other.IndentSize)
	assert.Equal(t, "\r\n", other.NewLine)
	assert.True(t, other.Bool("clike.final_newline", true))
}

func TestDocumentedExample(t *testing.T) {
	t.Parallel()

	f, err := config.Parse(`
newline = "lf"

[indent]
size = 2
use_tabs = false

[rules]
clike.brace_style = "next_line"

[languages.clike.indent]
size = 4
`)
	require.NoError(t, err)

	opts := f.Options("clike")
	assert.Equal(t, 4, opts.IndentSize)
	assert.False(t, opts.UseTabs)
	assert.Equal(t, "\n", opts.NewLine)
	assert.Equal(t, map[string]any{"clike.brace_style": "next_line"}, opts.Values)

	assert.Equal(t, 2, f.Options("other").IndentSize)
}

func TestRulesNotUnknown(t *testing.T) {
	t.Parallel()

	f, err := config.Parse("[languages.x.rules]\na.b.c = 1\n\n[rules.a]\nd = \"e\"\n")
	require.NoError(t, err)
	opts := f.Options("x")
	assert.Equal(t, 1, opts.Int("a.b.c", 0))
	assert.Equal(t, "e", opts.Text("a.d", ""))

	_, err = config.Parse("[languages.x]\nwidth = 1\n")
	assert.ErrorContains(t, err, "languages.x.width")
}

func TestNilFile(t *testing.T) {
	t.Parallel()

	var f *config.File
	assert.Equal(t, format.Options{}, f.Options("clike"))
}

func TestInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, text, err string
	}{
		{name: "syntax", text: "indent = [", err: "failed to parse TOML"},
		{name: "unknown", text: "width = 80", err: "unknown keys: width"},
		{name: "negative", text: "[indent]\nsize = -1", err: "indent.size must not be negative"},
		{name: "newline", text: `newline = "lr"`, err: "newline must be one of"},
		{name: "language", text: "[languages.x.indent]\ntab_size = -2", err: "languages.x.indent.tab_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Parse(tt.text)
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path := filepath.Join(root, "a", config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	found, ok, err := config.Find(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, found)

	f, err := config.Load(found)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, 2, f.Indent.Size)

	_, err = config.Load(filepath.Join(root, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
