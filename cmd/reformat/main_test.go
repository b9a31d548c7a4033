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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reformat/config"
	"github.com/bufbuild/reformat/lang"
	"github.com/bufbuild/reformat/lang/clike"
)

const (
	unformatted = "if(x){y();}\n"
	formatted   = "if (x) {\n    y();\n}\n"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newCommand(lang.NewSet(clike.Pack()))
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func TestStdout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.cl")
	writeFile(t, path, unformatted)

	out, _, err := execute(t, path)
	require.NoError(t, err)
	assert.Equal(t, formatted, out)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cl"), unformatted)
	writeFile(t, filepath.Join(dir, "sub", "b.clike"), unformatted)
	writeFile(t, filepath.Join(dir, "sub", "notes.txt"), unformatted)

	_, _, err := execute(t, "--write", dir)
	require.NoError(t, err)

	for _, name := range []string{"a.cl", "sub/b.clike"} {
		text, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, formatted, string(text), name)
	}
	text, err := os.ReadFile(filepath.Join(dir, "sub", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, unformatted, string(text))
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.cl")
	bad := filepath.Join(dir, "bad.cl")
	writeFile(t, good, formatted)
	writeFile(t, bad, unformatted)

	out, _, err := execute(t, "--check", filepath.Join(dir, "**", "*.cl"))
	assert.ErrorIs(t, err, errUnformatted)
	assert.Equal(t, bad+"\n", out)

	_, _, err = execute(t, "--check", good)
	assert.NoError(t, err)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.cl")
	writeFile(t, path, unformatted)

	out, _, err := execute(t, "--diff", path)
	require.NoError(t, err)
	assert.Contains(t, out, "-if(x){y();}\n")
	assert.Contains(t, out, "+if (x) {\n")
	assert.Contains(t, out, "+    y();\n")
}

func TestRange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.cl")
	writeFile(t, path, "a=1;\nb=2;\nc=3;\n")

	out, _, err := execute(t, "--range", "5:8", path)
	require.NoError(t, err)
	assert.Equal(t, "a=1;\nb = 2;\nc=3;\n", out)

	_, _, err = execute(t, "--range", "8:5", path)
	assert.ErrorContains(t, err, "invalid --range")
}

func TestConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), "[indent]\nsize = 2\n\n[rules]\nclike.brace_style = \"next_line\"\n")
	path := filepath.Join(dir, "src", "a.txt")
	writeFile(t, path, unformatted)

	out, _, err := execute(t, "--lang", "clike", path)
	require.NoError(t, err)
	assert.Equal(t, "if (x)\n{\n  y();\n}\n", out)

	override := filepath.Join(t.TempDir(), "other.toml")
	writeFile(t, override, "[indent]\nsize = 3\n")
	out, _, err = execute(t, "--lang", "clike", "--config", override, path)
	require.NoError(t, err)
	assert.Equal(t, "if (x) {\n   y();\n}\n", out)
}

func TestConfigRules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	conf := filepath.Join(dir, "style.toml")
	writeFile(t, conf, "[rules]\nclike.brace_style = \"next_line\"\n\n[languages.clike.rules]\nclike.max_blank_lines = 0\n")
	path := filepath.Join(dir, "a.cl")
	writeFile(t, path, "if(x){y();\n\nz();}\n")

	out, _, err := execute(t, "--config", conf, path)
	require.NoError(t, err)
	assert.Equal(t, "if (x)\n{\n    y();\n    z();\n}\n", out)

	writeFile(t, conf, "[rules]\nclike.brace_style = \"next_line\"\nwidth = 80\n\n[other]\nx = 1\n")
	_, stderr, err := execute(t, "--config", conf, path)
	assert.Error(t, err)
	assert.Contains(t, stderr, "other.x")
	assert.NotContains(t, stderr, "width")
}

func TestErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.cl")
	writeFile(t, broken, "if (x {\n")
	unknown := filepath.Join(dir, "a.unknown")
	writeFile(t, unknown, "x")

	_, stderr, err := execute(t, broken)
	assert.ErrorContains(t, err, "failed to format 1 of 1 files")
	assert.Contains(t, stderr, "broken.cl")

	_, _, err = execute(t, unknown)
	assert.Error(t, err)

	_, _, err = execute(t, filepath.Join(dir, "missing.cl"))
	assert.ErrorContains(t, err, "no such file")

	_, _, err = execute(t, "--write", "--diff", broken)
	assert.Error(t, err)
}
