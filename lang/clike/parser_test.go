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

package clike_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/lang/clike"
	"github.com/bufbuild/reformat/source"
	"github.com/bufbuild/reformat/token"
)

func parse(t *testing.T, text string) *ast.Tree {
	t.Helper()
	tree, err := clike.Parse(source.NewFile("test.cl", text))
	require.NoError(t, err)
	return tree
}

func TestLex(t *testing.T) {
	t.Parallel()

	tree := parse(t, "#include <x>\nx <<= \"a\\\"b\" + 'c' // d\n  - 1.5e3 /* e */ ;")
	var kinds []token.Kind
	var texts []string
	for tok := range tree.Stream().All() {
		kinds = append(kinds, tok.Kind())
		texts = append(texts, tok.Text())
	}
	assert.Equal(t, []string{"x", "<<=", `"a\"b"`, "+", "'c'", "-", "1.5e3", ";", ""}, texts)
	assert.Equal(t, []token.Kind{
		token.Ident, token.Punct, token.String, token.Punct, token.String,
		token.Punct, token.Number, token.Punct, token.EOF,
	}, kinds)
}

func TestLexUnterminated(t *testing.T) {
	t.Parallel()

	tree := parse(t, "x = \"abc\n;")
	var texts []string
	for tok := range tree.Stream().All() {
		texts = append(texts, tok.Text())
	}
	assert.Equal(t, []string{"x", "=", `"abc`, ";", ""}, texts)

	tree = parse(t, "x; /* never closed")
	assert.Equal(t, " /* never closed", tree.Stream().Last().Leading().Text())
}

func TestParseKinds(t *testing.T) {
	t.Parallel()

	tree := parse(t, `
func f(a, b) {
	var x = a[0] + g(b).c;
	if (x) return; else { x = -x; }
	while (x) x--;
	for (var i = 0; i < 3; i++) { break; }
	;
	{ continue; }
}
enum E { A = 1, B, }
y = [1, 2];
`)

	counts := make(map[ast.Kind]int)
	for n := range tree.Walk() {
		counts[n.Kind]++
	}
	assert.Equal(t, 1, counts[clike.KindFile])
	assert.Equal(t, 1, counts[clike.KindFunc])
	assert.Equal(t, 1, counts[clike.KindParams])
	assert.Equal(t, 1, counts[clike.KindEnum])
	assert.Equal(t, 2, counts[clike.KindEnumValue])
	assert.Equal(t, 1, counts[clike.KindIf])
	assert.Equal(t, 1, counts[clike.KindWhile])
	assert.Equal(t, 1, counts[clike.KindFor])
	assert.Equal(t, 1, counts[clike.KindForHeader])
	assert.Equal(t, 2, counts[clike.KindBranch])
	assert.Equal(t, 1, counts[clike.KindEmpty])
	assert.Equal(t, 1, counts[clike.KindArray])
	assert.Equal(t, 1, counts[clike.KindIndex])
	assert.Equal(t, 1, counts[clike.KindMember])
	assert.Equal(t, 1, counts[clike.KindCall])
	assert.Equal(t, 2, counts[clike.KindBody])
	assert.Equal(t, 4, counts[clike.KindBlock])

	root := tree.Root()
	assert.Equal(t, token.ID(0), root.First)
	assert.Equal(t, token.EOF, tree.Token(root.Last).Kind())
}

func TestSyntaxError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text, want string
	}{
		{"func (", `test.cl:1:6: expected function name, found "("`},
		{"x = ;", `test.cl:1:5: expected expression, found ";"`},
		{"if (x", `test.cl:1:6: expected ")" after condition, found end of input`},
		{"enum E { 1 }", `test.cl:1:10: expected enum value, found "1"`},
		{"x\n y", `test.cl:2:2: expected ";" after expression, found "y"`},
	}
	for _, tt := range tests {
		_, err := clike.Parse(source.NewFile("test.cl", tt.text))
		var syntax *clike.SyntaxError
		require.True(t, errors.As(err, &syntax), "%q", tt.text)
		assert.Equal(t, tt.want, err.Error())
	}
}

func TestEmbedded(t *testing.T) {
	t.Parallel()

	text := "x; /* @code f(a,b); */ /* not code */ /*@code\ny;*/ /* @codez; */ /* @code ( */"
	tree := parse(t, text)

	embeds := tree.Embeds(tree.File().Whole())
	require.Len(t, embeds, 2)
	assert.Equal(t, " f(a,b); ", embeds[0].Range().Text())
	assert.Equal(t, "\ny;", embeds[1].Range().Text())
	assert.Equal(t, clike.KindArgs, embeds[0].Enclosing(1).Kind)
}

func TestEmbeddedNesting(t *testing.T) {
	t.Parallel()

	// Comments do not nest: inside the embedded text, the inner marker starts
	// an unterminated comment.
	tree := parse(t, "/* @code /* @code x; */")
	embeds := tree.Embeds(tree.File().Whole())
	require.Len(t, embeds, 1)
	assert.Empty(t, embeds[0].Embeds(embeds[0].Range()))
}
