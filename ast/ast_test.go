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

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/source"
	"github.com/bufbuild/reformat/token"
)

// f(x) /* @code y */
func sample(t *testing.T) (*ast.Tree, *ast.Node, *ast.Node) {
	t.Helper()
	file := source.NewFile("test", "f(x) /* @code y */")
	s := token.NewStream(file, 0, file.Len())
	s.Push(0, 1, token.Ident)
	s.Push(1, 2, token.Punct)
	s.Push(2, 3, token.Ident)
	s.Push(3, 4, token.Punct)
	eof := s.Finish()

	sub := token.NewStream(file, 13, 16)
	sub.Push(14, 15, token.Ident)
	subEOF := sub.Finish()
	embed := ast.NewTree(sub, &ast.Node{Kind: 1, First: 0, Last: subEOF.ID()})

	args := &ast.Node{Kind: 3, First: 1, Last: 3}
	call := &ast.Node{Kind: 2, First: 0, Last: 3, Children: []*ast.Node{args}}
	root := &ast.Node{Kind: 1, First: 0, Last: eof.ID(), Children: []*ast.Node{call}}
	return ast.NewTree(s, root, embed), call, args
}

func TestEnclosing(t *testing.T) {
	t.Parallel()

	tree, call, args := sample(t)
	assert.Same(t, call, tree.Enclosing(0))
	assert.Same(t, args, tree.Enclosing(1))
	assert.Same(t, args, tree.Enclosing(3))
	assert.Same(t, tree.Root(), tree.Enclosing(4))
	assert.Nil(t, tree.Enclosing(5))
	assert.Nil(t, tree.Enclosing(-1))

	assert.Same(t, call, tree.Parent(args))
	assert.Same(t, tree.Root(), tree.Parent(call))
	assert.Nil(t, tree.Parent(tree.Root()))
}

func TestNode(t *testing.T) {
	t.Parallel()

	tree, call, args := sample(t)
	assert.True(t, args.Contains(2))
	assert.False(t, args.Contains(0))
	assert.True(t, args.Overlaps(3, 4))
	assert.False(t, args.Overlaps(4, 4))
	assert.Equal(t, "f(x)", call.Span(tree.Stream()).Text())
	assert.Equal(t, "ast.Kind(2)", call.Kind.String())
}

func TestWalk(t *testing.T) {
	t.Parallel()

	tree, _, _ := sample(t)
	var kinds []ast.Kind
	var depths []int
	for n, depth := range tree.Walk() {
		kinds = append(kinds, n.Kind)
		depths = append(depths, depth)
	}
	assert.Equal(t, []ast.Kind{1, 2, 3}, kinds)
	assert.Equal(t, []int{0, 1, 2}, depths)

	var count int
	for range tree.Walk() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestEmbeds(t *testing.T) {
	t.Parallel()

	tree, _, _ := sample(t)
	gap := tree.Stream().Gap(4)
	require.Equal(t, " /* @code y */", gap.Text())

	embeds := tree.Embeds(gap)
	require.Len(t, embeds, 1)
	assert.Equal(t, " y ", embeds[0].Range().Text())
	assert.Empty(t, tree.Embeds(tree.Stream().Gap(1)))
}
