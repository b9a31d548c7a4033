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

package ast

import (
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/bufbuild/reformat/source"
	"github.com/bufbuild/reformat/token"
)

// Kind is the tag of a [Node]. Values are assigned by each language; zero is
// reserved for nodes of no particular kind.
type Kind uint16

// String implements [fmt.Stringer].
func (k Kind) String() string {
	return fmt.Sprintf("ast.Kind(%d)", int(k))
}

// Node is a node in a syntax tree.
//
// A node covers the closed range of tokens [First, Last]. Children are
// ordered and their ranges nest inside their parent's.
type Node struct {
	Kind        Kind
	First, Last token.ID
	Children    []*Node
}

// Contains returns whether this node's token range contains id.
func (n *Node) Contains(id token.ID) bool {
	return n.First <= id && id <= n.Last
}

// Overlaps returns whether this node's token range intersects [first, last].
func (n *Node) Overlaps(first, last token.ID) bool {
	return n.First <= last && first <= n.Last
}

// Span returns the span from the start of the first token to the end of the
// last token of this node.
func (n *Node) Span(s *token.Stream) source.Span {
	return s.Span(s.At(n.First).Span().Start, s.At(n.Last).Span().End)
}

// Add appends children to this node and returns it, for building trees in
// parsers and tests.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Tree is an immutable syntax tree over a token stream.
type Tree struct {
	stream *token.Stream
	root   *Node
	embeds []*Tree

	once      sync.Once
	enclosing []*Node
	parents   map[*Node]*Node
}

// NewTree builds a new tree.
//
// embeds are trees for structured trivia: code embedded in comments that
// should itself be formatted. Each embedded tree's stream must lie within a
// gap of stream.
func NewTree(stream *token.Stream, root *Node, embeds ...*Tree) *Tree {
	embeds = append([]*Tree(nil), embeds...)
	sort.Slice(embeds, func(i, j int) bool {
		return embeds[i].stream.Range().Start < embeds[j].stream.Range().Start
	})
	return &Tree{stream: stream, root: root, embeds: embeds}
}

// Stream returns the token stream of this tree.
func (t *Tree) Stream() *token.Stream {
	return t.stream
}

// File returns the file this tree was parsed from.
func (t *Tree) File() *source.File {
	return t.stream.File
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Range returns the span of the file this tree covers.
func (t *Tree) Range() source.Span {
	return t.stream.Range()
}

// Embeds returns the embedded trees whose range lies inside span.
func (t *Tree) Embeds(span source.Span) []*Tree {
	lo := sort.Search(len(t.embeds), func(i int) bool {
		return t.embeds[i].Range().Start >= span.Start
	})
	hi := lo
	for hi < len(t.embeds) && t.embeds[hi].Range().End <= span.End {
		hi++
	}
	return t.embeds[lo:hi]
}

// Token returns the token with the given ID.
func (t *Tree) Token(id token.ID) token.Token {
	return t.stream.At(id)
}

// Enclosing returns the deepest node that contains the given token, or nil
// if no node does.
func (t *Tree) Enclosing(id token.ID) *Node {
	t.index()
	if id < 0 || int(id) >= len(t.enclosing) {
		return nil
	}
	return t.enclosing[id]
}

// Parent returns the parent of n, or nil for the root.
func (t *Tree) Parent(n *Node) *Node {
	t.index()
	return t.parents[n]
}

// Walk returns a pre-order iterator over all nodes of this tree, along with
// their depth (the root has depth zero).
func (t *Tree) Walk() iter.Seq2[*Node, int] {
	return func(yield func(*Node, int) bool) {
		if t.root != nil {
			walk(t.root, 0, yield)
		}
	}
}

func walk(n *Node, depth int, yield func(*Node, int) bool) bool {
	if !yield(n, depth) {
		return false
	}
	for _, child := range n.Children {
		if !walk(child, depth+1, yield) {
			return false
		}
	}
	return true
}

func (t *Tree) index() {
	t.once.Do(func() {
		t.enclosing = make([]*Node, t.stream.Len())
		t.parents = make(map[*Node]*Node)

		var visit func(n *Node)
		visit = func(n *Node) {
			// Pre-order, so deeper nodes overwrite their ancestors.
			for id := max(n.First, 0); id <= n.Last && int(id) < len(t.enclosing); id++ {
				t.enclosing[id] = n
			}
			for _, child := range n.Children {
				t.parents[child] = n
				visit(child)
			}
		}
		if t.root != nil {
			visit(t.root)
		}
	})
}
