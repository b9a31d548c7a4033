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
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/internal/interval"
	"github.com/bufbuild/reformat/token"
)

const (
	OpSuppress OpKind = iota + 1
	OpAnchor
	OpSetIndent
	OpAlign
)

// OpKind is the kind of a formatting operation.
type OpKind byte

// String implements [fmt.Stringer].
func (k OpKind) String() string {
	switch k {
	case OpSuppress:
		return "Suppress"
	case OpAnchor:
		return "Anchor"
	case OpSetIndent:
		return "SetIndent"
	case OpAlign:
		return "Align"
	default:
		return fmt.Sprintf("format.OpKind(%d)", int(k))
	}
}

// Suppress keeps the tokens [First, Last] on one line: no gap between two of
// them may contain a line break. Where a rule asked for line breaks, Spaces
// spaces are used instead.
type Suppress struct {
	First, Last token.ID
	Spaces      int
}

// Anchor indents every token in [First, Last] that starts a line to the
// column of the Token, plus Offset. Token must precede First.
type Anchor struct {
	Token       token.ID
	First, Last token.ID
	Offset      int
}

// SetIndent adds Delta indentation units to every token in [First, Last]
// that starts a line.
type SetIndent struct {
	First, Last token.ID
	Delta       int
}

// Align makes Tokens start at the same column: the largest column any of them
// would have otherwise. Alignment only ever adds space.
type Align struct {
	Tokens []token.ID
}

// NodeOps is what an [OperationFunc] contributes for one node: at most one
// operation of each kind.
type NodeOps struct {
	Suppress  *Suppress
	Anchor    *Anchor
	SetIndent *SetIndent
	Align     *Align
}

// OperationFunc produces the operations for a node.
type OperationFunc func(n *ast.Node, tree *ast.Tree) NodeOps

// Operations is a dispatch table from node kind to operation producer.
type Operations map[ast.Kind]OperationFunc

// operation is a scoped operation, tagged with where it came from.
type operation struct {
	kind        OpKind
	first, last token.ID
	depth       int // Depth of the producing node.
	order       int // Pre-order index of the producing node.

	spaces int      // Suppress.
	anchor token.ID // Anchor.
	offset int      // Anchor.
	delta  int      // SetIndent.
	tokens []token.ID
}

// scopes indexes the operations of a run by the tokens they cover.
type scopes struct {
	suppress interval.Intersect[token.ID, *operation] // Keyed by gap.
	indent   interval.Intersect[token.ID, *operation] // Keyed by token.
	align    []*operation
}

// collectOperations walks every node of e's tree overlapping [first, last],
// producing operations.
//
// The root is visited first; the subtrees of its children are then walked
// concurrently. Results are merged in pre-order, so the output does not
// depend on scheduling.
func (e *engine) collectOperations(ctx context.Context, first, last token.ID) (*scopes, error) {
	root := e.tree.Root()
	sc := new(scopes)
	if root == nil || len(e.rules.Operations) == 0 {
		return sc, nil
	}

	type walked struct {
		ops    []*operation
		faults []*Fault
	}
	children := root.Children
	results := make([]walked, len(children)+1)

	walk := func(n *ast.Node, depth int, out *walked) {
		var visit func(n *ast.Node, depth int)
		visit = func(n *ast.Node, depth int) {
			if !n.Overlaps(first, last) {
				return
			}
			ops, fault := e.produce(n, depth)
			out.ops = append(out.ops, ops...)
			if fault != nil {
				out.faults = append(out.faults, fault)
			}
			for _, child := range n.Children {
				visit(child, depth+1)
			}
		}
		visit(n, depth)
	}

	if root.Overlaps(first, last) {
		ops, fault := e.produce(root, 0)
		results[0].ops = ops
		if fault != nil {
			results[0].faults = append(results[0].faults, fault)
		}

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Parallelism)
		for i, child := range children {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return context.Cause(ctx)
				}
				walk(child, 1, &results[i+1])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	order := 0
	for _, r := range results {
		for _, op := range r.ops {
			op.order = order
			order++
			sc.add(op)
		}
		e.faults = append(e.faults, r.faults...)
	}
	return sc, nil
}

// produce runs the operation producer for n, converting its output into
// operations. A producer that panics or returns invalid scopes contributes
// nothing.
func (e *engine) produce(n *ast.Node, depth int) (ops []*operation, fault *Fault) {
	fn := e.rules.Operations[n.Kind]
	if fn == nil {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			ops = nil
			fault = &Fault{Span: n.Span(e.tree.Stream()), Node: n, Err: panicError(r)}
		}
	}()

	out := fn(n, e.tree)
	if out.Suppress != nil {
		s := out.Suppress
		ops = append(ops, &operation{kind: OpSuppress, first: s.First, last: s.Last, spaces: s.Spaces})
	}
	if out.SetIndent != nil {
		s := out.SetIndent
		ops = append(ops, &operation{kind: OpSetIndent, first: s.First, last: s.Last, delta: s.Delta})
	}
	if out.Anchor != nil {
		a := out.Anchor
		if a.Token >= a.First {
			panic(fmt.Sprintf("anchor token %d does not precede its scope [%d, %d]", a.Token, a.First, a.Last))
		}
		ops = append(ops, &operation{kind: OpAnchor, first: a.First, last: a.Last, anchor: a.Token, offset: a.Offset})
	}
	if out.Align != nil && len(out.Align.Tokens) > 1 {
		tokens := slices.Clone(out.Align.Tokens)
		slices.Sort(tokens)
		tokens = slices.Compact(tokens)
		ops = append(ops, &operation{kind: OpAlign, first: tokens[0], last: tokens[len(tokens)-1], tokens: tokens})
	}

	n.Span(e.tree.Stream()) // Validates the node itself.
	limit := token.ID(e.tree.Stream().Len() - 1)
	for _, op := range ops {
		op.depth = depth
		if op.first < 0 || op.first > op.last || op.last > limit || op.anchor < 0 {
			panic(fmt.Sprintf("%v scope [%d, %d] out of bounds", op.kind, op.first, op.last))
		}
	}
	return ops, nil
}

func (s *scopes) add(op *operation) {
	switch op.kind {
	case OpSuppress:
		// Suppression applies to the gaps between tokens in scope.
		if op.first < op.last {
			s.suppress.Insert(op.first+1, op.last, op)
		}
	case OpAnchor, OpSetIndent:
		s.indent.Insert(op.first, op.last, op)
	case OpAlign:
		s.align = append(s.align, op)
	}
}

// suppressAt returns the innermost Suppress covering the gap before id.
func (s *scopes) suppressAt(id token.ID) *operation {
	ops := s.suppress.Get(id)
	if len(ops) == 0 {
		return nil
	}
	return slices.MaxFunc(ops, innermost)
}

// indentsAt returns the Anchor and SetIndent operations covering id, from
// outermost to innermost, with same-kind duplicates of an identical scope
// reduced to the one from the deepest node.
func (s *scopes) indentsAt(id token.ID, buf []*operation) []*operation {
	buf = append(buf[:0], s.indent.Get(id)...)
	slices.SortFunc(buf, func(a, b *operation) int {
		return cmp.Or(
			cmp.Compare(a.first, b.first),
			-cmp.Compare(a.last, b.last),
			// Identical scopes: SetIndent applies before Anchor, so that the
			// anchor wins.
			-cmp.Compare(a.kind, b.kind),
			-cmp.Compare(a.depth, b.depth),
			-cmp.Compare(a.order, b.order),
		)
	})
	return slices.CompactFunc(buf, func(a, b *operation) bool {
		// Runs of same-kind, same-scope operations start with the deepest.
		return a.kind == b.kind && a.first == b.first && a.last == b.last
	})
}

// innermost orders operations so that the most specific compares greatest:
// deepest node, then latest start, then narrowest scope.
func innermost(a, b *operation) int {
	return cmp.Or(
		cmp.Compare(a.depth, b.depth),
		cmp.Compare(a.first, b.first),
		-cmp.Compare(a.last, b.last),
		cmp.Compare(a.order, b.order),
	)
}
