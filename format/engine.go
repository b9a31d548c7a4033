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
	"context"
	"sort"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/source"
	"github.com/bufbuild/reformat/token"
)

// maxNesting is the deepest embedded code is formatted. Deeper embeds are
// copied verbatim.
const maxNesting = 16

// Rules is everything a language contributes to formatting.
type Rules struct {
	// Decides the spacing between pairs of tokens.
	Chain Chain
	// Produces the scoped operations for each kind of node.
	Operations Operations
	// Splits comment-bearing trivia into items. If nil, [DefaultSyntax] is
	// used.
	Trivia TriviaSyntax
}

// Format lays out the trivia of tree according to rules, restricted to the
// gaps that intersect span. A zero span formats the whole tree.
//
// Only the whitespace between tokens ever changes. Comments and directives
// are preserved; only the indentation of lines they start may move.
//
// The returned error is either a [*SpanError], if span does not lie within
// the tree, or the cause of ctx's cancellation. Failures inside rules are
// not errors: they are recovered, and reported through [Result.Faults].
func Format(ctx context.Context, tree *ast.Tree, rules Rules, opts Options, span source.Span) (*Result, error) {
	opts = opts.withDefaults()
	rng := tree.Range()
	if span.IsZero() {
		span = rng
	}
	if span.File != rng.File || span.Start > span.End || span.Start < rng.Start || span.End > rng.End {
		return nil, &SpanError{Span: span, Range: rng}
	}

	e := &engine{
		tree:        tree,
		factory:     NewFactory(tree, rules.Trivia, opts),
		rules:       rules,
		opts:        opts,
		startColumn: tree.File().Column(rng.Start, opts.TabSize),
	}
	return e.run(ctx, span)
}

// engine is one formatting run over a tree.
//
// Top-level runs and runs over embedded code differ only in where they start:
// an embedded run begins in the middle of a line, and indents relative to the
// code it is embedded in.
type engine struct {
	tree    *ast.Tree
	factory *Factory
	rules   Rules
	opts    Options

	startColumn int // Column of the start of the tree's range.
	baseIndent  int // Indentation of lines outside of any operation.
	closeIndent int // Indentation of a line break before EOF, when embedded.
	depth       int // Embedding depth.

	faults []*Fault
}

func (e *engine) run(ctx context.Context, span source.Span) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}

	log := e.opts.Logger.With("path", e.tree.File().Path(), "depth", e.depth)
	result := &Result{file: e.tree.File()}

	first, last := e.window(span)
	if first > last {
		log.Debug("nothing to format", "span", span)
		return result, nil
	}

	sc, err := e.collectOperations(ctx, first, last)
	if err != nil {
		return nil, err
	}
	if err := e.factory.Prepare(ctx, first, last, e.opts.Parallelism); err != nil {
		return nil, err
	}
	log.Debug("formatting",
		"first", first,
		"last", last,
		"suppress", sc.suppress.Len(),
		"indent", sc.indent.Len(),
		"align", len(sc.align))

	stream := newTokenStream(e.tree.Stream(), first, last)
	r := &resolver{engine: e, stream: stream, scopes: sc}
	if err := r.resolve(ctx); err != nil {
		return nil, err
	}

	result.edits = produceEdits(stream)
	result.faults = e.faults
	if e.depth == 0 {
		for _, f := range e.faults {
			log.Warn("recovered rule failure", "error", f)
		}
	}
	log.Debug("formatted", "edits", len(result.edits), "faults", len(result.faults))
	return result, nil
}

// window returns the range of gaps that intersect span.
func (e *engine) window(span source.Span) (first, last token.ID) {
	s := e.tree.Stream()
	n := s.Len()
	first = token.ID(sort.Search(n, func(i int) bool {
		return s.Gap(token.ID(i)).End >= span.Start
	}))
	last = token.ID(sort.Search(n, func(i int) bool {
		return s.Gap(token.ID(i)).Start > span.End
	})) - 1
	return first, last
}

// expand formats embedded code that starts at the given output column,
// returning its new text and the faults recovered while formatting it.
// outer is the indentation of the line the code is embedded in.
func (e *engine) expand(ctx context.Context, em embed, column, outer int) (string, []*Fault, error) {
	sub := em.tree
	text := sub.Range().Text()
	if e.depth+1 >= maxNesting {
		e.opts.Logger.Debug("embedded code nested too deeply", "span", sub.Range())
		return text, nil, nil
	}

	file := sub.File()
	indent := column
	if first := sub.Stream().First(); !first.IsZero() && first.Kind() != token.EOF {
		// Keep the first token where it was relative to the embed's start.
		indent = file.Column(first.Span().Start, e.opts.TabSize) +
			column - file.Column(sub.Range().Start, e.opts.TabSize)
	}

	nested := &engine{
		tree:        sub,
		factory:     NewFactory(sub, e.rules.Trivia, e.opts),
		rules:       e.rules,
		opts:        e.opts,
		startColumn: column,
		baseIndent:  max(indent, 0),
		closeIndent: outer,
		depth:       e.depth + 1,
	}
	result, err := nested.run(ctx, sub.Range())
	if err != nil {
		return "", nil, err
	}
	return apply(text, sub.Range().Start, result.edits), result.faults, nil
}
