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
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/internal/width"
	"github.com/bufbuild/reformat/token"
)

const (
	Whitespace TriviaKind = iota // Only spaces, tabs and line breaks.
	Complex                      // Contains comments, directives or unknown content.
)

// TriviaKind classifies a gap.
type TriviaKind byte

// String implements [fmt.Stringer].
func (k TriviaKind) String() string {
	if k == Whitespace {
		return "Whitespace"
	}
	return "Complex"
}

const (
	LineComment  ItemKind = iota + 1 // Runs to the end of the line.
	BlockComment                     // Delimited; may span lines.
	Directive                        // Starts a line at column 0, runs to its end.
)

// ItemKind is the kind of an [Item].
type ItemKind byte

// Item is one piece of hard trivia within a gap. Offsets are relative to the
// start of the gap.
type Item struct {
	Kind       ItemKind
	Start, End int
}

// TriviaSyntax splits the hard content of a gap into items.
//
// lineStart is true if text begins at the start of a line. Scan returns false
// if text contains anything it cannot account for, such as an unterminated
// block comment; such gaps are copied verbatim.
type TriviaSyntax interface {
	Scan(text string, lineStart bool) ([]Item, bool)
}

// CommentSyntax is a [TriviaSyntax] driven by comment markers.
type CommentSyntax struct {
	Line      []string    // Line comment markers, e.g. "//".
	Block     [][2]string // Block comment delimiters, e.g. {"/*", "*/"}.
	Directive []string    // Directive markers, only recognized at line start.
}

// DefaultSyntax is used when [Rules.Trivia] is nil.
var DefaultSyntax = CommentSyntax{
	Line:      []string{"//"},
	Block:     [][2]string{{"/*", "*/"}},
	Directive: []string{"#"},
}

// Scan implements [TriviaSyntax].
func (c CommentSyntax) Scan(text string, lineStart bool) ([]Item, bool) {
	var items []Item
	i := 0
next:
	for i < len(text) {
		switch text[i] {
		case '\n':
			lineStart = true
			i++
			continue
		case ' ', '\t', '\r':
			i++
			continue
		}

		rest := text[i:]
		for _, delims := range c.Block {
			if !strings.HasPrefix(rest, delims[0]) {
				continue
			}
			end := strings.Index(rest[len(delims[0]):], delims[1])
			if end < 0 {
				return nil, false
			}
			end += len(delims[0]) + len(delims[1])
			items = append(items, Item{BlockComment, i, i + end})
			i += end
			lineStart = false
			continue next
		}

		kind := LineComment
		markers := c.Line
		if lineStart {
			markers = append(slices.Clip(markers), c.Directive...)
		}
		for _, marker := range markers {
			if !strings.HasPrefix(rest, marker) {
				continue
			}
			if !slices.Contains(c.Line, marker) {
				kind = Directive
			}
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				end = len(rest)
			}
			items = append(items, Item{kind, i, i + end})
			i += end
			continue next
		}

		return nil, false
	}
	return items, true
}

// TriviaData is the layout of one gap: either as found in the source, or as
// decided by the engine.
//
// Whitespace trivia is fully described by its space count, line break count
// and indentation column, and is regenerated from those. Complex trivia keeps
// its text, and only the leading indentation of lines that start inside the
// gap is ever recomputed.
//
// TriviaData values are immutable.
type TriviaData struct {
	kind   TriviaKind
	opaque bool

	spaces, lineBreaks, indent int

	text   string
	items  []Item
	embeds []embed
}

// embed is structured trivia: an embedded tree occupying [start, end) of the
// gap text.
type embed struct {
	start, end int
	tree       *ast.Tree
}

// newWhitespace builds decided Whitespace trivia. With lineBreaks > 0, spaces
// is ignored.
func newWhitespace(spaces, lineBreaks, indent int, opts *Options) TriviaData {
	if lineBreaks > 0 {
		indent = max(indent, 0)
		return TriviaData{
			kind:       Whitespace,
			lineBreaks: lineBreaks,
			indent:     indent,
			text:       strings.Repeat(opts.NewLine, lineBreaks) + opts.indent(indent),
		}
	}
	spaces = max(spaces, 0)
	return TriviaData{
		kind:   Whitespace,
		spaces: spaces,
		text:   strings.Repeat(" ", spaces),
	}
}

// Kind returns whether this is Whitespace or Complex trivia.
func (t TriviaData) Kind() TriviaKind { return t.kind }

// Opaque returns whether this trivia could not be understood and is copied
// verbatim.
func (t TriviaData) Opaque() bool { return t.opaque }

// Spaces returns the number of columns of space in a single-line gap.
func (t TriviaData) Spaces() int { return t.spaces }

// LineBreaks returns the number of line breaks in the gap.
func (t TriviaData) LineBreaks() int { return t.lineBreaks }

// Indent returns the indentation of the last line of a multi-line gap.
func (t TriviaData) Indent() int { return t.indent }

// Text returns the text of the gap.
func (t TriviaData) Text() string { return t.text }

// Items returns the hard trivia items of an undecided Complex gap.
func (t TriviaData) Items() []Item { return t.items }

// Equal returns whether two trivia values are identical.
func (t TriviaData) Equal(that TriviaData) bool {
	return t.kind == that.kind &&
		t.opaque == that.opaque &&
		t.spaces == that.spaces &&
		t.lineBreaks == that.lineBreaks &&
		t.indent == that.indent &&
		t.text == that.text &&
		slices.Equal(t.items, that.items) &&
		len(t.embeds) == len(that.embeds)
}

// Factory classifies the gaps of a tree, memoizing the results.
//
// A Factory belongs to a single run and must not be reused across runs.
type Factory struct {
	tree    *ast.Tree
	syntax  TriviaSyntax
	tabstop int
	memo    []*TriviaData
}

// NewFactory returns a factory for the gaps of tree. If syntax is nil,
// [DefaultSyntax] is used.
func NewFactory(tree *ast.Tree, syntax TriviaSyntax, opts Options) *Factory {
	if syntax == nil {
		syntax = DefaultSyntax
	}
	opts = opts.withDefaults()
	return &Factory{
		tree:    tree,
		syntax:  syntax,
		tabstop: opts.TabSize,
		memo:    make([]*TriviaData, tree.Stream().Len()),
	}
}

// Create returns the original trivia of the gap before the given token.
func (f *Factory) Create(gap token.ID) TriviaData {
	if td := f.memo[gap]; td != nil {
		return *td
	}
	td := f.classify(gap)
	f.memo[gap] = &td
	return td
}

// Prepare classifies the gaps [first, last] concurrently. Afterwards, Create
// for those gaps is a lookup.
//
// Prepare must not run concurrently with Create.
func (f *Factory) Prepare(ctx context.Context, first, last token.ID, parallelism int) error {
	const batch = 256
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallelism, 1))
	for lo := first; lo <= last; lo += batch {
		hi := min(lo+batch-1, last)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return context.Cause(ctx)
			}
			// Each goroutine writes a disjoint range of memo.
			for gap := lo; gap <= hi; gap++ {
				if f.memo[gap] == nil {
					td := f.classify(gap)
					f.memo[gap] = &td
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (f *Factory) classify(gap token.ID) TriviaData {
	span := f.tree.Stream().Gap(gap)
	text := span.Text()
	column := span.File.Column(span.Start, f.tabstop)

	if strings.Trim(text, " \t\r\n") == "" {
		td := TriviaData{kind: Whitespace, text: text}
		td.lineBreaks = strings.Count(text, "\n")
		if td.lineBreaks > 0 {
			td.indent = width.Of(text[strings.LastIndexByte(text, '\n')+1:], f.tabstop)
		} else {
			td.spaces = width.Advance(column, text, f.tabstop) - column
		}
		return td
	}

	td := TriviaData{
		kind:       Complex,
		text:       text,
		lineBreaks: strings.Count(text, "\n"),
	}
	if td.lineBreaks > 0 {
		line := text[strings.LastIndexByte(text, '\n')+1:]
		td.indent = width.Of(line[:len(line)-len(strings.TrimLeft(line, " \t"))], f.tabstop)
	}

	lineStart := span.Start == f.tree.Range().Start || column == 0
	items, ok := f.syntax.Scan(text, lineStart)
	if !ok {
		td.opaque = true
		return td
	}
	td.items = items

	for _, sub := range f.tree.Embeds(span) {
		td.embeds = append(td.embeds, embed{
			start: sub.Range().Start - span.Start,
			end:   sub.Range().End - span.Start,
			tree:  sub,
		})
	}
	return td
}
