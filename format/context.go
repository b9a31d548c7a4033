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
	"strings"

	"github.com/bufbuild/reformat/internal/width"
	"github.com/bufbuild/reformat/token"
)

// maxAlignPasses bounds the number of resolution passes spent converging
// alignment.
const maxAlignPasses = 4

// resolver is the per-run formatting context: it walks the window from left
// to right, deciding each gap and tracking the current column.
type resolver struct {
	*engine
	stream *tokenStream
	scopes *scopes

	// Extra columns of padding for the gap before a token, from alignment.
	pads map[token.ID]int
	// Rule faults by gap. Every pass hits the same ones.
	ruleFaults map[token.ID][]*Fault

	column     int // The current column.
	lineIndent int // Indentation of the current line.

	cur token.ID // The gap being decided.
	buf []*operation
}

// resolve decides every gap in the window, repeating until every alignment
// set is satisfied.
func (r *resolver) resolve(ctx context.Context) error {
	r.pads = make(map[token.ID]int)
	r.ruleFaults = make(map[token.ID][]*Fault)
	for pass := 0; ; pass++ {
		if pass > 0 {
			r.stream.reset()
		}
		if err := r.pass(ctx); err != nil {
			return err
		}
		if !r.align() {
			break
		}
		if pass+1 == maxAlignPasses {
			r.opts.Logger.Debug("alignment did not converge",
				"path", r.tree.File().Path(),
				"passes", maxAlignPasses)
			break
		}
	}

	for id := range r.stream.Gaps() {
		r.faults = append(r.faults, r.ruleFaults[id]...)
	}
	return nil
}

// pass runs one left-to-right resolution over the window.
func (r *resolver) pass(ctx context.Context) error {
	s := r.stream
	r.column = r.startColumn
	r.lineIndent = r.baseIndent
	if s.first > 0 {
		file := r.tree.File()
		boundary := s.At(s.first - 1)
		s.setColumn(boundary.ID(), file.Column(boundary.Span().Start, r.opts.TabSize))
		r.column = file.Column(boundary.Span().End, r.opts.TabSize)
		r.lineIndent = width.Of(file.Indentation(boundary.Span().Start), r.opts.TabSize)
	}

	for id := range s.Gaps() {
		if err := ctx.Err(); err != nil {
			return context.Cause(ctx)
		}
		r.cur = id

		orig := r.factory.Create(id)
		var td TriviaData
		switch {
		case orig.kind == Complex && orig.opaque:
			td = orig
		case orig.kind == Complex:
			var err error
			if td, err = r.layoutComplex(ctx, id, orig); err != nil {
				return err
			}
		default:
			td = r.decideWhitespace(id, orig)
		}

		s.Decide(id, td)
		if td.lineBreaks > 0 {
			r.lineIndent = td.indent
		} else if r.startsFile(id) {
			r.lineIndent = td.spaces
		}
		r.column = width.Advance(r.column, td.text, r.opts.TabSize)
		s.setColumn(id, r.column)
		r.column = width.Advance(r.column, s.At(id).Text(), r.opts.TabSize)
	}
	return nil
}

// decideWhitespace resolves a Whitespace gap by precedence: Suppress, then
// the Anchor and SetIndent operations covering the token, then the rules.
func (r *resolver) decideWhitespace(id token.ID, orig TriviaData) TriviaData {
	s := r.stream
	rc := &RuleContext{tree: r.tree, opts: &r.opts, original: orig}
	answer, err := evaluate(r.rules.Chain, s.At(id-1), s.At(id), rc)
	if err != nil {
		r.ruleFaults[id] = []*Fault{{Span: s.Gap(id), Err: err}}
		return orig
	}

	lineBreaks, spaces := orig.lineBreaks, orig.spaces
	if n, ok := answer.LineBreaks(); ok {
		lineBreaks, spaces = n, 0
	} else if n, ok := answer.Spaces(); ok {
		lineBreaks, spaces = 0, n
	}

	if op := r.scopes.suppressAt(id); op != nil && lineBreaks > 0 {
		lineBreaks, spaces = 0, op.spaces
	}

	pad := r.pads[id]
	switch {
	case lineBreaks > 0 && r.depth > 0 && s.At(id).Kind() == token.EOF:
		// The end of embedded code lines up with the line it is embedded in.
		return newWhitespace(0, lineBreaks, r.closeIndent, &r.opts)
	case lineBreaks > 0:
		return newWhitespace(0, lineBreaks, r.indentAt(id)+pad, &r.opts)
	case r.startsFile(id):
		// Leading whitespace of the file is its first line's indentation.
		return newWhitespace(r.indentAt(id)+pad, 0, 0, &r.opts)
	default:
		return newWhitespace(spaces+pad, 0, 0, &r.opts)
	}
}

// startsFile returns whether the gap before id begins a line of the
// original text with no token before it.
func (r *resolver) startsFile(id token.ID) bool {
	return id == 0 && r.startColumn == 0
}

// indentAt computes the indentation of id, were it to start a line: the base
// indentation, folded through the covering operations from outermost to
// innermost.
func (r *resolver) indentAt(id token.ID) int {
	indent := r.baseIndent
	r.buf = r.scopes.indentsAt(id, r.buf)
	for _, op := range r.buf {
		switch op.kind {
		case OpSetIndent:
			indent += op.delta * r.opts.IndentSize
		case OpAnchor:
			indent = r.columnOf(op.anchor) + op.offset
		}
	}
	return max(indent, 0)
}

// columnOf returns the column of a token that has already been laid out by
// this pass, or its original column if it lies before the window.
func (r *resolver) columnOf(id token.ID) int {
	if id >= r.stream.first-1 && id < r.cur {
		if col, ok := r.stream.Column(id); ok {
			return col
		}
	}
	tok := r.stream.At(id)
	return r.tree.File().Column(tok.Span().Start, r.opts.TabSize)
}

// layoutComplex lays out a gap containing comments or directives.
//
// The first line of the gap is kept verbatim, since it continues the line of
// the previous token. Every later line has its leading indentation
// recomputed. Directives go to column 0. Lines that start a comment are
// indented to the deeper of the indentation of the surrounding tokens, and
// the line holding the next token gets that token's indentation. Blank lines
// are emptied, and lines inside a multi-line comment move by as much as the
// comment's first line did. Embedded code is replaced by its formatted form.
func (r *resolver) layoutComplex(ctx context.Context, id token.ID, orig TriviaData) (TriviaData, error) {
	var (
		file    = r.tree.File()
		tabstop = r.opts.TabSize
		gap     = r.stream.Gap(id)
		text    = orig.text
		items   = orig.items
		embeds  = orig.embeds
		next    = r.indentAt(id)
		comment = next
		deltas  = make([]int, len(items))
		nested  []*Fault
		out     strings.Builder
		col     = r.column
	)
	if id > 0 {
		comment = max(next, r.lineIndent)
	}
	last := r.lineIndent

	// Writes text[pos:end], recording the column delta of each item that
	// starts in it.
	item := 0
	write := func(pos, end int) {
		for item < len(items) && items[item].Start < end {
			if start := items[item].Start; start >= pos {
				out.WriteString(text[pos:start])
				col = width.Advance(col, text[pos:start], tabstop)
				deltas[item] = col - file.Column(gap.Start+start, tabstop)
				pos = start
			}
			item++
		}
		out.WriteString(text[pos:end])
		col = width.Advance(col, text[pos:end], tabstop)
	}
	// Returns the index of the item containing offset, if any.
	within := func(offset int) int {
		for i, it := range items {
			if it.Start < offset && offset < it.End {
				return i
			}
		}
		return -1
	}
	directive := func(offset int) bool {
		for _, it := range items {
			if it.Start == offset {
				return it.Kind == Directive
			}
		}
		return false
	}

	pos, atLineStart := 0, r.startsFile(id)
	for {
		if atLineStart {
			atLineStart = false
			end := strings.IndexByte(text[pos:], '\n')
			final := end < 0
			if final {
				end = len(text)
			} else {
				end += pos
			}
			content := pos + len(text[pos:end]) - len(strings.TrimLeft(text[pos:end], " \t"))
			leading := text[pos:content]

			embedded := len(embeds) > 0 && embeds[0].start <= content
			indent := -1
			switch k := within(content); {
			case embedded:
			case !final && strings.TrimRight(text[content:end], "\r") == "":
				indent = 0
			case k >= 0:
				if deltas[k] != 0 {
					indent = max(width.Of(leading, tabstop)+deltas[k], 0)
				}
			case directive(content):
				indent = 0
			case final:
				indent = next
			default:
				indent = comment
			}

			if indent >= 0 && !embedded {
				out.WriteString(r.opts.indent(indent))
				col = indent
				pos = content
				last = indent
			} else {
				last = width.Of(leading, tabstop)
			}
		}

		end := strings.IndexByte(text[pos:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += pos
		}

		if len(embeds) > 0 && embeds[0].start <= end {
			e := embeds[0]
			embeds = embeds[1:]
			write(pos, e.start)

			outer := width.Of(file.Indentation(gap.Start), tabstop)
			if line := out.String(); strings.Contains(line, "\n") || r.startsFile(id) {
				line = line[strings.LastIndexByte(line, '\n')+1:]
				outer = width.Of(line[:len(line)-len(strings.TrimLeft(line, " \t"))], tabstop)
			}
			expanded, faults, err := r.expand(ctx, e, col, outer)
			if err != nil {
				return TriviaData{}, err
			}
			nested = append(nested, faults...)
			if i := strings.LastIndexByte(expanded, '\n'); i >= 0 {
				line := expanded[i+1:]
				last = width.Of(line[:len(line)-len(strings.TrimLeft(line, " \t"))], tabstop)
			}
			out.WriteString(expanded)
			col = width.Advance(col, expanded, tabstop)
			pos = e.end
			for item < len(items) && items[item].Start < pos {
				item++
			}
			continue
		}

		write(pos, end)
		if end == len(text) {
			break
		}
		out.WriteByte('\n')
		col = 0
		pos = end + 1
		atLineStart = true
	}

	if nested != nil {
		r.ruleFaults[id] = nested
	}

	result := out.String()
	return TriviaData{
		kind:       Complex,
		text:       result,
		lineBreaks: strings.Count(result, "\n"),
		indent:     last,
	}, nil
}

// align checks every alignment set against the columns of the last pass,
// adding padding where a member falls short. Returns whether another pass
// is needed.
func (r *resolver) align() bool {
	changed := false
	for _, op := range r.scopes.align {
		target := 0
		for _, id := range op.tokens {
			target = max(target, r.alignedColumn(id))
		}
		for _, id := range op.tokens {
			short := target - r.alignedColumn(id)
			if short <= 0 || !r.stream.Contains(id) {
				continue
			}
			if td, _ := r.stream.Decision(id); td.kind != Whitespace {
				continue
			}
			r.pads[id] += short
			changed = true
		}
	}
	return changed
}

func (r *resolver) alignedColumn(id token.ID) int {
	if r.stream.Contains(id) {
		col, _ := r.stream.Column(id)
		return col
	}
	tok := r.stream.At(id)
	return r.tree.File().Column(tok.Span().Start, r.opts.TabSize)
}
