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

package clike

import (
	"strings"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/format"
	"github.com/bufbuild/reformat/token"
)

// Option keys understood by the rules.
const (
	// "same_line" (default) or "next_line".
	OptBraceStyle = "clike.brace_style"
	// The most blank lines kept between statements. Defaults to 1.
	OptMaxBlankLines = "clike.max_blank_lines"
	// Whether files end with exactly one line break. Defaults to true.
	OptFinalNewline = "clike.final_newline"
)

// Chain returns the rule chain for the given options.
//
// Rules are ordered from general to specific, and the first rule with an
// answer decides. Callers may append their own rules to the result.
func Chain(opts format.Options) format.Chain {
	nextLine := opts.Text(OptBraceStyle, "same_line") == "next_line"
	blank := max(opts.Int(OptMaxBlankLines, 1), 0)
	final := opts.Bool(OptFinalNewline, true)

	// Keeps up to blank empty lines from the original, but always breaks.
	breaks := func(ctx *format.RuleContext) format.Answer {
		return format.LineBreaks(min(max(ctx.Original().LineBreaks(), 1), blank+1))
	}

	return format.Chain{
		// Start and end of input.
		format.RuleFunc(func(prev, cur token.Token, ctx *format.RuleContext) format.Answer {
			if prev.IsZero() {
				return format.Continue
			}
			if cur.Kind() != token.EOF {
				return format.Continue
			}
			if !final || !isTopLevel(ctx) {
				return format.Continue
			}
			return format.LineBreaks(1)
		}),

		// Blocks and braces.
		format.RuleFunc(func(prev, cur token.Token, ctx *format.RuleContext) format.Answer {
			switch {
			case isBlockOpen(prev, ctx) && cur.Is("}"):
				return format.Spaces(0)
			case isBlockOpen(prev, ctx):
				return format.LineBreaks(1)
			case isBlockClose(cur, ctx):
				return format.LineBreaks(1)
			case isBlockOpen(cur, ctx) && !isStatement(cur, ctx):
				if nextLine {
					return format.LineBreaks(1)
				}
				return format.Spaces(1)
			case isBlockClose(prev, ctx) && cur.Is("else"):
				if nextLine {
					return format.LineBreaks(1)
				}
				return format.Spaces(1)
			case isBlockClose(prev, ctx) && isCloser(cur):
				return format.Spaces(0)
			case isBlockClose(prev, ctx):
				return breaks(ctx)
			}
			return format.Continue
		}),

		// Statement ends.
		format.RuleFunc(func(prev, cur token.Token, ctx *format.RuleContext) format.Answer {
			switch {
			case !prev.Is(";"):
				return format.Continue
			case inForHeader(prev, ctx) && isCloser(cur):
				return format.Spaces(0)
			case inForHeader(prev, ctx):
				return format.Spaces(1)
			case isCloser(cur):
				return format.Continue
			}
			return breaks(ctx)
		}),

		// Control statements whose body is not a block.
		format.RuleFunc(func(prev, cur token.Token, ctx *format.RuleContext) format.Answer {
			if starts(cur, ctx, KindBody) {
				return format.LineBreaks(1)
			}
			if cur.Is("else") {
				return format.LineBreaks(1)
			}
			return format.Continue
		}),

		// Punctuation that hugs its neighbors.
		format.RuleFunc(func(prev, cur token.Token, ctx *format.RuleContext) format.Answer {
			switch {
			case cur.Is(";"), cur.Is(","):
				return format.Spaces(0)
			case cur.Is(")"), cur.Is("]"):
				if ctx.Original().LineBreaks() > 0 && !prev.Is("(") && !prev.Is("[") {
					return format.Continue
				}
				return format.Spaces(0)
			case prev.Is("("), prev.Is("["):
				return format.Spaces(0)
			case prev.Is("."), cur.Is("."), prev.Is("->"), cur.Is("->"):
				return format.Spaces(0)
			case cur.Is("(") || cur.Is("["):
				if prev.Kind() == token.Keyword && !isLiteral(prev) {
					return format.Spaces(1)
				}
				if isOperand(prev) {
					return format.Spaces(0)
				}
			case cur.Is("++"), cur.Is("--"):
				if isOperand(prev) {
					return format.Spaces(0)
				}
			}
			return format.Continue
		}),

		// Commas keep line breaks, otherwise are followed by a space.
		format.RuleFunc(func(prev, cur token.Token, ctx *format.RuleContext) format.Answer {
			if !prev.Is(",") {
				return format.Continue
			}
			if ctx.Original().LineBreaks() > 0 {
				return format.LineBreaks(1)
			}
			return format.Spaces(1)
		}),

		// Operators.
		format.RuleFunc(func(prev, cur token.Token, ctx *format.RuleContext) format.Answer {
			switch {
			case IsBinary(cur), IsBinary(prev):
				if ctx.Original().LineBreaks() > 0 {
					return format.Continue
				}
				return format.Spaces(1)
			case prev.Kind() == token.Punct && unaryOps[prev.Text()]:
				return format.Spaces(0)
			}
			return format.Continue
		}),

		// Words never touch.
		format.RuleFunc(func(prev, cur token.Token, ctx *format.RuleContext) format.Answer {
			if isWord(prev) && isWord(cur) {
				return format.Spaces(1)
			}
			if prev.Kind() == token.Keyword && !isLiteral(prev) {
				return format.Spaces(1)
			}
			return format.Continue
		}),
	}
}

func isTopLevel(ctx *format.RuleContext) bool {
	rng := ctx.Tree().Range()
	return rng.Start == 0 && rng.End == ctx.Tree().File().Len()
}

// starts returns whether tok is the first token of a node of the given kind.
func starts(tok token.Token, ctx *format.RuleContext, kind ast.Kind) bool {
	for n := ctx.Enclosing(tok); n != nil && n.First == tok.ID(); n = ctx.Tree().Parent(n) {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

func isBlockOpen(tok token.Token, ctx *format.RuleContext) bool {
	if !tok.Is("{") {
		return false
	}
	n := ctx.Enclosing(tok)
	return n != nil && n.First == tok.ID() && (n.Kind == KindBlock || n.Kind == KindEnumBody)
}

// isStatement returns whether the block opened by tok is a statement of its
// own, rather than the body of something.
func isStatement(tok token.Token, ctx *format.RuleContext) bool {
	parent := ctx.Tree().Parent(ctx.Enclosing(tok))
	return parent != nil && (parent.Kind == KindFile || parent.Kind == KindBlock)
}

func isBlockClose(tok token.Token, ctx *format.RuleContext) bool {
	if !tok.Is("}") {
		return false
	}
	n := ctx.Enclosing(tok)
	return n != nil && n.Last == tok.ID() && (n.Kind == KindBlock || n.Kind == KindEnumBody)
}

func inForHeader(tok token.Token, ctx *format.RuleContext) bool {
	for n := ctx.Enclosing(tok); n != nil; n = ctx.Tree().Parent(n) {
		switch n.Kind {
		case KindForHeader:
			return true
		case KindBlock, KindFor:
			return false
		}
	}
	return false
}

func isCloser(tok token.Token) bool {
	return tok.Is(")") || tok.Is(";") || tok.Is(",") || tok.Is("]")
}

func isLiteral(tok token.Token) bool {
	return tok.Is("true") || tok.Is("false") || tok.Is("nil")
}

func isWord(tok token.Token) bool {
	switch tok.Kind() {
	case token.Ident, token.Keyword, token.Number, token.String:
		return true
	}
	return false
}

// isOperand returns whether tok can end an operand, so that a following (
// or [ is a call or index.
func isOperand(tok token.Token) bool {
	switch tok.Kind() {
	case token.Ident, token.String:
		return true
	case token.Keyword:
		return isLiteral(tok)
	}
	return tok.Is(")") || tok.Is("]")
}

// Operations returns the operation table.
func Operations() format.Operations {
	return format.Operations{
		KindBlock:     indentBody,
		KindEnumBody:  enumBody,
		KindArray:     indentBody,
		KindBody:      indentAll,
		KindArgs:      anchorArgs,
		KindParams:    anchorArgs,
		KindForHeader: suppressAll,
		KindExprStmt:  continuation,
		KindVar:       continuation,
		KindReturn:    continuation,
	}
}

// indentBody indents everything between a pair of delimiters.
func indentBody(n *ast.Node, _ *ast.Tree) format.NodeOps {
	if n.Last-n.First < 2 {
		return format.NodeOps{}
	}
	return format.NodeOps{
		SetIndent: &format.SetIndent{First: n.First + 1, Last: n.Last - 1, Delta: 1},
	}
}

// enumBody indents an enum's values, and aligns the = of values written on
// lines of their own.
func enumBody(n *ast.Node, tree *ast.Tree) format.NodeOps {
	ops := indentBody(n, tree)
	var equals []token.ID
	for _, value := range n.Children {
		if value.First == value.Last {
			continue
		}
		eq := tree.Token(value.First + 1)
		if eq.Is("=") && startsLine(tree.Token(value.First)) {
			equals = append(equals, eq.ID())
		}
	}
	if len(equals) > 1 {
		ops.Align = &format.Align{Tokens: equals}
	}
	return ops
}

func indentAll(n *ast.Node, _ *ast.Tree) format.NodeOps {
	return format.NodeOps{
		SetIndent: &format.SetIndent{First: n.First, Last: n.Last, Delta: 1},
	}
}

// anchorArgs makes continuation lines of an argument list line up with the
// first argument.
func anchorArgs(n *ast.Node, _ *ast.Tree) format.NodeOps {
	if n.Last-n.First < 2 {
		return format.NodeOps{}
	}
	return format.NodeOps{
		Anchor: &format.Anchor{Token: n.First, First: n.First + 1, Last: n.Last, Offset: 1},
	}
}

func suppressAll(n *ast.Node, _ *ast.Tree) format.NodeOps {
	return format.NodeOps{
		Suppress: &format.Suppress{First: n.First, Last: n.Last, Spaces: 1},
	}
}

// continuation indents the lines a statement wraps onto.
func continuation(n *ast.Node, _ *ast.Tree) format.NodeOps {
	if n.First == n.Last {
		return format.NodeOps{}
	}
	return format.NodeOps{
		SetIndent: &format.SetIndent{First: n.First + 1, Last: n.Last, Delta: 1},
	}
}

// startsLine returns whether tok is the first token on its line in the
// original text.
func startsLine(tok token.Token) bool {
	prev := tok.Prev()
	if prev.IsZero() {
		return true
	}
	return strings.Contains(tok.Leading().Text(), "\n")
}
