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
	"fmt"
	"slices"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/token"
)

const (
	answerContinue answerKind = iota
	answerSpaces
	answerLineBreaks
)

type answerKind byte

// Answer is a rule's verdict on the gap between two tokens.
//
// The zero value is [Continue], which means "no opinion" and is distinct
// from Spaces(0).
type Answer struct {
	kind answerKind
	n    int
}

// Continue declines to answer, passing the question to the next rule.
var Continue Answer

// Spaces requests that the two tokens share a line, separated by n spaces.
func Spaces(n int) Answer {
	return Answer{answerSpaces, max(n, 0)}
}

// LineBreaks requests n line breaks between the two tokens. LineBreaks(0)
// is the same as Spaces(0).
func LineBreaks(n int) Answer {
	if n <= 0 {
		return Spaces(0)
	}
	return Answer{answerLineBreaks, n}
}

// IsContinue returns whether this answer declines.
func (a Answer) IsContinue() bool {
	return a.kind == answerContinue
}

// Spaces returns the requested number of spaces, if this is a space answer.
func (a Answer) Spaces() (int, bool) {
	return a.n, a.kind == answerSpaces
}

// LineBreaks returns the requested number of line breaks, if this is a
// line-break answer.
func (a Answer) LineBreaks() (int, bool) {
	return a.n, a.kind == answerLineBreaks
}

// String implements [fmt.Stringer].
func (a Answer) String() string {
	switch a.kind {
	case answerSpaces:
		return fmt.Sprintf("Spaces(%d)", a.n)
	case answerLineBreaks:
		return fmt.Sprintf("LineBreaks(%d)", a.n)
	default:
		return "Continue"
	}
}

// Rule evaluates the gap between two adjacent tokens.
//
// prev is [token.Zero] for the gap at the very start of a stream.
type Rule interface {
	Evaluate(prev, cur token.Token, ctx *RuleContext) Answer
}

// RuleFunc adapts a function into a [Rule].
type RuleFunc func(prev, cur token.Token, ctx *RuleContext) Answer

// Evaluate implements [Rule].
func (f RuleFunc) Evaluate(prev, cur token.Token, ctx *RuleContext) Answer {
	return f(prev, cur, ctx)
}

// Chain is an ordered chain of rules. The first rule to give an answer other
// than [Continue] decides the gap.
//
// Chains are the extension point of the engine: a rule pack builds one by
// appending its links, and the engine never inspects them.
type Chain []Rule

// Append returns a new chain with rules added at the end. c is not modified.
func (c Chain) Append(rules ...Rule) Chain {
	return append(slices.Clip(c), rules...)
}

// Evaluate runs the chain on a pair of tokens.
func (c Chain) Evaluate(prev, cur token.Token, ctx *RuleContext) Answer {
	for _, rule := range c {
		if a := rule.Evaluate(prev, cur, ctx); !a.IsContinue() {
			return a
		}
	}
	return Continue
}

// RuleContext is the information available to a rule.
type RuleContext struct {
	tree     *ast.Tree
	opts     *Options
	original TriviaData
}

// Tree returns the tree being formatted.
func (c *RuleContext) Tree() *ast.Tree {
	return c.tree
}

// Options returns the effective options of the run.
func (c *RuleContext) Options() Options {
	return *c.opts
}

// Original returns the unformatted trivia of the gap being evaluated.
func (c *RuleContext) Original() TriviaData {
	return c.original
}

// Enclosing returns the deepest node containing tok.
func (c *RuleContext) Enclosing(tok token.Token) *ast.Node {
	if tok.IsZero() {
		return nil
	}
	return c.tree.Enclosing(tok.ID())
}

// evaluate runs chain, converting a panic into an error.
func evaluate(chain Chain, prev, cur token.Token, ctx *RuleContext) (answer Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return chain.Evaluate(prev, cur, ctx), nil
}
