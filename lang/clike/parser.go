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
	"fmt"
	"strings"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/source"
	"github.com/bufbuild/reformat/token"
)

// Node kinds produced by [Parse].
const (
	KindFile ast.Kind = iota + 1
	KindFunc
	KindParams
	KindEnum
	KindEnumBody
	KindEnumValue
	KindBlock
	KindIf
	KindCond
	KindBody
	KindWhile
	KindFor
	KindForHeader
	KindReturn
	KindVar
	KindBranch
	KindEmpty
	KindExprStmt
	KindBinary
	KindUnary
	KindCall
	KindArgs
	KindParen
	KindIndex
	KindArray
	KindMember
	KindLeaf
)

// codeMarker introduces a block comment whose content is code.
const codeMarker = "@code"

// SyntaxError is returned by [Parse] for malformed input.
type SyntaxError struct {
	Span    source.Span
	Message string
}

// Error implements [error].
func (e *SyntaxError) Error() string {
	loc := e.Span.StartLoc()
	return fmt.Sprintf("%s:%d:%d: %s", e.Span.Path(), loc.Line, loc.Column, e.Message)
}

// Parse parses a whole file.
//
// Block comments of the form /* @code ... */ whose content parses are
// attached to the tree as embedded trees, so that the code inside them is
// formatted too.
func Parse(file *source.File) (*ast.Tree, error) {
	return parseRange(file, 0, file.Len(), 0)
}

func parseRange(file *source.File, start, end, depth int) (*ast.Tree, error) {
	stream, comments := lex(file, start, end)
	p := &parser{stream: stream}
	root, err := p.file()
	if err != nil {
		return nil, err
	}

	var embeds []*ast.Tree
	for _, c := range comments {
		if sub := embedded(file, c, depth); sub != nil {
			embeds = append(embeds, sub)
		}
	}
	return ast.NewTree(stream, root, embeds...), nil
}

// embedded parses the code inside an @code comment, returning nil if c is
// not one or its content does not parse.
func embedded(file *source.File, c comment, depth int) *ast.Tree {
	if !c.closed || depth >= maxEmbedDepth {
		return nil
	}
	body := file.Text()[c.start+2 : c.end-2]
	trimmed := strings.TrimLeft(body, " \t")
	if !strings.HasPrefix(trimmed, codeMarker) {
		return nil
	}
	start := c.start + 2 + len(body) - len(trimmed) + len(codeMarker)
	end := c.end - 2
	if start > end || (start < end && !strings.ContainsRune(" \t\r\n", rune(file.Text()[start]))) {
		return nil
	}
	sub, err := parseRange(file, start, end, depth+1)
	if err != nil {
		return nil
	}
	return sub
}

const maxEmbedDepth = 8

// parser is a recursive descent parser over a token stream.
type parser struct {
	stream *token.Stream
	cursor token.ID
}

func (p *parser) peek() token.Token {
	return p.stream.At(p.cursor)
}

func (p *parser) next() token.Token {
	tok := p.peek()
	if tok.Kind() != token.EOF {
		p.cursor++
	}
	return tok
}

// at returns whether the next token is text.
func (p *parser) at(text string) bool {
	tok := p.peek()
	return tok.Kind() != token.String && tok.Is(text)
}

func (p *parser) expect(text, where string) (token.Token, error) {
	if !p.at(text) {
		return token.Zero, p.errorf("expected %q %s, found %s", text, where, describe(p.peek()))
	}
	return p.next(), nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Span: p.peek().Span(), Message: fmt.Sprintf(format, args...)}
}

func describe(tok token.Token) string {
	if tok.Kind() == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Text())
}

// node returns a node spanning from first to the last consumed token.
func (p *parser) node(kind ast.Kind, first token.ID, children ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: kind, First: first, Last: p.cursor - 1, Children: children}
}

func (p *parser) file() (*ast.Node, error) {
	var decls []*ast.Node
	for p.peek().Kind() != token.EOF {
		var (
			decl *ast.Node
			err  error
		)
		switch {
		case p.at("func"):
			decl, err = p.function()
		case p.at("enum"):
			decl, err = p.enum()
		default:
			decl, err = p.statement()
		}
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	last := p.cursor // EOF.
	return &ast.Node{Kind: KindFile, First: 0, Last: last, Children: decls}, nil
}

func (p *parser) function() (*ast.Node, error) {
	first := p.next().ID()
	if p.peek().Kind() != token.Ident {
		return nil, p.errorf("expected function name, found %s", describe(p.peek()))
	}
	p.next()

	params, err := p.list(KindParams, "(", ")", func() (*ast.Node, error) {
		if p.peek().Kind() != token.Ident {
			return nil, p.errorf("expected parameter name, found %s", describe(p.peek()))
		}
		id := p.next().ID()
		return &ast.Node{Kind: KindLeaf, First: id, Last: id}, nil
	})
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return p.node(KindFunc, first, params, body), nil
}

func (p *parser) enum() (*ast.Node, error) {
	first := p.next().ID()
	if p.peek().Kind() != token.Ident {
		return nil, p.errorf("expected enum name, found %s", describe(p.peek()))
	}
	p.next()

	body, err := p.list(KindEnumBody, "{", "}", func() (*ast.Node, error) {
		if p.peek().Kind() != token.Ident {
			return nil, p.errorf("expected enum value, found %s", describe(p.peek()))
		}
		first := p.next().ID()
		if p.at("=") {
			p.next()
			value, err := p.expr()
			if err != nil {
				return nil, err
			}
			return p.node(KindEnumValue, first, value), nil
		}
		return p.node(KindEnumValue, first), nil
	})
	if err != nil {
		return nil, err
	}
	return p.node(KindEnum, first, body), nil
}

// list parses a delimited, comma-separated list, allowing a trailing comma.
func (p *parser) list(kind ast.Kind, open, close string, elem func() (*ast.Node, error)) (*ast.Node, error) {
	tok, err := p.expect(open, "to start list")
	if err != nil {
		return nil, err
	}
	var elems []*ast.Node
	for !p.at(close) {
		e, err := elem()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.at(",") {
			break
		}
		p.next()
	}
	if _, err := p.expect(close, "to end list"); err != nil {
		return nil, err
	}
	return p.node(kind, tok.ID(), elems...), nil
}

func (p *parser) block() (*ast.Node, error) {
	open, err := p.expect("{", "to start block")
	if err != nil {
		return nil, err
	}
	var stmts []*ast.Node
	for !p.at("}") {
		if p.peek().Kind() == token.EOF {
			return nil, p.errorf("unclosed block")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.next()
	return p.node(KindBlock, open.ID(), stmts...), nil
}

func (p *parser) statement() (*ast.Node, error) {
	first := p.cursor
	switch {
	case p.at("{"):
		return p.block()
	case p.at(";"):
		p.next()
		return p.node(KindEmpty, first), nil

	case p.at("if"):
		p.next()
		cond, err := p.cond()
		if err != nil {
			return nil, err
		}
		then, err := p.body()
		if err != nil {
			return nil, err
		}
		children := []*ast.Node{cond, then}
		if p.at("else") {
			p.next()
			var alt *ast.Node
			if p.at("if") {
				alt, err = p.statement()
			} else {
				alt, err = p.body()
			}
			if err != nil {
				return nil, err
			}
			children = append(children, alt)
		}
		return p.node(KindIf, first, children...), nil

	case p.at("while"):
		p.next()
		cond, err := p.cond()
		if err != nil {
			return nil, err
		}
		body, err := p.body()
		if err != nil {
			return nil, err
		}
		return p.node(KindWhile, first, cond, body), nil

	case p.at("for"):
		p.next()
		header, err := p.forHeader()
		if err != nil {
			return nil, err
		}
		body, err := p.body()
		if err != nil {
			return nil, err
		}
		return p.node(KindFor, first, header, body), nil

	case p.at("return"):
		p.next()
		var children []*ast.Node
		if !p.at(";") {
			value, err := p.expr()
			if err != nil {
				return nil, err
			}
			children = append(children, value)
		}
		if _, err := p.expect(";", "after return"); err != nil {
			return nil, err
		}
		return p.node(KindReturn, first, children...), nil

	case p.at("break"), p.at("continue"):
		p.next()
		if _, err := p.expect(";", "after "+p.stream.At(first).Text()); err != nil {
			return nil, err
		}
		return p.node(KindBranch, first), nil

	case p.at("var"):
		decl, err := p.varDecl()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";", "after variable declaration"); err != nil {
			return nil, err
		}
		return p.node(KindVar, first, decl.Children...), nil
	}

	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";", "after expression"); err != nil {
		return nil, err
	}
	return p.node(KindExprStmt, first, value), nil
}

// varDecl parses var name [= expr], without the semicolon.
func (p *parser) varDecl() (*ast.Node, error) {
	first := p.next().ID()
	if p.peek().Kind() != token.Ident {
		return nil, p.errorf("expected variable name, found %s", describe(p.peek()))
	}
	p.next()
	if !p.at("=") {
		return p.node(KindVar, first), nil
	}
	p.next()
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	return p.node(KindVar, first, value), nil
}

// cond parses a parenthesized condition.
func (p *parser) cond() (*ast.Node, error) {
	open, err := p.expect("(", "before condition")
	if err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")", "after condition"); err != nil {
		return nil, err
	}
	return p.node(KindCond, open.ID(), value), nil
}

// body parses the body of a control statement. Bodies that are not blocks
// are wrapped, so that they can be indented.
func (p *parser) body() (*ast.Node, error) {
	if p.at("{") {
		return p.block()
	}
	first := p.cursor
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	return p.node(KindBody, first, stmt), nil
}

func (p *parser) forHeader() (*ast.Node, error) {
	open, err := p.expect("(", "after for")
	if err != nil {
		return nil, err
	}
	var children []*ast.Node
	for i, end := range []string{";", ";", ")"} {
		if !p.at(end) {
			var (
				clause *ast.Node
				err    error
			)
			if i == 0 && p.at("var") {
				clause, err = p.varDecl()
			} else {
				clause, err = p.expr()
			}
			if err != nil {
				return nil, err
			}
			children = append(children, clause)
		}
		if _, err := p.expect(end, "in for header"); err != nil {
			return nil, err
		}
	}
	return p.node(KindForHeader, open.ID(), children...), nil
}

var binaryOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "<<=": true, ">>=": true,
	"||": true, "&&": true, "==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"+": true, "-": true, "*": true, "/": true, "%": true, "<<": true, ">>": true,
	"&": true, "|": true, "^": true,
}

var unaryOps = map[string]bool{"-": true, "+": true, "!": true, "~": true, "++": true, "--": true, "&": true, "*": true}

// IsBinary returns whether tok is used as a binary operator.
func IsBinary(tok token.Token) bool {
	if tok.Kind() != token.Punct || !binaryOps[tok.Text()] {
		return false
	}
	prev := tok.Prev()
	switch prev.Kind() {
	case token.Ident, token.Number, token.String:
		return true
	case token.Keyword:
		return prev.Is("true") || prev.Is("false") || prev.Is("nil")
	case token.Punct:
		return prev.Is(")") || prev.Is("]") || prev.Is("++") || prev.Is("--")
	}
	return false
}

// expr parses a flat chain of binary operators; precedence does not matter
// for layout.
func (p *parser) expr() (*ast.Node, error) {
	first := p.cursor
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	operands := []*ast.Node{operand}
	for p.peek().Kind() == token.Punct && binaryOps[p.peek().Text()] {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	if len(operands) == 1 {
		return operand, nil
	}
	return p.node(KindBinary, first, operands...), nil
}

func (p *parser) unary() (*ast.Node, error) {
	first := p.cursor
	if p.peek().Kind() == token.Punct && unaryOps[p.peek().Text()] {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return p.node(KindUnary, first, operand), nil
	}
	return p.postfix()
}

func (p *parser) postfix() (*ast.Node, error) {
	first := p.cursor
	value, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at("("):
			args, err := p.list(KindArgs, "(", ")", p.expr)
			if err != nil {
				return nil, err
			}
			value = p.node(KindCall, first, value, args)
		case p.at("["):
			p.next()
			index, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]", "after index"); err != nil {
				return nil, err
			}
			value = p.node(KindIndex, first, value, index)
		case p.at("."), p.at("->"):
			p.next()
			if p.peek().Kind() != token.Ident {
				return nil, p.errorf("expected member name, found %s", describe(p.peek()))
			}
			p.next()
			value = p.node(KindMember, first, value)
		case p.at("++"), p.at("--"):
			p.next()
			value = p.node(KindUnary, first, value)
		default:
			return value, nil
		}
	}
}

func (p *parser) primary() (*ast.Node, error) {
	tok := p.peek()
	switch tok.Kind() {
	case token.Ident, token.Number, token.String:
		p.next()
		return p.node(KindLeaf, tok.ID()), nil
	case token.Keyword:
		if tok.Is("true") || tok.Is("false") || tok.Is("nil") {
			p.next()
			return p.node(KindLeaf, tok.ID()), nil
		}
	case token.Punct:
		switch {
		case tok.Is("("):
			p.next()
			value, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")", "to close parenthesis"); err != nil {
				return nil, err
			}
			return p.node(KindParen, tok.ID(), value), nil
		case tok.Is("["):
			return p.list(KindArray, "[", "]", p.expr)
		}
	}
	return nil, p.errorf("expected expression, found %s", describe(tok))
}
