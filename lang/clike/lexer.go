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
	"unicode"
	"unicode/utf8"

	"github.com/bufbuild/reformat/source"
	"github.com/bufbuild/reformat/token"
)

var keywords = map[string]bool{
	"func": true, "enum": true, "var": true,
	"if": true, "else": true, "while": true, "for": true,
	"return": true, "break": true, "continue": true,
	"true": true, "false": true, "nil": true,
}

// Multi-character punctuation, longest first.
var operators = []string{
	"<<=", ">>=",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "<<", ">>", "->",
}

// comment is a block comment found while lexing.
type comment struct {
	start, end int
	closed     bool
}

// lexer tokenizes a range of a file. Comments and directives are skipped:
// they become part of the gaps between tokens.
type lexer struct {
	*token.Stream
	text string

	cursor   int
	comments []comment
}

func lex(file *source.File, start, end int) (*token.Stream, []comment) {
	l := &lexer{
		Stream: token.NewStream(file, start, end),
		text:   file.Text()[:end],
		cursor: start,
	}
	l.run()
	l.Finish()
	return l.Stream, l.comments
}

// Rest returns unlexed text.
func (l *lexer) Rest() string {
	return l.text[l.cursor:]
}

// Peek peeks the next character, returning -1 at the end.
func (l *lexer) Peek() rune {
	r, n := utf8.DecodeRuneInString(l.Rest())
	if n == 0 {
		return -1
	}
	return r
}

// TakeWhile consumes characters while they match f.
func (l *lexer) TakeWhile(f func(rune) bool) string {
	start := l.cursor
	for l.cursor < len(l.text) {
		r, n := utf8.DecodeRuneInString(l.Rest())
		if !f(r) {
			break
		}
		l.cursor += n
	}
	return l.text[start:l.cursor]
}

// atLineStart returns whether only spaces precede the cursor on its line.
func (l *lexer) atLineStart() bool {
	line := l.text[strings.LastIndexByte(l.text[:l.cursor], '\n')+1 : l.cursor]
	return strings.Trim(line, " \t") == ""
}

func (l *lexer) run() {
	for l.cursor < len(l.text) {
		start := l.cursor
		rest := l.Rest()
		r := l.Peek()

		switch {
		case r == ' ', r == '\t', r == '\r', r == '\n':
			l.cursor++

		case strings.HasPrefix(rest, "//"),
			r == '#' && l.atLineStart():
			// Line comment or directive: runs to the end of the line.
			if end := strings.IndexByte(rest, '\n'); end >= 0 {
				l.cursor += end
			} else {
				l.cursor = len(l.text)
			}

		case strings.HasPrefix(rest, "/*"):
			// An unterminated comment swallows the rest of the input.
			c := comment{start: start}
			if end := strings.Index(rest[2:], "*/"); end >= 0 {
				l.cursor += end + 4
				c.closed = true
			} else {
				l.cursor = len(l.text)
			}
			c.end = l.cursor
			l.comments = append(l.comments, c)

		case r == '"' || r == '\'':
			l.lexString(r)

		case unicode.IsDigit(r):
			l.TakeWhile(func(r rune) bool {
				return r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
			})
			l.Push(start, l.cursor, token.Number)

		case r == '_' || unicode.IsLetter(r):
			word := l.TakeWhile(func(r rune) bool {
				return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
			})
			kind := token.Ident
			if keywords[word] {
				kind = token.Keyword
			}
			l.Push(start, l.cursor, kind)

		case strings.ContainsRune("(){}[];,.=+-*/%<>!&|^~?:", r):
			n := 1
			for _, op := range operators {
				if strings.HasPrefix(rest, op) {
					n = len(op)
					break
				}
			}
			l.cursor += n
			l.Push(start, l.cursor, token.Punct)

		default:
			l.TakeWhile(func(r rune) bool {
				return !unicode.IsSpace(r) && !strings.ContainsRune("(){}[];,\"'", r)
			})
			if l.cursor == start {
				_, n := utf8.DecodeRuneInString(rest)
				l.cursor += n
			}
			l.Push(start, l.cursor, token.Unrecognized)
		}
	}
}

// lexString lexes a quoted string. An unterminated string ends at the end
// of its line.
func (l *lexer) lexString(quote rune) {
	start := l.cursor
	l.cursor++
	for l.cursor < len(l.text) {
		c := l.text[l.cursor]
		switch {
		case c == '\\' && l.cursor+1 < len(l.text):
			l.cursor += 2
			continue
		case c == '\n':
			l.Push(start, l.cursor, token.String)
			return
		case rune(c) == quote:
			l.cursor++
			l.Push(start, l.cursor, token.String)
			return
		}
		l.cursor++
	}
	l.Push(start, l.cursor, token.String)
}
