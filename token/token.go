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

package token

import (
	"fmt"

	"github.com/bufbuild/reformat/source"
)

// Zero is the zero [Token].
var Zero Token

// ID is the position of a token within its [Stream], starting at zero.
type ID int

// Token is a lexical element of a source file.
//
// Tokens never contain whitespace or comments. Everything between two
// consecutive tokens is trivia, and is reachable through [Token.Leading]
// and [Token.Trailing].
//
// Tokens are plain values: copying them is cheap, and the zero value is
// [Zero], which is not part of any stream.
type Token struct {
	stream *Stream
	id     ID
}

// IsZero returns whether this is the zero token.
func (t Token) IsZero() bool {
	return t.stream == nil
}

// Stream returns the stream this token belongs to.
func (t Token) Stream() *Stream {
	return t.stream
}

// ID returns this token's position in its stream.
//
// Returns -1 for the zero token.
func (t Token) ID() ID {
	if t.IsZero() {
		return -1
	}
	return t.id
}

// Kind returns this token's kind.
func (t Token) Kind() Kind {
	if t.IsZero() {
		return Unrecognized
	}
	return t.raw().kind
}

// Span returns this token's span in its file.
func (t Token) Span() source.Span {
	if t.IsZero() {
		return source.Span{}
	}
	raw := t.raw()
	return t.stream.Span(int(raw.start), int(raw.end))
}

// Text returns this token's text.
func (t Token) Text() string {
	if t.IsZero() {
		return ""
	}
	return t.Span().Text()
}

// Is returns whether this token has the given text. This is a shorthand
// used heavily by rules when matching punctuation and keywords.
func (t Token) Is(text string) bool {
	return !t.IsZero() && t.Text() == text
}

// Prev returns the token before this one, or [Zero] if this is the first.
func (t Token) Prev() Token {
	if t.IsZero() || t.id == 0 {
		return Zero
	}
	return t.stream.At(t.id - 1)
}

// Next returns the token after this one, or [Zero] if this is the last.
func (t Token) Next() Token {
	if t.IsZero() || int(t.id)+1 >= t.stream.Len() {
		return Zero
	}
	return t.stream.At(t.id + 1)
}

// Leading returns the trivia between the previous token (or the start of the
// stream) and this token.
func (t Token) Leading() source.Span {
	if t.IsZero() {
		return source.Span{}
	}
	return t.stream.Gap(t.id)
}

// Trailing returns the trivia between this token and the next one. The EOF
// token has no trailing trivia.
func (t Token) Trailing() source.Span {
	next := t.Next()
	if next.IsZero() {
		return source.Span{}
	}
	return next.Leading()
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	if t.IsZero() {
		return "Token(<nil>)"
	}
	return fmt.Sprintf("Token(%d, %v, %q)", t.id, t.Kind(), t.Text())
}

func (t Token) raw() rawToken {
	return t.stream.toks[t.id]
}
