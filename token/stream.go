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
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/bufbuild/reformat/source"
)

// Stream is a token stream over a range of a [source.File].
//
// Most streams cover a whole file. Streams for structured trivia (code
// embedded inside a comment) cover only the embedded range, but still use
// offsets into the enclosing file, so that spans and edits never need to be
// translated.
//
// Streams are built by a lexer with [Stream.Push] and sealed with
// [Stream.Finish], which appends the EOF token. Once finished, a stream is
// immutable and safe to share between goroutines.
type Stream struct {
	// The file this stream is over.
	*source.File

	// The byte range of the file this stream covers.
	start, end int

	toks   []rawToken
	frozen bool
}

type rawToken struct {
	start, end int32
	kind       Kind
}

// NewStream returns an empty stream over file[start:end].
func NewStream(file *source.File, start, end int) *Stream {
	if start < 0 || start > end || end > file.Len() {
		panic(fmt.Sprintf("reformat/token: invalid stream range [%d:%d] for %d bytes", start, end, file.Len()))
	}
	return &Stream{File: file, start: start, end: end}
}

// Range returns the span of the file this stream covers.
func (s *Stream) Range() source.Span {
	return s.Span(s.start, s.end)
}

// Len returns the number of tokens in this stream, including EOF once the
// stream is finished.
func (s *Stream) Len() int {
	return len(s.toks)
}

// At returns the token with the given ID.
//
// Panics if id is out of bounds.
func (s *Stream) At(id ID) Token {
	if id < 0 || int(id) >= len(s.toks) {
		panic(fmt.Sprintf("reformat/token: token ID %d out of bounds for stream of length %d", id, len(s.toks)))
	}
	return Token{s, id}
}

// First returns the first token of the stream, or [Zero] if it is empty.
func (s *Stream) First() Token {
	if len(s.toks) == 0 {
		return Zero
	}
	return s.At(0)
}

// Last returns the last token of the stream (EOF, if finished).
func (s *Stream) Last() Token {
	if len(s.toks) == 0 {
		return Zero
	}
	return s.At(ID(len(s.toks) - 1))
}

// All returns an iterator over all tokens in this stream, in order.
func (s *Stream) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for i := range s.toks {
			if !yield(Token{s, ID(i)}) {
				return
			}
		}
	}
}

// Gap returns the trivia span that precedes the token with the given ID.
func (s *Stream) Gap(id ID) source.Span {
	start := s.start
	if id > 0 {
		start = int(s.toks[id-1].end)
	}
	return s.Span(start, int(s.toks[id].start))
}

// Search returns the first token whose end is at or after offset; that is,
// the token containing offset, or the token following the gap containing it.
//
// If offset is past the end of the stream, returns the last token.
func (s *Stream) Search(offset int) Token {
	idx, _ := slices.BinarySearchFunc(s.toks, offset, func(t rawToken, offset int) int {
		return cmp.Compare(int(t.end), offset)
	})
	if idx >= len(s.toks) {
		return s.Last()
	}
	return s.At(ID(idx))
}

// Push mints the next token, covering file[start:end].
//
// Panics if the stream is finished, or if the token would overlap the previous
// one or escape the stream's range.
func (s *Stream) Push(start, end int, kind Kind) Token {
	if s.frozen {
		panic("reformat/token: attempted to mutate finished stream")
	}

	prevEnd := s.start
	if len(s.toks) > 0 {
		prevEnd = int(s.toks[len(s.toks)-1].end)
	}
	if start < prevEnd || start > end || end > s.end {
		panic(fmt.Sprintf("reformat/token: Push(%d, %d) out of order (previous end %d, limit %d)", start, end, prevEnd, s.end))
	}

	s.toks = append(s.toks, rawToken{start: int32(start), end: int32(end), kind: kind})
	return Token{s, ID(len(s.toks) - 1)}
}

// Finish appends the EOF token and freezes the stream.
func (s *Stream) Finish() Token {
	eof := s.Push(s.end, s.end, EOF)
	s.frozen = true
	return eof
}
