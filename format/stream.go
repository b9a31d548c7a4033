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
	"iter"

	"github.com/bufbuild/reformat/source"
	"github.com/bufbuild/reformat/token"
)

// tokenStream is the window of a token stream that a run may change.
//
// Gaps are named by the token that follows them. The window holds the gaps
// [first, last], so its tokens are first-1 (the left boundary, absent when
// first is zero) through last (the right boundary). Every gap in the window
// has one decision slot.
type tokenStream struct {
	tokens      *token.Stream
	first, last token.ID

	decisions []TriviaData
	decided   []bool
	columns   []int // Start column of tokens first-1 through last.
}

func newTokenStream(tokens *token.Stream, first, last token.ID) *tokenStream {
	n := int(last - first + 1)
	return &tokenStream{
		tokens:    tokens,
		first:     first,
		last:      last,
		decisions: make([]TriviaData, n),
		decided:   make([]bool, n),
		columns:   make([]int, n+1),
	}
}

// Len returns the number of gaps in the window.
func (s *tokenStream) Len() int {
	return len(s.decisions)
}

// Contains returns whether the gap before id is in the window.
func (s *tokenStream) Contains(id token.ID) bool {
	return s.first <= id && id <= s.last
}

// At returns the token with the given ID. Tokens outside of the window may be
// inspected, but have no decision slots.
func (s *tokenStream) At(id token.ID) token.Token {
	if id < 0 {
		return token.Zero
	}
	return s.tokens.At(id)
}

// Gap returns the original span of the gap before id.
func (s *tokenStream) Gap(id token.ID) source.Span {
	return s.tokens.Gap(id)
}

// Gaps returns an iterator over the gaps of the window, in order.
func (s *tokenStream) Gaps() iter.Seq[token.ID] {
	return func(yield func(token.ID) bool) {
		for id := s.first; id <= s.last; id++ {
			if !yield(id) {
				return
			}
		}
	}
}

// Decision returns the decided trivia for the gap before id.
func (s *tokenStream) Decision(id token.ID) (TriviaData, bool) {
	s.check(id)
	return s.decisions[id-s.first], s.decided[id-s.first]
}

// Decide records the trivia for the gap before id.
func (s *tokenStream) Decide(id token.ID, td TriviaData) {
	s.check(id)
	s.decisions[id-s.first] = td
	s.decided[id-s.first] = true
}

// Column returns the start column recorded for the token id, and whether one
// was recorded.
func (s *tokenStream) Column(id token.ID) (int, bool) {
	idx := int(id - s.first + 1)
	if idx < 0 || idx >= len(s.columns) {
		return 0, false
	}
	return s.columns[idx], true
}

func (s *tokenStream) setColumn(id token.ID, column int) {
	s.columns[id-s.first+1] = column
}

// reset clears all decisions, for another resolution pass.
func (s *tokenStream) reset() {
	clear(s.decisions)
	clear(s.decided)
	clear(s.columns)
}

func (s *tokenStream) check(id token.ID) {
	if !s.Contains(id) {
		panic(fmt.Sprintf("reformat/format: gap %d outside of window [%d, %d]", id, s.first, s.last))
	}
}
