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

package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reformat/source"
	"github.com/bufbuild/reformat/token"
)

func TestStream(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test", "foo( x ) // hi\n")
	s := token.NewStream(file, 0, file.Len())
	foo := s.Push(0, 3, token.Ident)
	open := s.Push(3, 4, token.Punct)
	x := s.Push(5, 6, token.Ident)
	closeParen := s.Push(7, 8, token.Punct)
	eof := s.Finish()

	require.Equal(t, 5, s.Len())
	assert.Equal(t, token.EOF, eof.Kind())
	assert.Equal(t, "", eof.Text())
	assert.Equal(t, token.ID(4), eof.ID())

	assert.Equal(t, "", foo.Leading().Text())
	assert.Equal(t, "", open.Leading().Text())
	assert.Equal(t, " ", x.Leading().Text())
	assert.Equal(t, " ", x.Trailing().Text())
	assert.Equal(t, " // hi\n", eof.Leading().Text())
	assert.True(t, eof.Trailing().IsZero())

	assert.Equal(t, open, x.Prev())
	assert.Equal(t, closeParen, x.Next())
	assert.True(t, foo.Prev().IsZero())
	assert.True(t, eof.Next().IsZero())
	assert.True(t, closeParen.Is(")"))
	assert.False(t, token.Zero.Is(""))
	assert.Equal(t, token.ID(-1), token.Zero.ID())

	assert.Equal(t, foo, s.Search(0))
	assert.Equal(t, foo, s.Search(3))
	assert.Equal(t, x, s.Search(5))
	assert.Equal(t, closeParen, s.Search(7))
	assert.Equal(t, eof, s.Search(10))
	assert.Equal(t, eof, s.Search(100))

	var texts []string
	for tok := range s.All() {
		texts = append(texts, tok.Text())
	}
	assert.Equal(t, []string{"foo", "(", "x", ")", ""}, texts)

	assert.Panics(t, func() { s.Push(15, 15, token.Ident) })
}

func TestEmbeddedStream(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test", "a /* @code b */")
	s := token.NewStream(file, 10, 13)
	b := s.Push(11, 12, token.Ident)
	eof := s.Finish()

	assert.Equal(t, " ", b.Leading().Text())
	assert.Equal(t, " ", eof.Leading().Text())
	assert.Equal(t, 13, eof.Span().Start)
	assert.Equal(t, " b ", s.Range().Text())

	assert.Panics(t, func() { token.NewStream(file, 10, 99) })
}
