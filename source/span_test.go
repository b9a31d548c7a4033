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

package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/reformat/source"
)

func TestLocation(t *testing.T) {
	t.Parallel()

	file := source.NewFile(
		"test",
		"foo\nbar\n\tcat: 🐈\ntail",
	)

	tests := []struct {
		offset int
		want   source.Location
	}{
		{0, source.Location{0, 1, 1}},
		{2, source.Location{2, 1, 3}},
		{4, source.Location{4, 2, 1}},
		{9, source.Location{9, 3, 5}},
		{14, source.Location{14, 3, 10}},
		{18, source.Location{18, 3, 12}},
		{19, source.Location{19, 4, 1}},
		{23, source.Location{23, 4, 5}},
	}

	for _, test := range tests {
		t.Run("", func(t *testing.T) {
			t.Parallel()
			t.Logf("%q | %q", file.Text()[:test.offset], file.Text()[test.offset:])
			assert.Equal(t, test.want, file.Location(test.offset, 4))
		})
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test", "ab\ncd\n")
	assert.Equal(t, 0, file.Offset(1, 1))
	assert.Equal(t, 4, file.Offset(2, 2))
	assert.Equal(t, 6, file.Offset(3, 1))
	assert.Equal(t, 6, file.Offset(9, 9))
	assert.Equal(t, 3, file.Offset(2, 0))
}

func TestSpan(t *testing.T) {
	t.Parallel()

	file := source.NewFile("test", "  foo(bar)\n")
	span := file.Span(2, 5)
	assert.Equal(t, "foo", span.Text())
	assert.True(t, span.Valid())
	assert.True(t, span.Contains(5))
	assert.False(t, span.Contains(6))
	assert.True(t, span.Overlaps(file.Span(5, 9)))
	assert.False(t, span.Overlaps(file.Span(6, 9)))
	assert.False(t, file.Span(4, 2).Valid())
	assert.False(t, file.Span(0, 99).Valid())
	assert.Equal(t, "  ", file.Indentation(7))
	assert.True(t, source.Span{}.IsZero())
	assert.Equal(t, `"test":1:3[2:5]`, span.String())
}
