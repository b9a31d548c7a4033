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

package interval_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/reformat/internal/interval"
)

func TestInsert(t *testing.T) {
	t.Parallel()
	type in struct {
		start, end int
		value      string
	}
	type out = interval.Entry[int, []string]

	tests := []struct {
		name   string
		ranges []in // Ranges to insert.
		want   []out
	}{
		{
			name:   "empty-map",
			ranges: []in{{0, 9, "foo"}},
			want:   []out{{0, 9, []string{"foo"}}},
		},
		{
			name:   "disjoint",
			ranges: []in{{30, 39, "bar"}, {0, 9, "foo"}},
			want: []out{
				{0, 9, []string{"foo"}},
				{30, 39, []string{"bar"}},
			},
		},
		{
			name:   "nested",
			ranges: []in{{0, 9, "foo"}, {2, 4, "baz"}},
			want: []out{
				{0, 1, []string{"foo"}},
				{2, 4, []string{"foo", "baz"}},
				{5, 9, []string{"foo"}},
			},
		},
		{
			name:   "identical",
			ranges: []in{{0, 9, "foo"}, {0, 9, "baz"}},
			want:   []out{{0, 9, []string{"foo", "baz"}}},
		},
		{
			name:   "enclosing",
			ranges: []in{{3, 5, "foo"}, {0, 9, "baz"}},
			want: []out{
				{0, 2, []string{"baz"}},
				{3, 5, []string{"foo", "baz"}},
				{6, 9, []string{"baz"}},
			},
		},
		{
			name:   "straddle-adjacent",
			ranges: []in{{0, 9, "foo"}, {10, 19, "bar"}, {5, 14, "baz"}},
			want: []out{
				{0, 4, []string{"foo"}},
				{5, 9, []string{"foo", "baz"}},
				{10, 14, []string{"bar", "baz"}},
				{15, 19, []string{"bar"}},
			},
		},
		{
			name:   "straddle-gap",
			ranges: []in{{0, 9, "foo"}, {30, 39, "bar"}, {9, 30, "baz"}},
			want: []out{
				{0, 8, []string{"foo"}},
				{9, 9, []string{"foo", "baz"}},
				{10, 29, []string{"baz"}},
				{30, 30, []string{"bar", "baz"}},
				{31, 39, []string{"bar"}},
			},
		},
		{
			name:   "point",
			ranges: []in{{0, 10, "foo"}, {-2, 0, "baz"}},
			want: []out{
				{-2, -1, []string{"baz"}},
				{0, 0, []string{"foo", "baz"}},
				{1, 10, []string{"foo"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var m interval.Intersect[int, string]
			for _, r := range tt.ranges {
				m.Insert(r.start, r.end, r.value)
			}
			assert.Equal(t, tt.want, slices.Collect(m.Entries()))
			assert.Equal(t, len(tt.ranges), m.Len())
		})
	}
}

func TestSharedValues(t *testing.T) {
	t.Parallel()

	// Splitting pieces must not let later inserts leak values into siblings.
	var m interval.Intersect[int, string]
	m.Insert(0, 9, "a")
	m.Insert(0, 4, "b")
	m.Insert(5, 9, "c")
	m.Insert(0, 2, "d")

	assert.Equal(t, []string{"a", "b", "d"}, m.Get(1))
	assert.Equal(t, []string{"a", "b"}, m.Get(3))
	assert.Equal(t, []string{"a", "c"}, m.Get(7))
	assert.Nil(t, m.Get(10))
	assert.Nil(t, m.Get(-1))
	assert.Equal(t, 3, m.At(3).Start)
	assert.Equal(t, 4, m.At(3).End)

	assert.Panics(t, func() { m.Insert(3, 2, "x") })
}
