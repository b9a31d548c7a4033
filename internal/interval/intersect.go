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

// Package interval provides interval maps keyed by integer endpoints.
//
// The formatter uses these to answer "which operation scopes cover this
// token?" in logarithmic time while walking a token stream.
package interval

import (
	"fmt"
	"iter"
	"slices"

	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints" //nolint:exptostd // Tries to replace w/ cmp.
)

// Endpoint is a type that may be used as an interval endpoint.
type Endpoint = constraints.Integer

// Intersect is an interval intersection map: a collection of closed
// intervals, each with a value, that can be queried for every value whose
// interval contains a point.
//
// Internally the number line is cut into disjoint pieces, each of which
// records every value whose interval covers the whole piece.
//
// A zero value is ready to use.
type Intersect[K Endpoint, V any] struct {
	// Keyed by the end of each piece.
	tree    btree.Map[K, *Entry[K, []V]]
	pending []*Entry[K, []V] // Scratch space for Insert().
	len     int
}

// Entry is a piece of an [Intersect]: a maximal range of points which are
// all covered by the same set of intervals.
type Entry[K Endpoint, V any] struct {
	Start, End K // Inclusive.
	Value      V
}

// Contains returns whether an entry contains a given point.
func (e Entry[K, V]) Contains(point K) bool {
	return e.Start <= point && point <= e.End
}

// Len returns the number of intervals inserted into this map.
func (m *Intersect[K, V]) Len() int {
	return m.len
}

// Get returns the values of all intervals which contain point, in insertion
// order. Returns nil if no interval contains it.
func (m *Intersect[K, V]) Get(point K) []V {
	return m.At(point).Value
}

// At returns the piece containing point. If no interval contains point,
// the returned entry is zero.
func (m *Intersect[K, V]) At(point K) Entry[K, []V] {
	it := m.tree.Iter()
	if !it.Seek(point) || point < it.Value().Start {
		// Seek only guarantees point <= End; the piece might still start
		// after point.
		return Entry[K, []V]{}
	}
	return *it.Value()
}

// Entries returns an iterator over the pieces of this map, in order.
func (m *Intersect[K, V]) Entries() iter.Seq[Entry[K, []V]] {
	return func(yield func(Entry[K, []V]) bool) {
		it := m.tree.Iter()
		for more := it.First(); more; more = it.Next() {
			if !yield(*it.Value()) {
				return
			}
		}
	}
}

// Insert adds the closed interval [start, end] with the given value.
//
// Returns true if the interval was disjoint from all others in the map.
// Panics if start > end.
func (m *Intersect[K, V]) Insert(start, end K, value V) (disjoint bool) {
	if start > end {
		panic(fmt.Sprintf("interval: start (%#v) > end (%#v)", start, end))
	}
	m.len++

	fresh := func(a, b K, values []V) {
		m.pending = append(m.pending, &Entry[K, []V]{Start: a, End: b, Value: values})
	}

	var prev *Entry[K, []V]
	for piece := range m.overlapping(start, end) {
		if prev == nil && start < piece.Start {
			// Uncovered stretch before the first overlapping piece.
			fresh(start, piece.Start-1, []V{value})
		}

		// Values slices may be shared between pieces split from the same
		// parent, so never append to one in place without clipping it first.
		values := piece.Value

		if piece.Contains(end) && end < piece.End {
			// Split off the part after end. The existing piece keeps its key
			// (its End), so it becomes the tail.
			head := &Entry[K, []V]{Start: piece.Start, End: end, Value: append(slices.Clip(values), value)}
			piece.Start = end + 1
			m.pending = append(m.pending, head)
			piece = head
		}

		if piece.Contains(start) && piece.Start < start {
			// Split off the part before start; it does not get the value.
			fresh(piece.Start, start-1, values)
			piece.Start = start
		}

		piece.Value = append(slices.Clip(values), value)

		if prev != nil && prev.End+1 < piece.Start {
			// Uncovered stretch between two overlapping pieces.
			fresh(prev.End+1, piece.Start-1, []V{value})
		}
		prev = piece
	}

	switch {
	case prev == nil:
		fresh(start, end, []V{value})
	case prev.End < end:
		fresh(prev.End+1, end, []V{value})
	}

	for _, piece := range m.pending {
		m.tree.Set(piece.End, piece)
	}
	m.pending = m.pending[:0]

	return prev == nil
}

// overlapping yields the pieces that intersect [start, end], in order.
func (m *Intersect[K, V]) overlapping(start, end K) iter.Seq[*Entry[K, []V]] {
	return func(yield func(*Entry[K, []V]) bool) {
		// Seek finds the first piece ending at or after start; from there,
		// walk forward until a piece starts after end.
		it := m.tree.Iter()
		for more := it.Seek(start); more; more = it.Next() {
			if end < it.Value().Start || !yield(it.Value()) {
				return
			}
		}
	}
}
