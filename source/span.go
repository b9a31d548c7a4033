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

package source

import (
	"fmt"
)

// Span is a location within a [File].
type Span struct {
	// The file this span refers to.
	*File

	// The start and end byte offsets for this span.
	Start, End int
}

// Location is a user-displayable location within a source code file.
type Location struct {
	// The byte offset for this location.
	Offset int

	// The line and column for this location, 1-indexed. Columns are measured
	// in terminal cells.
	//
	// Because these are 1-indexed, a zero Line can be used as a sentinel.
	Line, Column int
}

// IsZero returns whether or not this is the zero span.
func (s Span) IsZero() bool {
	return s.File == nil
}

// Text returns the text corresponding to this span.
func (s Span) Text() string {
	return s.File.Text()[s.Start:s.End]
}

// Len returns the length of this span, in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains returns whether offset lies within this span. The end is
// inclusive, so that an empty span contains its own offset.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset <= s.End
}

// Overlaps returns whether two spans of the same file share at least one
// offset, treating both ends as inclusive.
func (s Span) Overlaps(that Span) bool {
	return s.Start <= that.End && that.Start <= s.End
}

// Valid returns whether this span lies within its file's bounds.
func (s Span) Valid() bool {
	return !s.IsZero() && 0 <= s.Start && s.Start <= s.End && s.End <= s.File.Len()
}

// StartLoc returns the start location for this span.
func (s Span) StartLoc() Location {
	return s.Location(s.Start, 0)
}

// EndLoc returns the end location for this span.
func (s Span) EndLoc() Location {
	return s.Location(s.End, 0)
}

// String implements [fmt.Stringer].
func (s Span) String() string {
	start := s.StartLoc()
	return fmt.Sprintf("%q:%d:%d[%d:%d]", s.Path(), start.Line, start.Column, s.Start, s.End)
}
