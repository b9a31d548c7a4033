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
	"slices"
	"strings"

	"github.com/bufbuild/reformat/source"
)

// Edit replaces the bytes [Start, End) of a file with Text.
type Edit struct {
	Start, End int
	Text       string
}

// String implements [fmt.Stringer].
func (e Edit) String() string {
	return fmt.Sprintf("[%d:%d]%q", e.Start, e.End, e.Text)
}

// Result is the outcome of a formatting run.
type Result struct {
	file   *source.File
	edits  []Edit
	faults []*Fault
}

// FormattedText returns the text of the file with every edit applied.
func (r *Result) FormattedText() string {
	return apply(r.file.Text(), 0, r.edits)
}

// TextChanges returns the edits of this run: one per gap whose text changed,
// sorted by offset. Edits never overlap, and adjacent edits are never merged.
func (r *Result) TextChanges() []Edit {
	return slices.Clone(r.edits)
}

// Faults returns the rule and operation failures that were recovered during
// this run, in source order.
func (r *Result) Faults() []*Fault {
	return slices.Clone(r.faults)
}

// Apply applies sorted, non-overlapping edits to text, whose first byte is at
// offset zero.
func Apply(text string, edits []Edit) string {
	return apply(text, 0, edits)
}

// apply is like Apply, for text that starts at offset base.
func apply(text string, base int, edits []Edit) string {
	if len(edits) == 0 {
		return text
	}
	var out strings.Builder
	out.Grow(len(text))
	pos := 0
	for _, edit := range edits {
		out.WriteString(text[pos : edit.Start-base])
		out.WriteString(edit.Text)
		pos = edit.End - base
	}
	out.WriteString(text[pos:])
	return out.String()
}

// produceEdits diffs the decided trivia of every gap in the window against
// the original text.
func produceEdits(s *tokenStream) []Edit {
	var edits []Edit
	for id := range s.Gaps() {
		td, ok := s.Decision(id)
		gap := s.Gap(id)
		if !ok || td.text == gap.Text() {
			continue
		}
		edits = append(edits, Edit{Start: gap.Start, End: gap.End, Text: td.text})
	}
	return edits
}
