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
	"slices"
	"strings"
	"sync"

	"github.com/bufbuild/reformat/internal/width"
)

// File is a source code file being formatted.
//
// It contains additional book-keeping information for resolving span locations.
// Files are immutable once created.
//
// A nil *File behaves like an empty file with the path name "".
type File struct {
	path, text string

	once sync.Once
	// A prefix sum of the line lengths of text. Given a byte offset, it is possible
	// to recover which line that offset is on by performing a binary search on this
	// list.
	//
	// Alternatively, this slice can be interpreted as the index after each \n in the
	// original file.
	lineIndex []int
}

// NewFile constructs a new source file.
func NewFile(path, text string) *File {
	return &File{path: path, text: text}
}

// Path returns this file's filesystem path.
//
// It doesn't need to be a real path; it is only used for display.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Text returns this file's textual contents.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.text
}

// Len returns the length of this file, in bytes.
func (f *File) Len() int {
	return len(f.Text())
}

// Span is a shorthand for creating a new Span.
func (f *File) Span(start, end int) Span {
	if f == nil {
		return Span{}
	}
	return Span{f, start, end}
}

// Whole returns a span covering the entire file.
func (f *File) Whole() Span {
	return f.Span(0, f.Len())
}

// LineByOffset searches this index to find the 0-indexed line number for the
// line containing this byte offset.
//
// This operation is O(log n).
func (f *File) LineByOffset(offset int) int {
	lines := f.lines()

	// Find the smallest index in lines such that lines[line] <= offset.
	line, exact := slices.BinarySearch(lines, offset)
	if !exact {
		line--
	}
	return line
}

// LineStart returns the offset of the start of the line containing offset.
func (f *File) LineStart(offset int) int {
	return f.lines()[f.LineByOffset(offset)]
}

// Column returns the 0-indexed visual column of offset, measured in terminal
// cells with the given tabstop width.
func (f *File) Column(offset, tabstop int) int {
	return width.Of(f.Text()[f.LineStart(offset):offset], tabstop)
}

// Location builds full Location information for the given byte offset.
//
// This operation is O(log n).
func (f *File) Location(offset, tabstop int) Location {
	if f == nil || offset == 0 {
		return Location{Offset: 0, Line: 1, Column: 1}
	}
	return Location{
		Offset: offset,
		Line:   f.LineByOffset(offset) + 1,
		Column: f.Column(offset, tabstop) + 1,
	}
}

// Offset inverts [File.Location] for byte columns: line and column are
// 1-indexed, and column counts bytes.
//
// Out-of-range positions are clamped to the file.
func (f *File) Offset(line, column int) int {
	lines := f.lines()
	line = min(max(line, 1), len(lines))
	start := lines[line-1]
	end := f.Len()
	if line < len(lines) {
		end = lines[line]
	}
	return min(start+max(column, 1)-1, end)
}

// Indentation calculates the indentation at some offset.
//
// Indentation is defined as the run of spaces and tabs that starts the line
// containing offset.
func (f *File) Indentation(offset int) string {
	start := f.LineStart(offset)
	line := f.Text()[start:]
	margin := strings.IndexFunc(line, func(r rune) bool {
		return r != ' ' && r != '\t'
	})
	if margin < 0 {
		margin = len(line)
	}
	return line[:margin]
}

func (f *File) lines() []int {
	if f == nil {
		return []int{0}
	}

	// Compute the prefix sum on-demand.
	f.once.Do(func() {
		var next int

		// We add 1 to the return value of IndexByte because we want to work
		// with the index immediately *after* the newline byte.
		text := f.Text()
		for {
			newline := strings.IndexByte(text, '\n') + 1
			if newline == 0 {
				break
			}

			text = text[newline:]

			f.lineIndex = append(f.lineIndex, next)
			next += newline
		}

		f.lineIndex = append(f.lineIndex, next)
	})
	return f.lineIndex
}
