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

// Package width measures text in terminal columns, which is the unit the
// formatter uses for indentation and alignment.
//
// Tabstops (\t) are treated specially: they advance the column to the next
// multiple of the tabstop width. Everything else is measured per grapheme
// cluster, so wide runes count as two columns and combining marks as zero.
package width

import (
	"strings"

	"github.com/rivo/uniseg"
)

// DefaultTabstop is used whenever a non-positive tabstop is passed in.
const DefaultTabstop = 4

// Advance returns the column reached after rendering text starting at column.
//
// A newline in text resets the column, so the result is the width of the
// final line of text (plus column, if text contains no newline).
func Advance(column int, text string, tabstop int) int {
	if tabstop <= 0 {
		tabstop = DefaultTabstop
	}
	if nl := strings.LastIndexByte(text, '\n'); nl >= 0 {
		column = 0
		text = text[nl+1:]
	}

	// We can't just use StringWidth, because that doesn't respect tabstops
	// correctly.
	for i, chunk := range strings.Split(text, "\t") {
		if i > 0 {
			column += tabstop - column%tabstop
		}
		column += uniseg.StringWidth(chunk)
	}
	return column
}

// Of returns the width of a single line of text rendered at column zero.
func Of(text string, tabstop int) int {
	return Advance(0, text, tabstop)
}

// Indent renders an indentation string that reaches column.
//
// With useTabs, as many tabs as fit are emitted, followed by spaces for the
// remainder.
func Indent(column, tabstop int, useTabs bool) string {
	if column <= 0 {
		return ""
	}
	if !useTabs {
		return strings.Repeat(" ", column)
	}
	if tabstop <= 0 {
		tabstop = DefaultTabstop
	}
	return strings.Repeat("\t", column/tabstop) + strings.Repeat(" ", column%tabstop)
}
