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

// Package format is a trivia-preserving layout engine.
//
// [Format] takes a syntax tree, a language's [Rules] and a span, and decides
// the whitespace between every pair of tokens in the span. It never adds,
// removes or reorders tokens, and never changes the content of comments:
// only the indentation of lines inside a comment-bearing gap may move.
//
// Decisions come from two sources. A [Chain] of rules is asked about each
// pair of adjacent tokens, and answers with a number of spaces or line
// breaks. Operations produced per node ([Suppress], [Anchor], [SetIndent],
// [Align]) then override the chain inside their scope, with fixed
// precedence: Suppress, then Anchor, then SetIndent, then the chain.
//
// The result of a run is a list of [Edit] values, one per gap whose text
// changed, which can be applied to an open buffer one at a time.
package format
