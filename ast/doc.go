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

// Package ast provides the syntax tree consumed by the formatter.
//
// The tree is minimal: a [Node] is a tagged union whose tag is
// a [Kind] chosen by the language that produced it, together with the range
// of tokens it spans. The formatter never interprets kinds itself; instead, a
// language supplies a dispatch table keyed by [Kind].
package ast
