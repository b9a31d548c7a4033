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

// Package clike is the formatting rule pack for a small C-like language.
//
// The language has functions, enums, variables, the usual control
// statements, and expressions with C operators. Comments are // and /* */,
// and lines starting with # are directives. A block comment whose text
// starts with @code holds code that is formatted along with the file:
//
//	/* @code
//	   if (ready) { start(); }
//	*/
package clike

import (
	"github.com/bufbuild/reformat/format"
	"github.com/bufbuild/reformat/lang"
)

// Name is the language identifier of this pack.
const Name = "clike"

// Syntax describes the comments and directives of the language.
var Syntax = format.CommentSyntax{
	Line:      []string{"//"},
	Block:     [][2]string{{"/*", "*/"}},
	Directive: []string{"#"},
}

// Pack returns the language pack.
func Pack() *lang.Pack {
	return &lang.Pack{
		Name:       Name,
		Extensions: []string{".cl", ".clike"},
		Parse:      Parse,
		Rules:      Rules,
	}
}

// Rules returns the complete rules for the given options.
func Rules(opts format.Options) format.Rules {
	return format.Rules{
		Chain:      Chain(opts),
		Operations: Operations(),
		Trivia:     Syntax,
	}
}
