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

package token

import "fmt"

const (
	Unrecognized Kind = iota // Unrecognized garbage in the input file.

	Ident   // An identifier.
	Keyword // A reserved word, as decided by the lexer.
	Number  // A run of digits that is some kind of number.
	String  // A quoted string or character literal.
	Punct   // Some punctuation.
	EOF     // The zero-width token at the end of every stream.
)

// Kind identifies what kind of token a particular [Token] is.
type Kind byte

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case Unrecognized:
		return "Unrecognized"
	case Ident:
		return "Ident"
	case Keyword:
		return "Keyword"
	case Number:
		return "Number"
	case String:
		return "String"
	case Punct:
		return "Punct"
	case EOF:
		return "EOF"
	default:
		return fmt.Sprintf("token.Kind(%d)", int(k))
	}
}
