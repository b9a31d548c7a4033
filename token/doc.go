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

// Package token provides the token stream the formatter operates on.
//
// A [Stream] holds only semantic tokens. The text between two tokens is
// their gap, and contains all of the trivia (whitespace, comments,
// directives) of the file. Every stream ends in a zero-width [EOF] token, so
// that every gap, including the one at the end of the file, is the leading
// trivia of exactly one token.
package token
