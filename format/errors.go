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
	"errors"
	"fmt"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/source"
)

// ErrInvalidSpan is matched (via [errors.Is]) by the error [Format] returns
// when the requested span does not lie within the tree being formatted.
var ErrInvalidSpan = errors.New("invalid formatting span")

// SpanError is returned for a span outside of the tree's bounds.
type SpanError struct {
	Span  source.Span // The requested span.
	Range source.Span // The range that was being formatted.
}

// Error implements [error].
func (e *SpanError) Error() string {
	return fmt.Sprintf("%v: [%d:%d] is not within [%d:%d]",
		ErrInvalidSpan, e.Span.Start, e.Span.End, e.Range.Start, e.Range.End)
}

// Is makes SpanError match [ErrInvalidSpan].
func (e *SpanError) Is(target error) bool {
	return target == ErrInvalidSpan
}

// Fault records a rule or operation producer that failed during a run.
//
// Faults are not errors of the run: the affected node or gap falls back to
// keeping its original layout, and formatting continues. They are reported
// through [Result.Faults] so that rule authors can find them.
type Fault struct {
	// Where the fault happened: a node's span, or the gap being decided.
	Span source.Span
	// The node whose operations failed, or nil for rule faults.
	Node *ast.Node
	Err  error
}

// Error implements [error].
func (f *Fault) Error() string {
	loc := f.Span.StartLoc()
	if f.Node != nil {
		return fmt.Sprintf("%s:%d:%d: operations for %v failed: %v", f.Span.Path(), loc.Line, loc.Column, f.Node.Kind, f.Err)
	}
	return fmt.Sprintf("%s:%d:%d: rule failed: %v", f.Span.Path(), loc.Line, loc.Column, f.Err)
}

// Unwrap returns the underlying error.
func (f *Fault) Unwrap() error {
	return f.Err
}

// panicError converts a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
