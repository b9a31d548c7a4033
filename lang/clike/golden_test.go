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

package clike_test

import (
	"context"
	"strings"
	"testing"

	"github.com/bufbuild/reformat/format"
	"github.com/bufbuild/reformat/internal/golden"
	"github.com/bufbuild/reformat/lang/clike"
	"github.com/bufbuild/reformat/source"
)

// goldenCase is the YAML schema of the files in testdata.
type goldenCase struct {
	Options struct {
		IndentSize int            `yaml:"indent_size"`
		TabSize    int            `yaml:"tab_size"`
		UseTabs    bool           `yaml:"use_tabs"`
		Values     map[string]any `yaml:"values"`
	} `yaml:"options"`

	// Byte offsets of the span to format. Empty means the whole file.
	Range []int `yaml:"range"`

	Input string `yaml:"input"`
}

func TestGolden(t *testing.T) {
	t.Parallel()

	corpus := golden.Corpus{
		Root:      "testdata",
		Refresh:   "REFORMAT_REFRESH",
		Extension: "yaml",
		Outputs: []golden.Output{
			{Extension: "out"},
			{Extension: "err"},
		},
		Test: func(t *testing.T, path, text string) []string {
			var c goldenCase
			golden.Decode(t, text, &c)

			opts := format.Options{
				IndentSize: c.Options.IndentSize,
				TabSize:    c.Options.TabSize,
				UseTabs:    c.Options.UseTabs,
				Values:     c.Options.Values,
			}

			file := source.NewFile(path, c.Input)
			tree, err := clike.Parse(file)
			if err != nil {
				return []string{"", err.Error() + "\n"}
			}

			var span source.Span
			if len(c.Range) == 2 {
				span = file.Span(c.Range[0], c.Range[1])
			}
			result, err := format.Format(context.Background(), tree, clike.Rules(opts), opts, span)
			if err != nil {
				return []string{"", err.Error() + "\n"}
			}

			var faults strings.Builder
			for _, f := range result.Faults() {
				faults.WriteString(f.Error())
				faults.WriteByte('\n')
			}
			return []string{result.FormattedText(), faults.String()}
		},
	}
	corpus.Run(t)
}
