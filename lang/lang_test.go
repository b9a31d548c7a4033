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

package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reformat/lang"
)

func TestSet(t *testing.T) {
	t.Parallel()

	a := &lang.Pack{Name: "a", Extensions: []string{".a", ".AA"}}
	b := &lang.Pack{Name: "b", Extensions: []string{".b"}}
	set := lang.NewSet(b, a)

	assert.Equal(t, []string{"a", "b"}, set.Names())

	p, err := set.Lookup("b")
	require.NoError(t, err)
	assert.Same(t, b, p)

	_, err = set.Lookup("c")
	assert.ErrorContains(t, err, `unknown language "c" (known: a, b)`)

	for path, want := range map[string]*lang.Pack{
		"x.a":         a,
		"dir/X.A":     a,
		"dir/file.aa": a,
		"y.b":         b,
	} {
		p, err := set.ForPath(path)
		require.NoError(t, err, path)
		assert.Same(t, want, p, path)
	}

	_, err = set.ForPath("dir/noext")
	assert.ErrorContains(t, err, `no language for extension ""`)
}
