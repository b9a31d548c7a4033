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

// Package lang assembles the languages a caller wants to format.
//
// There is no global registry: a caller builds a [Set] from the packs it
// wants, and passes it wherever a language must be chosen.
package lang

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bufbuild/reformat/ast"
	"github.com/bufbuild/reformat/format"
	"github.com/bufbuild/reformat/source"
)

// Pack is everything the formatter needs to know about one language.
type Pack struct {
	// The language identifier, e.g. "clike".
	Name string
	// File extensions, including the dot, e.g. ".cl".
	Extensions []string

	// Parses a file into a tree.
	Parse func(file *source.File) (*ast.Tree, error)
	// Returns the rules to format with. Rules may depend on options, such as
	// a brace style.
	Rules func(opts format.Options) format.Rules
}

// Set is a collection of language packs.
type Set struct {
	packs []*Pack
	byExt map[string]*Pack
}

// NewSet builds a set out of packs. Later packs take precedence for
// extensions claimed more than once.
func NewSet(packs ...*Pack) *Set {
	s := &Set{byExt: make(map[string]*Pack)}
	for _, p := range packs {
		s.packs = append(s.packs, p)
		for _, ext := range p.Extensions {
			s.byExt[strings.ToLower(ext)] = p
		}
	}
	return s
}

// Names returns the names of all languages in this set, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.packs))
	for _, p := range s.packs {
		names = append(names, p.Name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the pack with the given name.
func (s *Set) Lookup(name string) (*Pack, error) {
	for _, p := range s.packs {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown language %q (known: %s)", name, strings.Join(s.Names(), ", "))
}

// ForPath returns the pack for a file, by its extension.
func (s *Set) ForPath(path string) (*Pack, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if p := s.byExt[ext]; p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%s: no language for extension %q", path, ext)
}
