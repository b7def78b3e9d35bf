// Copyright 2024 The mmark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mmark

import "sort"

// ReferenceDefinition is the destination/title pair a reference-link
// definition registers under its normalized label.
type ReferenceDefinition struct {
	Dest     URI
	Title    string
	HasTitle bool
}

// ReferenceTable is a case-insensitive mapping from normalized link label
// (see normalizeLabel) to its definition, per §3.
type ReferenceTable struct {
	defs map[string]ReferenceDefinition
	// order preserves first-definition-wins source order for suggestion
	// ranking; insertion order is otherwise semantically irrelevant.
	order []string
}

func newReferenceTable() *ReferenceTable {
	return &ReferenceTable{defs: make(map[string]ReferenceDefinition)}
}

// define registers label -> def. It reports whether label was already
// defined (the caller should raise DuplicateReferenceDefinition and keep
// the first definition, per §4.2).
func (t *ReferenceTable) define(label string, def ReferenceDefinition) (dup bool) {
	norm := normalizeLabel(label)
	if norm == "" {
		return false
	}
	if _, exists := t.defs[norm]; exists {
		return true
	}
	t.defs[norm] = def
	t.order = append(t.order, norm)
	return false
}

// lookup resolves a (already-normalized-on-call) label.
func (t *ReferenceTable) lookup(label string) (ReferenceDefinition, bool) {
	def, ok := t.defs[normalizeLabel(label)]
	return def, ok
}

// nearestLabels returns up to 3 defined labels closest to label by edit
// distance, per §4.2/§7 ("compute edit distance to each defined label and
// return the best 3"). No third-party string-distance library appears
// anywhere in the example pack, so this one small helper is hand-rolled;
// see DESIGN.md.
func (t *ReferenceTable) nearestLabels(label string) []string {
	norm := normalizeLabel(label)
	type scored struct {
		label string
		dist  int
	}
	scoredLabels := make([]scored, 0, len(t.order))
	for _, l := range t.order {
		scoredLabels = append(scoredLabels, scored{label: l, dist: levenshtein(norm, l)})
	}
	sort.SliceStable(scoredLabels, func(i, j int) bool {
		return scoredLabels[i].dist < scoredLabels[j].dist
	})
	n := 3
	if n > len(scoredLabels) {
		n = len(scoredLabels)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = scoredLabels[i].label
	}
	return out
}

// levenshtein computes the Levenshtein edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = minInt(del, minInt(ins, sub))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
