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

import "gitlab.com/golang-commonmark/mdurl"

// URI is a resolved link or image destination. Parsing and normalization
// is delegated to [gitlab.com/golang-commonmark/mdurl], the reference-style
// URL parser from the golang-commonmark family, per spec.md §1's
// requirement that URI parsing be handled by an external collaborator
// rather than hand-rolled.
type URI struct {
	raw  string
	norm string
}

// parseURI parses and normalizes raw as a link/image destination. It never
// fails: per spec.md, destinations that don't look like a URI are still
// accepted verbatim (the grammar-level rejection happens earlier, in
// parseLinkDestination).
func parseURI(raw string) URI {
	norm := raw
	if u, err := mdurl.Parse(raw); err == nil {
		norm = mdurl.Encode(u.String())
	}
	return URI{raw: raw, norm: norm}
}

// String returns the normalized form of the URI, suitable for an href/src
// attribute.
func (u URI) String() string {
	return u.norm
}

// Raw returns the URI exactly as it appeared in the source.
func (u URI) Raw() string {
	return u.raw
}
