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

// Package mmark is a strict Markdown processor.
//
// Unlike permissive Markdown dialects, mmark commits to unambiguous
// interpretations of its input and rejects malformed documents with precise
// source locations rather than silently guessing. On top of a CommonMark-
// shaped core it adds a handful of author-oriented extensions: pipe tables,
// strikeout, subscript/superscript, YAML front matter, and an extension
// model that lets callers transform the AST or wrap the HTML renderer.
//
// Parsing is a two-phase process. The block parser first segments a
// document into block-level nodes, leaving inline content as unresolved
// spans; the inline parser then resolves each span against a table of
// link reference definitions. Both phases are pure functions of their
// input: there is no shared mutable state and no I/O.
package mmark
