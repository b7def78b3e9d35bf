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

//go:generate stringer -type=BlockKind,InlineKind -output=kind_string.go

// BlockKind is a tag for the variants of [Block] described in spec.md §3.
type BlockKind uint8

const (
	ThematicBreakKind BlockKind = 1 + iota
	HeadingKind
	CodeBlockKind
	NakedKind
	ParagraphKind
	BlockquoteKind
	ListKind
	ListItemKind
	TableKind
)

// CellAlign is a pipe-table column alignment, per §3.
type CellAlign int

const (
	AlignDefault CellAlign = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// Block is a structural element of a parsed document. Block is a tagged
// union: only the fields relevant to Kind are populated. This is the
// payload-monomorphized rendering (spec.md §9 "Design Notes") of the
// generic Block<a> described in spec.md §3 -- after [Parse] returns,
// a = NonEmptySeq<Inline> for every leaf kind.
type Block struct {
	Kind BlockKind
	Span Span

	// Inlines holds the resolved inline content for HeadingKind,
	// NakedKind, and ParagraphKind.
	Inlines []*Inline
	// ParseErr is set instead of Inlines for a NakedKind or HeadingKind
	// block that records a block-level recovery (spec.md §3: "Naked" as
	// a recovery marker, §7 propagation policy).
	ParseErr *ParseError

	// Children holds nested blocks for BlockquoteKind and ListItemKind.
	Children []*Block

	// HeadingLevel is populated for HeadingKind, 1..6.
	HeadingLevel int

	// CodeInfo and CodeContent are populated for CodeBlockKind.
	CodeInfo    string
	HasCodeInfo bool
	CodeContent string

	// Ordered, ListStart, and Items are populated for ListKind.
	Ordered   bool
	ListStart uint32
	Items     [][]*Block
	Loose     bool

	// Aligns and Rows are populated for TableKind. Rows[0] is the header.
	Aligns []CellAlign
	Rows   [][][]*Inline
}

// InlineKind is a tag for the variants of [Inline] described in spec.md §3.
type InlineKind uint8

const (
	PlainKind InlineKind = 1 + iota
	LineBreakKind
	EmphasisKind
	StrongKind
	StrikeoutKind
	SubscriptKind
	SuperscriptKind
	CodeSpanKind
	LinkKind
	ImageKind
)

// Inline is a tagged union over the inline content variants in spec.md §3.
type Inline struct {
	Kind InlineKind
	Span Span

	// Text holds literal content for PlainKind and CodeSpanKind.
	Text string

	// Children holds nested inlines for EmphasisKind, StrongKind,
	// StrikeoutKind, SubscriptKind, SuperscriptKind, and the inner/alt
	// content of LinkKind/ImageKind.
	Children []*Inline

	// Dest and Title are populated for LinkKind and ImageKind.
	Dest     URI
	Title    string
	HasTitle bool
}

// PlainText concatenates the literal text of a run of inlines, descending
// into children, per spec.md §8's plain_text helper (used by header_id and
// by <img alt="...">).
func PlainText(inlines []*Inline) string {
	var out []byte
	for _, in := range inlines {
		out = appendPlainText(out, in)
	}
	return string(out)
}

func appendPlainText(dst []byte, in *Inline) []byte {
	if in == nil {
		return dst
	}
	switch in.Kind {
	case PlainKind, CodeSpanKind:
		return append(dst, in.Text...)
	case LineBreakKind:
		return append(dst, '\n')
	default:
		for _, c := range in.Children {
			dst = appendPlainText(dst, c)
		}
		return dst
	}
}
