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

import (
	"fmt"
	"html"
	"strings"
)

// Html is the accumulated output buffer a [Render] layer reads and
// extends. It is a thin wrapper over a *strings.Builder: copies of an Html
// share the same underlying buffer, so every renderer layer appends to the
// one document being built.
type Html struct {
	sb *strings.Builder
}

// NewHtml returns an empty Html buffer.
func NewHtml() Html {
	return Html{sb: &strings.Builder{}}
}

func (h Html) WriteString(s string) Html {
	if h.sb == nil {
		h.sb = &strings.Builder{}
	}
	h.sb.WriteString(s)
	return h
}

func (h Html) WriteEscaped(s string) Html {
	return h.WriteString(html.EscapeString(s))
}

func (h Html) String() string {
	if h.sb == nil {
		return ""
	}
	return h.sb.String()
}

// Render is a layer of the renderer, per spec.md §6/§9: given a node and
// the Html accumulated so far, it returns the Html with this layer's
// contribution appended. Composing two Renders is function composition
// with the law (f⊕g)(t, h) = g(t, f(t, h)): f's output becomes g's input.
type Render[T any] struct {
	Apply func(t T, h Html) Html
}

// IdentityRender is the identity element of Render composition.
func IdentityRender[T any]() Render[T] {
	return Render[T]{Apply: func(_ T, h Html) Html { return h }}
}

func (r Render[T]) Compose(other Render[T]) Render[T] {
	return Render[T]{Apply: func(t T, h Html) Html {
		return other.Apply(t, r.Apply(t, h))
	}}
}

// RenderHTML renders blocks to an HTML string, applying ext's
// transforms and layering ext's renderers over the default rendering
// described in §4.5. Extension renderer layers see the tree after
// ext's BlockTrans/InlineTrans have run.
func RenderHTML(blocks []*Block, ext Extension) string {
	blocks = applyBlockTrans(blocks, ext.BlockTrans)
	for _, b := range blocks {
		rewriteInlinesInBlock(b, ext.InlineTrans)
	}

	var full Extension
	base := Extension{
		BlockRender: Render[*Block]{Apply: func(b *Block, h Html) Html {
			return renderBlockDefault(b, &full, h)
		}},
		InlineRender: Render[*Inline]{Apply: func(in *Inline, h Html) Html {
			return renderInlineDefault(in, &full, h)
		}},
	}
	full = base.Compose(ext)

	h := NewHtml()
	for _, b := range blocks {
		h = full.BlockRender.Apply(b, h)
	}
	return h.String()
}

func rewriteInlinesInBlock(b *Block, f InlineTrans) {
	b.Inlines = applyInlineTrans(b.Inlines, f)
	for _, c := range b.Children {
		rewriteInlinesInBlock(c, f)
	}
	for _, item := range b.Items {
		for _, c := range item {
			rewriteInlinesInBlock(c, f)
		}
	}
	for _, row := range b.Rows {
		for i, cell := range row {
			row[i] = applyInlineTrans(cell, f)
		}
	}
}

// renderBlockDefault is the base block renderer described in §4.5: the
// first layer composed into every [Extension], so that extensions added
// via [UseExtension] see it as "h" and can wrap or append to it.
func renderBlockDefault(b *Block, full *Extension, h Html) Html {
	switch b.Kind {
	case ThematicBreakKind:
		// §4.5 writes this literally as "<hr/>"; the space before the
		// slash matches CommonMark reference-renderer output instead.
		return h.WriteString("<hr />\n")
	case HeadingKind:
		id := headerID(PlainText(b.Inlines))
		h = h.WriteString(fmt.Sprintf("<h%d id=\"%s\">", b.HeadingLevel, id))
		h = renderInlineSeq(b.Inlines, full, h)
		return h.WriteString(fmt.Sprintf("</h%d>\n", b.HeadingLevel))
	case CodeBlockKind:
		h = h.WriteString("<pre><code")
		if b.HasCodeInfo {
			lang := strings.Fields(b.CodeInfo)
			if len(lang) > 0 {
				h = h.WriteString(" class=\"language-").WriteEscaped(lang[0]).WriteString("\"")
			}
		}
		h = h.WriteString(">").WriteEscaped(b.CodeContent)
		return h.WriteString("</code></pre>\n")
	case NakedKind:
		return renderInlineSeq(b.Inlines, full, h)
	case ParagraphKind:
		h = h.WriteString("<p>")
		h = renderInlineSeq(b.Inlines, full, h)
		return h.WriteString("</p>\n")
	case BlockquoteKind:
		h = h.WriteString("<blockquote>\n")
		for _, c := range b.Children {
			h = full.BlockRender.Apply(c, h)
		}
		return h.WriteString("</blockquote>\n")
	case ListKind:
		tag := "ul"
		if b.Ordered {
			tag = "ol"
		}
		h = h.WriteString("<" + tag)
		if b.Ordered && b.ListStart != 1 {
			h = h.WriteString(fmt.Sprintf(" start=\"%d\"", b.ListStart))
		}
		h = h.WriteString(">\n")
		for _, item := range b.Items {
			h = h.WriteString("<li>")
			for _, c := range item {
				h = full.BlockRender.Apply(c, h)
			}
			h = h.WriteString("</li>\n")
		}
		return h.WriteString("</" + tag + ">\n")
	case TableKind:
		return renderTable(b, full, h)
	}
	return h
}

func renderTable(b *Block, full *Extension, h Html) Html {
	h = h.WriteString("<table>\n<thead>\n<tr>\n")
	for i, cell := range b.Rows[0] {
		align := alignOf(b.Aligns, i)
		h = h.WriteString("<th" + align + ">")
		h = renderInlineSeq(cell, full, h)
		h = h.WriteString("</th>\n")
	}
	h = h.WriteString("</tr>\n</thead>\n")
	if len(b.Rows) > 1 {
		h = h.WriteString("<tbody>\n")
		for _, row := range b.Rows[1:] {
			h = h.WriteString("<tr>\n")
			for i, cell := range row {
				align := alignOf(b.Aligns, i)
				h = h.WriteString("<td" + align + ">")
				h = renderInlineSeq(cell, full, h)
				h = h.WriteString("</td>\n")
			}
			h = h.WriteString("</tr>\n")
		}
		h = h.WriteString("</tbody>\n")
	}
	return h.WriteString("</table>\n")
}

func alignOf(aligns []CellAlign, i int) string {
	if i >= len(aligns) {
		return ""
	}
	switch aligns[i] {
	case AlignLeft:
		return " align=\"left\""
	case AlignRight:
		return " align=\"right\""
	case AlignCenter:
		return " align=\"center\""
	default:
		return ""
	}
}

func renderInlineSeq(inlines []*Inline, full *Extension, h Html) Html {
	for _, in := range inlines {
		h = full.InlineRender.Apply(in, h)
	}
	return h
}

// renderInlineDefault is the base inline renderer described in §4.5.
func renderInlineDefault(in *Inline, full *Extension, h Html) Html {
	switch in.Kind {
	case PlainKind:
		return h.WriteEscaped(in.Text)
	case LineBreakKind:
		// Same CommonMark-reference-style spacing deviation as <hr />, above.
		return h.WriteString("<br />\n")
	case EmphasisKind:
		h = h.WriteString("<em>")
		h = renderInlineSeq(in.Children, full, h)
		return h.WriteString("</em>")
	case StrongKind:
		h = h.WriteString("<strong>")
		h = renderInlineSeq(in.Children, full, h)
		return h.WriteString("</strong>")
	case StrikeoutKind:
		h = h.WriteString("<del>")
		h = renderInlineSeq(in.Children, full, h)
		return h.WriteString("</del>")
	case SubscriptKind:
		h = h.WriteString("<sub>")
		h = renderInlineSeq(in.Children, full, h)
		return h.WriteString("</sub>")
	case SuperscriptKind:
		h = h.WriteString("<sup>")
		h = renderInlineSeq(in.Children, full, h)
		return h.WriteString("</sup>")
	case CodeSpanKind:
		return h.WriteString("<code>").WriteEscaped(in.Text).WriteString("</code>")
	case LinkKind:
		h = h.WriteString("<a href=\"").WriteEscaped(in.Dest.String()).WriteString("\"")
		if in.HasTitle {
			h = h.WriteString(" title=\"").WriteEscaped(in.Title).WriteString("\"")
		}
		h = h.WriteString(">")
		h = renderInlineSeq(in.Children, full, h)
		return h.WriteString("</a>")
	case ImageKind:
		h = h.WriteString("<img src=\"").WriteEscaped(in.Dest.String()).WriteString("\"")
		h = h.WriteString(" alt=\"").WriteEscaped(PlainText(in.Children)).WriteString("\"")
		if in.HasTitle {
			h = h.WriteString(" title=\"").WriteEscaped(in.Title).WriteString("\"")
		}
		return h.WriteString(" />")
	}
	return h
}

// headerID computes an ATX heading's "id" attribute per §4.5: lowercase
// the plain text, trim, collapse whitespace runs to a single '-', and
// drop characters outside [a-z0-9-_].
func headerID(plain string) string {
	lower := strings.ToLower(strings.TrimSpace(plain))
	var sb strings.Builder
	inSpace := false
	for _, r := range lower {
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			inSpace = true
		case r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if inSpace && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			inSpace = false
			sb.WriteRune(r)
		default:
			// dropped
		}
	}
	return sb.String()
}
