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
	"bytes"
	"strings"
	"unicode/utf8"
)

// resolveBlocks is the second parsing phase: it walks a rawBlock tree,
// now that every reference-link definition in the document has been
// registered, and resolves each ISP (inline-span placeholder) into its
// final []*Inline content, producing the exported [Block] tree.
func resolveBlocks(raws []*rawBlock, p *docParser) []*Block {
	if len(raws) == 0 {
		return nil
	}
	out := make([]*Block, len(raws))
	for i, r := range raws {
		out[i] = resolveBlock(r, p)
	}
	return out
}

func resolveBlock(r *rawBlock, p *docParser) *Block {
	b := &Block{Kind: r.kind, Span: r.span}
	switch r.kind {
	case ThematicBreakKind:
		// no payload
	case HeadingKind:
		b.HeadingLevel = r.headingLevel
		if r.ispErr != nil {
			b.ParseErr = r.ispErr
			p.bundle.Errors = append(p.bundle.Errors, r.ispErr)
		} else {
			b.Inlines = parseInlineRun(r.ispText, r.ispOffset, p)
		}
	case CodeBlockKind:
		b.CodeInfo = r.codeInfo
		b.HasCodeInfo = r.hasCodeInfo
		b.CodeContent = r.codeContent
	case NakedKind, ParagraphKind:
		if r.ispErr != nil {
			b.ParseErr = r.ispErr
			p.bundle.Errors = append(p.bundle.Errors, r.ispErr)
		} else {
			b.Inlines = parseInlineRun(r.ispText, r.ispOffset, p)
		}
	case BlockquoteKind:
		b.Children = resolveBlocks(r.children, p)
	case ListKind:
		b.Ordered = r.ordered
		b.ListStart = r.listStart
		b.Loose = r.loose
		b.Items = make([][]*Block, len(r.items))
		for i, item := range r.items {
			b.Items[i] = resolveBlocks(item, p)
		}
	case TableKind:
		b.Aligns = r.aligns
		b.Rows = make([][][]*Inline, len(r.rows))
		for i, row := range r.rows {
			cells := make([][]*Inline, len(row))
			for j, cell := range row {
				cells[j] = parseInlineRun(cell.text, cell.offset, p)
			}
			b.Rows[i] = cells
		}
	}
	return b
}

// delimMatch records one resolved emphasis/strong/strikeout/subscript/
// superscript pairing, by index into the flat token slice produced by
// tokenizeInline. A single delimiter run can produce more than one pairing
// against the same opener/closer pair (e.g. "***x***" yields a Strong
// pairing and an Emphasis pairing out of the same two runs); nested holds
// the pairing closer to the content, which wraps the range's real content
// and is itself wrapped by this one.
type delimMatch struct {
	openIdx, closeIdx int
	kind              InlineKind
	span              Span
	nested            *delimMatch
}

type delimStackEntry struct {
	idx               int
	char              byte
	count             int
	canOpen, canClose bool
	active            bool
}

// parseInlineRun resolves the inline grammar of §4.3 over text (an ISP
// drawn from source at absolute offset off), producing a flat, properly
// nested []*Inline.
func parseInlineRun(text string, off int, p *docParser) []*Inline {
	out, stack := tokenizeInline(text, off, p)
	matches := matchDelimiters(out, stack)
	mi := 0
	return buildInlineRange(out, matches, &mi, 0, len(out))
}

func buildInlineRange(out []*Inline, matches []delimMatch, mi *int, lo, hi int) []*Inline {
	var result []*Inline
	cursor := lo
	for *mi < len(matches) && matches[*mi].openIdx < hi {
		m := matches[*mi]
		result = append(result, out[cursor:m.openIdx]...)
		if out[m.openIdx].Text != "" {
			result = append(result, out[m.openIdx])
		}
		*mi++
		children := buildInlineRange(out, matches, mi, m.openIdx+1, m.closeIdx)
		result = append(result, wrapNestedMatch(&m, children))
		if out[m.closeIdx].Text != "" {
			result = append(result, out[m.closeIdx])
		}
		cursor = m.closeIdx + 1
	}
	result = append(result, out[cursor:hi]...)
	return result
}

// matchDelimiters pairs emphasis-family delimiter runs per §4.3's
// flanking rules, via the standard nearest-active-opener scan. Per §4.3's
// double-frame closing rule, a closer keeps pairing against the nearest
// remaining active opener — trying the double frame before the single
// frame, per character, the way "try double-frames before single-frames"
// specifies — until one side's run is exhausted, so "***x***" yields two
// pairings (Strong, then Emphasis) out of the same two three-wide runs
// instead of just one. It does not implement CommonMark's "multiple of 3"
// exception; see DESIGN.md.
func matchDelimiters(out []*Inline, stack []delimStackEntry) []delimMatch {
	var matches []delimMatch
	for ci := range stack {
		closer := &stack[ci]
		if !closer.active || !closer.canClose {
			continue
		}
		var outer *delimMatch
		tail := &outer
		for closer.active && closer.canClose && closer.count > 0 {
			oi := -1
			for j := ci - 1; j >= 0; j-- {
				if stack[j].active && stack[j].canOpen && stack[j].char == closer.char && stack[j].count > 0 {
					oi = j
					break
				}
			}
			if oi < 0 {
				break
			}
			opener := &stack[oi]
			consume := 1
			if closer.char != '^' && opener.count >= 2 && closer.count >= 2 {
				consume = 2
			}
			openNode := out[opener.idx]
			closeNode := out[closer.idx]
			openNode.Text = openNode.Text[:len(openNode.Text)-consume]
			closeNode.Text = closeNode.Text[consume:]
			next := &delimMatch{
				openIdx:  opener.idx,
				closeIdx: closer.idx,
				kind:     emphasisKindFor(closer.char, consume),
				span:     Span{openNode.Span.End, closeNode.Span.Start + consume},
			}
			*tail = next
			tail = &next.nested
			opener.count -= consume
			closer.count -= consume
			if opener.count == 0 {
				opener.active = false
			}
			if closer.count == 0 {
				closer.active = false
			}
		}
		if outer != nil {
			matches = append(matches, *outer)
		}
	}
	sortMatchesByOpenIdx(matches)
	return matches
}

// wrapNestedMatch builds the Inline node for m, wrapping any deeper
// pairing on the same run (m.nested) around innerChildren instead of
// m.nested's own gap content, which is empty for a same-run pairing.
func wrapNestedMatch(m *delimMatch, innerChildren []*Inline) *Inline {
	if m.nested == nil {
		return &Inline{Kind: m.kind, Children: innerChildren, Span: m.span}
	}
	return &Inline{Kind: m.kind, Children: []*Inline{wrapNestedMatch(m.nested, innerChildren)}, Span: m.span}
}

func sortMatchesByOpenIdx(matches []delimMatch) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j-1].openIdx > matches[j].openIdx; j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}
}

func emphasisKindFor(char byte, width int) InlineKind {
	switch char {
	case '*', '_':
		if width >= 2 {
			return StrongKind
		}
		return EmphasisKind
	case '~':
		if width >= 2 {
			return StrikeoutKind
		}
		return SubscriptKind
	default: // '^'
		return SuperscriptKind
	}
}

// computeFlanking implements §4.3's flanking-delimiter-run rule, plus
// CommonMark's additional restriction on '_': a run that is both left-
// and right-flanking can only open if preceded by punctuation, and can
// only close if followed by punctuation (this is what keeps
// "_foo_bar" from emphasizing across a word boundary).
func computeFlanking(char byte, before, after charClass) (canOpen, canClose bool) {
	leftFlanking := after != classSpace && (after != classPunct || before <= classPunct)
	rightFlanking := before != classSpace && (before != classPunct || after <= classPunct)
	canOpen, canClose = leftFlanking, rightFlanking
	if char == '_' && leftFlanking && rightFlanking {
		canOpen = before == classPunct
		canClose = after == classPunct
	}
	return
}

func classAt(text string, i int) charClass {
	if i < 0 || i >= len(text) {
		return runeClass(0, true)
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return runeClass(r, false)
}

// tokenizeInline scans text into a flat sequence of resolved Inline
// nodes (plain text, code spans, autolinks, links, images, line breaks)
// plus a parallel delimiter stack describing the still-unresolved
// emphasis-family placeholders among them.
func tokenizeInline(text string, off int, p *docParser) ([]*Inline, []delimStackEntry) {
	var out []*Inline
	var stack []delimStackEntry
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text) && text[i+1] == '\n':
			out = append(out, &Inline{Kind: LineBreakKind, Span: Span{off + i, off + i + 2}})
			i += 2
		case c == '\\' && i+1 < len(text) && isASCIIPunct(text[i+1]):
			appendPlainInline(&out, string(text[i+1]), off+i)
			i += 2
		case c == ' ' && trailingHardBreak(text, i):
			n := countTrailingSpaces(text, i)
			out = append(out, &Inline{Kind: LineBreakKind, Span: Span{off + i, off + i + n + 1}})
			i += n + 1
		case c == '`':
			node, consumed, ok := scanCodeSpan(text, i, off)
			if ok {
				out = append(out, node)
				i += consumed
				continue
			}
			appendPlainInline(&out, "`", off+i)
			i++
		case c == '<':
			node, consumed, ok := scanAutolink(text, i, off)
			if ok {
				out = append(out, node)
				i += consumed
				continue
			}
			appendPlainInline(&out, "<", off+i)
			i++
		case c == '!' && i+1 < len(text) && text[i+1] == '[':
			node, consumed, ok := scanLinkOrImage(text, i+1, off, true, p)
			if ok {
				out = append(out, node)
				i += 1 + consumed
				continue
			}
			appendPlainInline(&out, "!", off+i)
			i++
		case c == '[':
			node, consumed, ok := scanLinkOrImage(text, i, off, false, p)
			if ok {
				out = append(out, node)
				i += consumed
				continue
			}
			appendPlainInline(&out, "[", off+i)
			i++
		case c == '&':
			decoded, n, ok, err := decodeReference(text[i:])
			if err != nil {
				p.bundle.add(p.fileName, p.src, off+i, err.(MMarkErr))
				appendPlainInline(&out, "&", off+i)
				i++
				continue
			}
			if ok {
				appendPlainInline(&out, decoded, off+i)
				i += n
				continue
			}
			appendPlainInline(&out, "&", off+i)
			i++
		case isFrameChar(c):
			n := 1
			for i+n < len(text) && text[i+n] == c {
				n++
			}
			before := classAt(text, i-1)
			after := classAt(text, i+n)
			canOpen, canClose := computeFlanking(c, before, after)
			node := &Inline{Kind: PlainKind, Text: text[i : i+n], Span: Span{off + i, off + i + n}}
			out = append(out, node)
			if canOpen || canClose {
				stack = append(stack, delimStackEntry{
					idx: len(out) - 1, char: c, count: n,
					canOpen: canOpen, canClose: canClose, active: true,
				})
			} else {
				p.bundle.add(p.fileName, p.src, off+i, &errNonFlankingDelimiterRun{Chars: text[i : i+n]})
			}
			i += n
		default:
			start := i
			for i < len(text) && !isDispatchSpecial(text[i]) {
				i++
			}
			if i == start {
				i++
			}
			appendPlainInline(&out, text[start:i], off+start)
		}
	}
	return out, stack
}

func isDispatchSpecial(b byte) bool {
	if isFrameChar(b) {
		return true
	}
	switch b {
	case '\\', '`', '<', '[', '!', '&', ' ':
		return true
	}
	return false
}

// trailingHardBreak reports whether the run of spaces starting at i is
// a hard line break: 2+ trailing spaces immediately before a newline.
func trailingHardBreak(text string, i int) bool {
	n := countTrailingSpaces(text, i)
	return n >= 2 && i+n < len(text) && text[i+n] == '\n'
}

func countTrailingSpaces(text string, i int) int {
	n := 0
	for i+n < len(text) && text[i+n] == ' ' {
		n++
	}
	return n
}

func appendPlainInline(out *[]*Inline, text string, offset int) {
	if text == "" {
		return
	}
	// A node made only of frame characters is a delimiter-run placeholder
	// whose text matchDelimiters trims from its ends, so it is never extended.
	if n := len(*out); n > 0 && (*out)[n-1].Kind == PlainKind && strings.Trim((*out)[n-1].Text, "*^_~") != "" {
		(*out)[n-1].Text += text
		(*out)[n-1].Span.End = offset + len(text)
		return
	}
	*out = append(*out, &Inline{Kind: PlainKind, Text: text, Span: Span{offset, offset + len(text)}})
}

// scanCodeSpan parses a backtick-delimited code span at text[i:], per
// §4.3: the closing run must have exactly as many backticks as the
// opening run; content whitespace is collapsed per §4.1.
func scanCodeSpan(text string, i, off int) (*Inline, int, bool) {
	n := 0
	for i+n < len(text) && text[i+n] == '`' {
		n++
	}
	searchFrom := i + n
	for j := searchFrom; j < len(text); j++ {
		if text[j] != '`' {
			continue
		}
		k := j
		for k < len(text) && text[k] == '`' {
			k++
		}
		if k-j == n {
			content := collapseWhitespace(text[searchFrom:j])
			return &Inline{Kind: CodeSpanKind, Text: content, Span: Span{off + i, off + k}}, k - i, true
		}
		j = k - 1
	}
	return nil, 0, false
}

// scanAutolink parses "<scheme:...>"  or "<user@host>" at text[i:], per
// §4.3. Bare email content is validated via [isValidEmail] and prefixed
// with "mailto:".
func scanAutolink(text string, i, off int) (*Inline, int, bool) {
	j := i + 1
	for j < len(text) && text[j] != '>' && text[j] != '<' && text[j] != ' ' && text[j] != '\n' && text[j] != '\t' {
		j++
	}
	if j >= len(text) || text[j] != '>' {
		return nil, 0, false
	}
	inner := text[i+1 : j]
	if inner == "" {
		return nil, 0, false
	}
	var dest string
	switch {
	case looksLikeScheme(inner):
		dest = inner
	case isValidEmail(inner):
		dest = "mailto:" + inner
	default:
		return nil, 0, false
	}
	node := &Inline{
		Kind: LinkKind,
		Dest: parseURI(dest),
		Children: []*Inline{{
			Kind: PlainKind, Text: inner, Span: Span{off + i + 1, off + j},
		}},
		Span: Span{off + i, off + j + 1},
	}
	return node, j + 1 - i, true
}

func looksLikeScheme(s string) bool {
	colon := strings.IndexByte(s, ':')
	if colon < 2 || colon > 32 {
		return false
	}
	scheme := s[:colon]
	if !((scheme[0] >= 'a' && scheme[0] <= 'z') || (scheme[0] >= 'A' && scheme[0] <= 'Z')) {
		return false
	}
	for _, c := range []byte(scheme[1:]) {
		if !(isASCIIDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	for _, c := range []byte(s[colon+1:]) {
		if c <= 0x20 || c == '<' || c == '>' {
			return false
		}
	}
	return true
}

// scanLinkOrImage parses a "[label]" followed by an inline, full
// reference, collapsed reference, or shortcut reference resolution, per
// §4.2/§4.3. text[open] is the '[' that begins the bracketed label.
func scanLinkOrImage(text string, open, off int, isImage bool, p *docParser) (*Inline, int, bool) {
	closeIdx, ok := findMatchingBracket(text, open)
	if !ok {
		return nil, 0, false
	}
	label := text[open+1 : closeIdx]
	dest, title, hasTitle, extra, resolved := resolveLinkTarget(text, off, closeIdx, label, p)
	if !resolved {
		return nil, 0, false
	}
	children := parseInlineRun(label, off+open+1, p)
	kind := LinkKind
	if isImage {
		kind = ImageKind
	}
	end := closeIdx + 1 + extra
	node := &Inline{
		Kind: kind, Dest: dest, Title: title, HasTitle: hasTitle,
		Children: children, Span: Span{off + open, off + end},
	}
	return node, end - open, true
}

// findMatchingBracket scans forward from text[open]=='[' for the
// balanced, unescaped ']' that closes it, treating backtick code spans
// as opaque so that ']' inside one doesn't confuse matching.
func findMatchingBracket(text string, open int) (int, bool) {
	depth := 0
	i := open + 1
	for i < len(text) {
		switch {
		case text[i] == '\\' && i+1 < len(text):
			i += 2
		case text[i] == '`':
			n := 0
			for i+n < len(text) && text[i+n] == '`' {
				n++
			}
			j := i + n
			found := false
			for j < len(text) {
				if text[j] == '`' {
					k := j
					for k < len(text) && text[k] == '`' {
						k++
					}
					if k-j == n {
						i = k
						found = true
						break
					}
					j = k
					continue
				}
				j++
			}
			if !found {
				i += n
			}
		case text[i] == '[':
			depth++
			i++
		case text[i] == ']':
			if depth == 0 {
				return i, true
			}
			depth--
			i++
		default:
			i++
		}
	}
	return 0, false
}

// resolveLinkTarget resolves a bracketed label's destination/title via
// the inline, full-reference, collapsed-reference, or shortcut-reference
// forms, per §4.2/§4.3. It raises CouldNotFindReferenceDefinition on a
// reference-form lookup miss.
func resolveLinkTarget(text string, off, closeIdx int, label string, p *docParser) (dest URI, title string, hasTitle bool, extra int, ok bool) {
	after := text[closeIdx+1:]

	if len(after) > 0 && after[0] == '(' {
		rest := []byte(after[1:])
		rest = bytes.TrimLeft(rest, " \t\n")
		var destStr string
		if len(rest) > 0 && rest[0] != ')' {
			d, r2, ok2 := parseLinkDestination(rest)
			if ok2 {
				destStr, rest = d, r2
				rest = bytes.TrimLeft(rest, " \t\n")
				var titleStr string
				hasT := false
				if len(rest) > 0 && rest[0] != ')' {
					if t, r3, ok3 := parseLinkTitle(rest); ok3 {
						titleStr, hasT = t, true
						rest = bytes.TrimLeft(r3, " \t\n")
					}
				}
				if len(rest) > 0 && rest[0] == ')' {
					closingPos := len(after) - 1 - len(rest)
					return parseURI(destStr), titleStr, hasT, closingPos + 1 + 1, true
				}
			}
		} else if len(rest) > 0 && rest[0] == ')' {
			closingPos := len(after) - 1 - len(rest)
			return parseURI(""), "", false, closingPos + 1 + 1, true
		}
	}

	normLabel := label
	if len(after) > 0 && after[0] == '[' {
		end := strings.IndexByte(after[1:], ']')
		if end >= 0 {
			ref := after[1 : 1+end]
			if ref == "" {
				ref = normLabel
			}
			if def, found := p.refs.lookup(ref); found {
				return def.Dest, def.Title, def.HasTitle, 1 + end + 1, true
			}
			p.bundle.add(p.fileName, p.src, off+closeIdx, &errCouldNotFindReferenceDefinition{
				Label: ref, Nearest: p.refs.nearestLabels(ref),
			})
			return URI{}, "", false, 0, false
		}
	}

	if def, found := p.refs.lookup(normLabel); found {
		return def.Dest, def.Title, def.HasTitle, 0, true
	}
	p.bundle.add(p.fileName, p.src, off+closeIdx, &errCouldNotFindReferenceDefinition{
		Label: normLabel, Nearest: p.refs.nearestLabels(normLabel),
	})
	return URI{}, "", false, 0, false
}
