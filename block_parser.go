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
)

// rawBlock is a block before its inline spans are resolved: the second
// pass (resolveBlocks, in inline_parser.go) walks this tree and produces
// the exported [Block] tree, once every reference-link definition in the
// document is known. This is the ISP (inline-span placeholder) mechanism
// of spec.md §2/§4: block structure is fully determined first, and
// inline content is deferred.
type rawBlock struct {
	kind BlockKind
	span Span

	ispText   string
	ispOffset int
	ispErr    *ParseError

	children []*rawBlock

	headingLevel int

	codeInfo    string
	hasCodeInfo bool
	codeContent string

	ordered   bool
	listStart uint32
	items     [][]*rawBlock
	loose     bool

	aligns []CellAlign
	rows   [][]rawCell
}

type rawCell struct {
	text   string
	offset int
}

// workLine is one line of input as seen at the current container nesting
// level: content is a contiguous suffix of the original physical line
// (any enclosing blockquote/list-item prefixes already stripped), and
// offset is the absolute byte offset in the source where content begins.
type workLine struct {
	offset  int
	content []byte
}

// docParser holds the state shared across one document's block parse.
type docParser struct {
	src      []byte
	fileName string
	bundle   *ParseErrorBundle
	refs     *ReferenceTable
}

// makeWorkLines splits src[start:end] into physical lines, carrying
// absolute byte offsets.
func makeWorkLines(src []byte, start, end int) []workLine {
	var lines []workLine
	i := start
	for i < end {
		j := i
		for j < end && src[j] != '\n' {
			j++
		}
		content := src[i:j]
		content = bytes.TrimSuffix(content, []byte{'\r'})
		lines = append(lines, workLine{offset: i, content: content})
		i = j + 1
	}
	return lines
}

func (p *docParser) parseBody(src []byte, start, end int) []*rawBlock {
	lines := makeWorkLines(src, start, end)
	blocks, _ := p.parseBlockSeq(lines)
	return blocks
}

func skipBlankLines(lines []workLine) []workLine {
	i := 0
	for i < len(lines) && isBlankLine(lines[i].content) {
		i++
	}
	return lines[i:]
}

// parseBlockSeq parses as many blocks as possible from the front of
// lines, per the dispatch order in §4.2, returning the blocks produced
// and whatever lines remain unconsumed (always empty at the top level;
// non-empty only if a future recognizer needs to hand back lookahead,
// which none currently do).
func (p *docParser) parseBlockSeq(lines []workLine) ([]*rawBlock, []workLine) {
	var blocks []*rawBlock
	for {
		lines = skipBlankLines(lines)
		if len(lines) == 0 {
			return blocks, lines
		}
		block, consumed := p.parseOneBlock(lines)
		if consumed <= 0 {
			// Defensive: paragraph always matches non-blank input, but
			// guard against an infinite loop if every recognizer declines.
			return blocks, lines
		}
		if block != nil {
			blocks = append(blocks, block)
		}
		lines = lines[consumed:]
	}
}

// parseOneBlock dispatches on the first line of lines per §4.2's
// recognizer order. It returns a nil block (with consumed > 0) for a
// reference-link definition, which registers into p.refs but produces no
// node in the tree.
func (p *docParser) parseOneBlock(lines []workLine) (*rawBlock, int) {
	line0 := lines[0].content
	indentW := indentWidth(line0)
	if indentW >= codeBlockIndentLimit {
		return p.parseIndentedCode(lines)
	}
	content := stripColumns(line0, indentW)
	leadBytes := len(line0) - len(content)
	baseOffset := lines[0].offset + leadBytes

	if parseThematicBreak(content) {
		return &rawBlock{kind: ThematicBreakKind, span: Span{baseOffset, lines[0].offset + len(line0)}}, 1
	}
	if h, ok := parseATXHeading(content); ok {
		text := string(content[h.contentRel.start:h.contentRel.end])
		span := Span{baseOffset, lines[0].offset + len(line0)}
		if text == "" {
			// §4.2 recovery: an ATX heading with no content after the
			// "#"s would otherwise violate the non-empty heading
			// invariant of §3, so it is recorded as a level-1 heading
			// carrying a recovered error instead of an empty inline
			// sequence.
			pos := positionAt(p.fileName, p.src, baseOffset+h.contentRel.start)
			return &rawBlock{
				kind:         HeadingKind,
				headingLevel: 1,
				ispErr:       &ParseError{Position: pos, Err: &errUnexpected{Message: "empty ATX heading"}},
				span:         span,
			}, 1
		}
		return &rawBlock{
			kind:         HeadingKind,
			headingLevel: h.level,
			ispText:      text,
			ispOffset:    baseOffset + h.contentRel.start,
			span:         span,
		}, 1
	}
	if fence, ok := parseCodeFence(content); ok {
		return p.parseFencedCode(lines, indentW, fence, baseOffset)
	}
	if block, consumed, ok := p.tryTable(lines, indentW); ok {
		return block, consumed
	}
	if lm, ok := parseListMarker(content); ok {
		return p.parseList(lines, lm)
	}
	if _, ok := blockQuotePrefix(content); ok {
		return p.parseBlockquote(lines)
	}
	if block, consumed, ok := p.tryReferenceDefinition(lines, indentW); ok {
		return block, consumed
	}
	return p.parseParagraph(lines, indentW)
}

// parseIndentedCode consumes a run of blank-or->=4-column-indented lines
// as an indented code block per §4.2.
func (p *docParser) parseIndentedCode(lines []workLine) (*rawBlock, int) {
	n := 0
	for n < len(lines) {
		l := lines[n].content
		if isBlankLine(l) || indentWidth(l) >= codeBlockIndentLimit {
			n++
			continue
		}
		break
	}
	last := n
	for last > 0 && isBlankLine(lines[last-1].content) {
		last--
	}
	if last == 0 {
		return nil, 0
	}
	var sb strings.Builder
	for i := 0; i < last; i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		l := lines[i].content
		if isBlankLine(l) {
			continue
		}
		sb.Write(stripColumns(l, codeBlockIndentLimit))
	}
	sb.WriteByte('\n')
	start := lines[0].offset
	end := lines[last-1].offset + len(lines[last-1].content)
	return &rawBlock{kind: CodeBlockKind, codeContent: sb.String(), span: Span{start, end}}, last
}

// parseFencedCode consumes an opening fence line through its matching
// closing fence (or EOF) per §4.2.
func (p *docParser) parseFencedCode(lines []workLine, indentW int, fence codeFence, baseOffset int) (*rawBlock, int) {
	info := ""
	if fence.infoStart >= 0 {
		line0 := lines[0].content
		raw := string(line0[fence.infoStart:fence.infoEnd])
		if decoded, err := unescapeLine(raw); err == nil {
			info = decoded
		} else {
			info = raw
		}
	}
	var contentLines []string
	consumed := 1
	for i := 1; i < len(lines); i++ {
		l := lines[i].content
		closeIndent := indentWidth(l)
		if closeIndent < codeBlockIndentLimit {
			cand := stripColumns(l, closeIndent)
			if parseFenceClose(cand, fence.char, fence.n) {
				consumed = i + 1
				break
			}
		}
		strip := indentW
		if indentWidth(l) < strip {
			strip = indentWidth(l)
		}
		contentLines = append(contentLines, string(stripColumns(l, strip)))
		consumed = i + 1
	}
	var sb strings.Builder
	for _, cl := range contentLines {
		sb.WriteString(cl)
		sb.WriteByte('\n')
	}
	end := lines[consumed-1].offset + len(lines[consumed-1].content)
	return &rawBlock{
		kind:        CodeBlockKind,
		codeInfo:    info,
		hasCodeInfo: info != "",
		codeContent: sb.String(),
		span:        Span{baseOffset, end},
	}, consumed
}

// parseBlockquote consumes consecutive '>'-prefixed lines and recurses
// into their stripped content, per §4.2. mmark requires the '>' marker on
// every line of the quote; it does not implement CommonMark's "lazy
// continuation" of an open paragraph across a line lacking the marker.
func (p *docParser) parseBlockquote(lines []workLine) (*rawBlock, int) {
	var inner []workLine
	j := 0
	for j < len(lines) {
		l := lines[j].content
		if isBlankLine(l) {
			break
		}
		iw := indentWidth(l)
		if iw >= codeBlockIndentLimit {
			break
		}
		content := stripColumns(l, iw)
		stripBytes, ok := blockQuotePrefix(content)
		if !ok {
			break
		}
		rest, consumedIndent := stripColumnsN(l, iw)
		rest = rest[stripBytes:]
		inner = append(inner, workLine{offset: lines[j].offset + consumedIndent + stripBytes, content: rest})
		j++
	}
	children, _ := p.parseBlockSeq(inner)
	start := lines[0].offset
	end := lines[j-1].offset + len(lines[j-1].content)
	return &rawBlock{kind: BlockquoteKind, children: children, span: Span{start, end}}, j
}

// parseList consumes one or more same-kind list item markers at the
// current level, normalizing tight/loose per §4.2/§9's documented
// semantic outcome (see DESIGN.md's Open Question resolution): a list is
// tight unless some item contains an internal blank line, or two items
// are separated by a blank line.
func (p *docParser) parseList(lines []workLine, first listMarker) (*rawBlock, int) {
	ordered := first.ordered
	delim := first.delim
	var items [][]*rawBlock
	var itemHadInternalBlank []bool
	var itemHadTrailingBlank []bool

	var listStart uint32
	startSet := false
	expected := uint32(0)

	idx := 0
	startOffset := lines[0].offset
	lastConsumedEnd := startOffset

	for idx < len(lines) {
		line := lines[idx].content
		iw := indentWidth(line)
		if iw >= codeBlockIndentLimit {
			break
		}
		content := stripColumns(line, iw)
		lm, ok := parseListMarker(content)
		if !ok || lm.ordered != ordered || (!ordered && lm.delim != delim) {
			break
		}
		if ordered {
			if !startSet {
				listStart = lm.n
				expected = lm.n
				startSet = true
			}
			if lm.tooBig {
				p.bundle.add(p.fileName, p.src, lines[idx].offset, &errListStartIndexTooBig{N: int(lm.n)})
			} else if lm.n != expected {
				p.bundle.add(p.fileName, p.src, lines[idx].offset, &errListIndexOutOfOrder{Actual: int(lm.n), Expected: int(expected)})
			}
			expected = lm.n + 1
		}

		markerRest := content[lm.width:]
		pad := 1
		if len(markerRest) > 0 && !isBlankLine(markerRest) {
			w := 0
			for w < len(markerRest) && w < 4 && markerRest[w] == ' ' {
				w++
			}
			if w > 0 {
				pad = w
			}
		}
		itemIndent := iw + lm.width + pad

		restStart := lm.width + pad
		if restStart > len(content) {
			restStart = len(content)
		}
		firstRest := content[restStart:]
		firstConsumed := len(line) - len(firstRest)
		var itemLines []workLine
		itemLines = append(itemLines, workLine{offset: lines[idx].offset + firstConsumed, content: firstRest})

		j := idx + 1
		for j < len(lines) {
			l := lines[j].content
			if isBlankLine(l) {
				itemLines = append(itemLines, workLine{offset: lines[j].offset, content: nil})
				j++
				continue
			}
			if indentWidth(l) < itemIndent {
				break
			}
			rest, consumed := stripColumnsN(l, itemIndent)
			itemLines = append(itemLines, workLine{offset: lines[j].offset + consumed, content: rest})
			j++
		}

		trailingBlank := 0
		for trailingBlank < len(itemLines) && isBlankLine(itemLines[len(itemLines)-1-trailingBlank].content) {
			trailingBlank++
		}
		internalBlank := false
		for k := 0; k < len(itemLines)-trailingBlank; k++ {
			if isBlankLine(itemLines[k].content) {
				internalBlank = true
				break
			}
		}

		body, _ := p.parseBlockSeq(itemLines)
		items = append(items, body)
		itemHadInternalBlank = append(itemHadInternalBlank, internalBlank)
		itemHadTrailingBlank = append(itemHadTrailingBlank, trailingBlank > 0)

		if j > idx {
			lastConsumedEnd = lines[j-1].offset + len(lines[j-1].content)
		}
		idx = j
	}

	loose := false
	for i, b := range itemHadInternalBlank {
		if b {
			loose = true
		}
		if i < len(itemHadTrailingBlank)-1 && itemHadTrailingBlank[i] {
			loose = true
		}
	}

	if !loose {
		for _, item := range items {
			for _, b := range item {
				if b.kind == ParagraphKind {
					b.kind = NakedKind
				}
			}
		}
	}

	return &rawBlock{
		kind:      ListKind,
		ordered:   ordered,
		listStart: listStart,
		items:     items,
		loose:     loose,
		span:      Span{startOffset, lastConsumedEnd},
	}, idx
}

// tryTable attempts to parse lines as a pipe table (header + alignment
// divider + body rows), per §4.2.
func (p *docParser) tryTable(lines []workLine, indentW int) (*rawBlock, int, bool) {
	if len(lines) < 2 {
		return nil, 0, false
	}
	header := stripColumns(lines[0].content, indentW)
	if !bytes.ContainsRune(header, '|') {
		return nil, 0, false
	}
	dividerIndent := indentWidth(lines[1].content)
	if dividerIndent >= codeBlockIndentLimit {
		return nil, 0, false
	}
	divider := stripColumns(lines[1].content, dividerIndent)
	aligns, ok := parseTableDivider(divider)
	if !ok {
		return nil, 0, false
	}
	headerOffset := lines[0].offset + (len(lines[0].content) - len(header))
	headerCells := splitRow(header, headerOffset)
	if len(headerCells) > len(aligns) {
		for len(aligns) < len(headerCells) {
			aligns = append(aligns, AlignDefault)
		}
	}
	rows := [][]rawCell{headerCells}
	consumed := 2
	for consumed < len(lines) {
		l := lines[consumed].content
		if isBlankLine(l) {
			break
		}
		iw := indentWidth(l)
		if iw >= codeBlockIndentLimit {
			break
		}
		c := stripColumns(l, iw)
		if !bytes.ContainsRune(c, '|') {
			break
		}
		off := lines[consumed].offset + (len(l) - len(c))
		rows = append(rows, splitRow(c, off))
		consumed++
	}
	start := lines[0].offset
	end := lines[consumed-1].offset + len(lines[consumed-1].content)
	return &rawBlock{kind: TableKind, aligns: aligns, rows: rows, span: Span{start, end}}, consumed, true
}

// parseTableDivider parses a pipe-table alignment row, e.g. "| :-- | --: |".
func parseTableDivider(line []byte) ([]CellAlign, bool) {
	trimmed := bytes.TrimSpace(line)
	trimmed = bytes.TrimPrefix(trimmed, []byte{'|'})
	trimmed = bytes.TrimSuffix(trimmed, []byte{'|'})
	cells := splitUnescaped(trimmed, '|')
	if len(cells) == 0 {
		return nil, false
	}
	aligns := make([]CellAlign, 0, len(cells))
	for _, c := range cells {
		c = bytes.TrimSpace(c)
		if len(c) == 0 {
			return nil, false
		}
		left := c[0] == ':'
		right := c[len(c)-1] == ':'
		body := c
		if left {
			body = body[1:]
		}
		if right && len(body) > 0 {
			body = body[:len(body)-1]
		}
		if len(body) == 0 {
			return nil, false
		}
		for _, b := range body {
			if b != '-' {
				return nil, false
			}
		}
		switch {
		case left && right:
			aligns = append(aligns, AlignCenter)
		case left:
			aligns = append(aligns, AlignLeft)
		case right:
			aligns = append(aligns, AlignRight)
		default:
			aligns = append(aligns, AlignDefault)
		}
	}
	return aligns, true
}

// splitRow splits content on unescaped '|' into cells, dropping a leading
// or trailing cell produced by an optional surrounding pipe, per §4.2.
func splitRow(content []byte, offset int) []rawCell {
	trimmed := bytes.TrimSpace(content)
	lead := 0
	for lead < len(content) && isSpace(content[lead]) {
		lead++
	}
	base := offset + lead
	hadLeadingPipe := len(trimmed) > 0 && trimmed[0] == '|'
	hadTrailingPipe := len(trimmed) > 0 && trimmed[len(trimmed)-1] == '|' && len(trimmed) > 1

	parts := splitUnescaped(trimmed, '|')
	if hadLeadingPipe && len(parts) > 0 {
		parts = parts[1:]
	}
	if hadTrailingPipe && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}

	cells := make([]rawCell, 0, len(parts))
	runningOffset := base
	for i, part := range parts {
		if i > 0 || hadLeadingPipe {
			runningOffset++ // account for the '|' separator byte
		}
		partTrimStart := 0
		for partTrimStart < len(part) && isSpace(part[partTrimStart]) {
			partTrimStart++
		}
		trimmedPart := bytes.TrimRight(part[partTrimStart:], " \t")
		cells = append(cells, rawCell{text: string(trimmedPart), offset: runningOffset + partTrimStart})
		runningOffset += len(part)
	}
	return cells
}

// tryReferenceDefinition attempts to parse a link reference definition at
// the start of lines, per §4.2. On success it registers the definition
// into p.refs and returns (nil, linesConsumed, true): reference
// definitions produce no node in the block tree.
func (p *docParser) tryReferenceDefinition(lines []workLine, indentW int) (*rawBlock, int, bool) {
	content := stripColumns(lines[0].content, indentW)
	if len(content) == 0 || content[0] != '[' {
		return nil, 0, false
	}
	closeIdx := findUnescapedByte(content[1:], ']')
	if closeIdx < 0 {
		return nil, 0, false
	}
	closeIdx++ // index within content
	if closeIdx+1 >= len(content) || content[closeIdx+1] != ':' {
		return nil, 0, false
	}
	// Past this point the "[...]:" marker commits this line to being a
	// reference definition: a failure to resolve a destination recovers
	// as a Naked(IspError) rather than falling through to paragraph
	// parsing, per §4.2's "recovery emits Naked(IspError)".
	recoverRef := func(msg string, consumed int) (*rawBlock, int, bool) {
		if consumed < 1 {
			consumed = 1
		}
		pos := positionAt(p.fileName, p.src, lines[0].offset)
		return &rawBlock{
			kind:   NakedKind,
			ispErr: &ParseError{Position: pos, Err: &errUnexpected{Message: msg}},
			span:   Span{lines[0].offset, lines[0].offset + len(lines[0].content)},
		}, consumed, true
	}
	label := string(content[1:closeIdx])
	if strings.TrimSpace(label) == "" {
		return recoverRef("malformed reference definition: empty label", 1)
	}
	rest := bytes.TrimLeft(content[closeIdx+2:], " \t")
	consumed := 1
	if len(rest) == 0 {
		if len(lines) > 1 {
			next := bytes.TrimSpace(lines[1].content)
			if len(next) == 0 {
				return recoverRef("malformed reference definition: missing destination", 1)
			}
			rest = next
			consumed = 2
		} else {
			return recoverRef("malformed reference definition: missing destination", 1)
		}
	}
	dest, afterDest, ok := parseLinkDestination(rest)
	if !ok {
		return recoverRef("malformed reference definition: invalid destination", consumed)
	}
	title := ""
	hasTitle := false
	afterDest = bytes.TrimLeft(afterDest, " \t")
	if len(afterDest) > 0 {
		if t, _, ok2 := parseLinkTitle(afterDest); ok2 {
			title, hasTitle = t, true
		}
	} else if consumed == 1 && len(lines) > 1 {
		next := bytes.TrimSpace(lines[1].content)
		if len(next) > 0 {
			if t, _, ok2 := parseLinkTitle(next); ok2 {
				title, hasTitle = t, true
				consumed = 2
			}
		}
	}
	dup := p.refs.define(label, ReferenceDefinition{Dest: parseURI(dest), Title: title, HasTitle: hasTitle})
	if dup {
		p.bundle.add(p.fileName, p.src, lines[0].offset, &errDuplicateReferenceDefinition{Label: label})
	}
	return nil, consumed, true
}

// startsNewBlock reports whether c (indentation already stripped) looks
// like the start of a block that should interrupt an open paragraph, per
// §4.2.
func startsNewBlock(c []byte) bool {
	if indentWidth(c) >= codeBlockIndentLimit {
		return false
	}
	if parseThematicBreak(c) {
		return true
	}
	if _, ok := parseATXHeading(c); ok {
		return true
	}
	if _, ok := parseCodeFence(c); ok {
		return true
	}
	if _, ok := parseListMarker(c); ok {
		return true
	}
	if _, ok := blockQuotePrefix(c); ok {
		return true
	}
	return false
}

// parseParagraph consumes a run of non-blank, non-interrupting lines as
// paragraph content, per §4.2.
func (p *docParser) parseParagraph(lines []workLine, indentW int) (*rawBlock, int) {
	content := stripColumns(lines[0].content, indentW)
	startOffset := lines[0].offset + (len(lines[0].content) - len(content))
	var sb strings.Builder
	sb.Write(content)
	consumed := 1
	for consumed < len(lines) {
		l := lines[consumed].content
		if isBlankLine(l) {
			break
		}
		iw := indentWidth(l)
		c := l
		if iw < codeBlockIndentLimit {
			c = stripColumns(l, iw)
		} else {
			c = bytes.TrimLeft(l, " \t")
		}
		if startsNewBlock(c) {
			break
		}
		sb.WriteByte('\n')
		sb.Write(bytes.TrimLeft(l, " \t"))
		consumed++
	}
	text := sb.String()
	end := startOffset + len(text)
	return &rawBlock{
		kind:      ParagraphKind,
		ispText:   text,
		ispOffset: startOffset,
		span:      Span{startOffset, end},
	}, consumed
}

// stripColumnsN is stripColumns plus the number of bytes consumed, needed
// to compute absolute offsets for nested content.
func stripColumnsN(line []byte, n int) (rest []byte, consumed int) {
	col := 0
	i := 0
	for i < len(line) && col < n {
		switch line[i] {
		case ' ':
			col++
			i++
		case '\t':
			col += tabStopSize
			i++
		default:
			return line[i:], i
		}
	}
	return line[i:], i
}
