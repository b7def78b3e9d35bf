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

import "bytes"

// codeBlockIndentLimit is the column width of indentation required to
// start an indented code block, per §4.2.
const codeBlockIndentLimit = 4

// indentWidth returns the column width of the leading run of spaces/tabs
// in line. A tab always counts as 4 columns; unlike the teacher's
// tab-stop-aligned arithmetic, mmark uses a flat width for tractability,
// which differs from tab-stop alignment whenever a tab follows a run of
// spaces whose width is not a multiple of 4.
func indentWidth(line []byte) int {
	w := 0
	for _, b := range line {
		switch b {
		case ' ':
			w++
		case '\t':
			w += tabStopSize
		default:
			return w
		}
	}
	return w
}

// indentBytes returns the number of leading whitespace bytes in line.
func indentBytes(line []byte) int {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}

// stripColumns removes up to n columns of leading whitespace from line,
// returning the remainder. If n falls inside a tab character, the whole
// tab is consumed (see indentWidth's doc comment).
func stripColumns(line []byte, n int) []byte {
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
			return line[i:]
		}
	}
	return line[i:]
}

func isBlankLine(line []byte) bool {
	return len(bytes.TrimRight(line, " \t\r")) == 0
}

// parseThematicBreak reports whether line (already stripped of
// indentation) is a thematic break: 3+ of the same character from
// {*, -, _} with only whitespace otherwise, per §4.2.
func parseThematicBreak(line []byte) bool {
	n := 0
	var want byte
	for _, b := range line {
		switch b {
		case '*', '-', '_':
			if n == 0 {
				want = b
			} else if b != want {
				return false
			}
			n++
		case ' ', '\t', '\r':
			// ignore
		default:
			return false
		}
	}
	return n >= 3
}

// atxHeading describes a recognized ATX heading line.
type atxHeading struct {
	level      int
	contentRel span // byte range within the (already indent-stripped) line
}

type span struct{ start, end int }

// parseATXHeading attempts to parse line as an ATX heading per §4.2: 1-6
// '#' then required space, content until EOL, optional trailing "#+" run
// discarded.
func parseATXHeading(line []byte) (atxHeading, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return atxHeading{}, false
	}
	rest := line[level:]
	if len(rest) > 0 && !(rest[0] == ' ' || rest[0] == '\t') {
		return atxHeading{}, false
	}
	content := bytes.TrimRight(bytes.TrimLeft(rest, " \t"), " \t\r")
	// Strip an optional trailing run of "#+" preceded by whitespace (or
	// the whole line being hashes).
	trimmed := bytes.TrimRight(content, "#")
	if len(trimmed) != len(content) {
		if len(trimmed) == 0 || trimmed[len(trimmed)-1] == ' ' || trimmed[len(trimmed)-1] == '\t' {
			content = bytes.TrimRight(trimmed, " \t")
		}
	}
	start := level + (len(rest) - len(bytes.TrimLeft(rest, " \t")))
	return atxHeading{
		level:      level,
		contentRel: span{start: start, end: start + len(content)},
	}, true
}

// codeFence describes a recognized fence line.
type codeFence struct {
	char      byte
	n         int
	infoStart int // -1 if no info string
	infoEnd   int
}

// parseCodeFence attempts to parse line as an opening code fence per §4.2.
func parseCodeFence(line []byte) (codeFence, bool) {
	const minRun = 3
	if len(line) < minRun || (line[0] != '`' && line[0] != '~') {
		return codeFence{}, false
	}
	f := codeFence{char: line[0], infoStart: -1}
	for f.n < len(line) && line[f.n] == f.char {
		f.n++
	}
	if f.n < minRun {
		return codeFence{}, false
	}
	rest := bytes.TrimRight(line[f.n:], " \t\r")
	info := bytes.TrimLeft(line[f.n:], " \t")
	info = bytes.TrimRight(info, " \t\r")
	if len(info) > 0 {
		if f.char == '`' && bytes.ContainsRune(info, '`') {
			return codeFence{}, false
		}
		f.infoStart = len(line) - len(rest) + (len(rest) - len(info))
		// Recompute precisely: find the index of info within line.
		idx := bytes.Index(line[f.n:], info)
		if idx >= 0 {
			f.infoStart = f.n + idx
			f.infoEnd = f.infoStart + len(info)
		}
	}
	return f, true
}

// parseFenceClose reports whether line closes a fence opened with (char, n).
func parseFenceClose(line []byte, char byte, n int) bool {
	trimmed := bytes.TrimRight(line, " \t\r")
	count := 0
	for count < len(trimmed) && trimmed[count] == char {
		count++
	}
	return count >= n && count == len(trimmed)
}

// listMarker describes a recognized list marker.
type listMarker struct {
	delim   byte // '-', '+', '*', '.', or ')'
	ordered bool
	n       uint32
	tooBig  bool
	width   int // byte width of the marker itself (digits+delim, or bullet)
}

// parseListMarker attempts to parse line (already indent-stripped) as a
// list marker per §4.2.
func parseListMarker(line []byte) (listMarker, bool) {
	if len(line) == 0 {
		return listMarker{}, false
	}
	switch c := line[0]; {
	case c == '-' || c == '+' || c == '*':
		if len(line) > 1 && !(line[1] == ' ' || line[1] == '\t' || line[1] == '\r') {
			return listMarker{}, false
		}
		return listMarker{delim: c, width: 1}, true
	case isASCIIDigit(c):
		const maxDigits = 9
		i := 0
		var n uint64
		tooBig := false
		for i < len(line) && isASCIIDigit(line[i]) {
			if i < maxDigits {
				n = n*10 + uint64(line[i]-'0')
			} else {
				tooBig = true
			}
			i++
		}
		if i == 0 || i >= len(line) {
			return listMarker{}, false
		}
		delim := line[i]
		if delim != '.' && delim != ')' {
			return listMarker{}, false
		}
		if i+1 < len(line) && !(line[i+1] == ' ' || line[i+1] == '\t' || line[i+1] == '\r') {
			return listMarker{}, false
		}
		if n > 999_999_999 {
			tooBig = true
		}
		return listMarker{delim: delim, ordered: true, n: uint32(n), width: i + 1, tooBig: tooBig}, true
	default:
		return listMarker{}, false
	}
}

// blockQuotePrefix reports whether line (indent-stripped) begins a block
// quote, and how many bytes of '>' plus an optional single following
// space to strip for continuation.
func blockQuotePrefix(line []byte) (stripBytes int, ok bool) {
	if len(line) == 0 || line[0] != '>' {
		return 0, false
	}
	if len(line) > 1 && (line[1] == ' ' || line[1] == '\t') {
		return 2, true
	}
	return 1, true
}
