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
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// labelFolder performs Unicode simple case-folding for reference-label
// normalization, per §3 ("Unicode simple case-fold then collapse runs of
// whitespace"). strings.ToLower only folds ASCII correctly; cases.Fold
// implements the full Unicode case-folding table the way the golang-
// commonmark family's label-matching code expects.
var labelFolder = cases.Fold()

// isSpace reports whether b is a space character per §4.1 (space ∈ {' ', '\t'}).
func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// isNewline reports whether b is a newline character per §4.1.
func isNewline(b byte) bool { return b == '\n' || b == '\r' }

// isSpaceOrNewline reports whether b is whitespace per §4.1.
func isSpaceOrNewline(b byte) bool { return isSpace(b) || isNewline(b) }

// isFrameChar reports whether b can open or close a delimiter run.
func isFrameChar(b byte) bool {
	switch b {
	case '*', '^', '_', '~':
		return true
	}
	return false
}

// isMarkupChar reports whether b is significant to the inline dispatcher.
func isMarkupChar(b byte) bool {
	return isFrameChar(b) || b == '[' || b == ']' || b == '`'
}

// isSpecialChar reports whether b requires special handling in plain text.
func isSpecialChar(b byte) bool {
	return isMarkupChar(b) || b == '\\' || b == '!' || b == '<'
}

// isASCIIPunct reports whether b is ASCII punctuation, used to validate
// backslash escapes per §4.1.
func isASCIIPunct(b byte) bool {
	switch {
	case b >= '!' && b <= '/':
		return true
	case b >= ':' && b <= '@':
		return true
	case b >= '[' && b <= '`':
		return true
	case b >= '{' && b <= '~':
		return true
	}
	return false
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func isASCIIHexDigit(b byte) bool {
	return isASCIIDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// charClass classifies the character preceding or following a delimiter
// run for the purposes of the flanking rules in §4.3.
type charClass int

const (
	classSpace charClass = iota
	classPunct
	classOther
)

// runeClass returns the charClass for r, ordered Space < Punct < Other as
// required by the flanking-delimiter rule.
func runeClass(r rune, atBoundary bool) charClass {
	switch {
	case atBoundary:
		return classSpace
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return classPunct
	default:
		return classOther
	}
}

// collapseWhitespace replaces runs of whitespace with a single space and
// trims both ends, per §4.1 (used for code span contents and reference
// labels).
func collapseWhitespace(s string) string {
	var sb strings.Builder
	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inRun = true
			continue
		}
		if inRun && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		inRun = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// normalizeLabel implements the reference-table normalization of §3:
// Unicode simple case-fold, then collapse whitespace, then trim.
func normalizeLabel(label string) string {
	folded := labelFolder.String(strings.TrimSpace(label))
	return collapseWhitespace(folded)
}

// unescapeLine decodes backslash escapes and entity/numeric references in
// s, per §4.1. It does not interpret inline markup; callers that need
// markup-aware decoding use the inline parser's plain-text accumulator
// instead.
func unescapeLine(s string) (string, error) {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]):
			sb.WriteByte(s[i+1])
			i += 2
		case s[i] == '&':
			decoded, n, ok, err := decodeReference(s[i:])
			if err != nil {
				return "", err
			}
			if ok {
				sb.WriteString(decoded)
				i += n
				continue
			}
			sb.WriteByte(s[i])
			i++
		default:
			sb.WriteByte(s[i])
			i++
		}
	}
	return sb.String(), nil
}
