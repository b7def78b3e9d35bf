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

// parseLinkDestination parses a link destination at the start of s, per
// §4.2/§4.3: either an angle-bracket form "<...>" (no unescaped '<', '>',
// or newline inside) or a bare form (balanced parens, no unescaped
// whitespace). It returns the decoded destination text and the unconsumed
// remainder of s.
func parseLinkDestination(s []byte) (dest string, rest []byte, ok bool) {
	if len(s) == 0 {
		return "", s, false
	}
	if s[0] == '<' {
		i := 1
		for i < len(s) {
			switch {
			case s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]):
				i += 2
			case s[i] == '>':
				raw, err := unescapeLine(string(s[1:i]))
				if err != nil {
					return "", s, false
				}
				return raw, s[i+1:], true
			case s[i] == '<' || s[i] == '\n':
				return "", s, false
			default:
				i++
			}
		}
		return "", s, false
	}
	depth := 0
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]):
			i += 2
		case s[i] == '(':
			depth++
			i++
		case s[i] == ')':
			if depth == 0 {
				goto done
			}
			depth--
			i++
		case isSpaceOrNewline(s[i]) || s[i] < 0x20:
			goto done
		default:
			i++
		}
	}
done:
	if i == 0 || depth != 0 {
		return "", s, false
	}
	raw, err := unescapeLine(string(s[:i]))
	if err != nil {
		return "", s, false
	}
	return raw, s[i:], true
}

// parseLinkTitle parses an optional link title at the start of s, per
// §4.2/§4.3: a quoted string delimited by double quotes, single quotes, or
// matching parentheses.
func parseLinkTitle(s []byte) (title string, rest []byte, ok bool) {
	if len(s) == 0 {
		return "", s, false
	}
	var closer byte
	switch s[0] {
	case '"':
		closer = '"'
	case '\'':
		closer = '\''
	case '(':
		closer = ')'
	default:
		return "", s, false
	}
	i := 1
	for i < len(s) {
		switch {
		case s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]):
			i += 2
		case s[i] == closer:
			raw, err := unescapeLine(string(s[1:i]))
			if err != nil {
				return "", s, false
			}
			return raw, s[i+1:], true
		default:
			i++
		}
	}
	return "", s, false
}

// findUnescapedByte returns the index of the first unescaped occurrence of
// c in s, or -1.
func findUnescapedByte(s []byte, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			continue
		}
		if s[i] == c {
			return i
		}
	}
	return -1
}

// splitUnescaped splits s on unescaped occurrences of sep.
func splitUnescaped(s []byte, sep byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			continue
		}
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
