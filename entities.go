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
	"strconv"

	nethtml "golang.org/x/net/html"
)

// decodeReference decodes a single `&#D;`, `&#xH;`/`&#XH;`, or `&name;`
// reference at the start of s, per §4.1. It delegates the HTML5 named
// entity table lookup to [golang.org/x/net/html], which embeds the full
// entity table; we only add the offset-precise error reporting and range
// validation spec.md requires on top of it.
//
// decodeReference returns ok=false (with err=nil) when s does not begin
// with a recognizable reference syntax at all, in which case the caller
// should treat '&' as a literal character.
func decodeReference(s string) (decoded string, consumed int, ok bool, err error) {
	if len(s) < 3 || s[0] != '&' {
		return "", 0, false, nil
	}
	if s[1] == '#' {
		return decodeNumericReference(s)
	}
	return decodeNamedReference(s)
}

func decodeNumericReference(s string) (decoded string, consumed int, ok bool, err error) {
	// s[0:2] == "&#"
	i := 2
	hex := false
	if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
		hex = true
		i++
	}
	digitsStart := i
	for i < len(s) && s[i] != ';' {
		if hex && !isASCIIHexDigit(s[i]) {
			return "", 0, false, nil
		}
		if !hex && !isASCIIDigit(s[i]) {
			return "", 0, false, nil
		}
		i++
	}
	if i == digitsStart || i >= len(s) || s[i] != ';' {
		return "", 0, false, nil
	}
	digits := s[digitsStart:i]
	base := 10
	if hex {
		base = 16
	}
	n, parseErr := strconv.ParseInt(digits, base, 64)
	if parseErr != nil {
		return "", 0, false, nil
	}
	if n == 0 || n > 0x10FFFF {
		return "", 0, true, &errInvalidNumericCharacter{CodePoint: n}
	}
	return string(rune(n)), i + 1, true, nil
}

func decodeNamedReference(s string) (decoded string, consumed int, ok bool, err error) {
	i := 1
	for i < len(s) && s[i] != ';' && isASCIILetterOrDigit(s[i]) {
		i++
	}
	if i == 1 || i >= len(s) || s[i] != ';' {
		return "", 0, false, nil
	}
	name := s[1:i]
	candidate := "&" + name + ";"
	unescaped := nethtml.UnescapeString(candidate)
	if unescaped == candidate {
		return "", 0, true, &errUnknownHTMLEntityName{Name: name}
	}
	return unescaped, i + 1, true, nil
}

func isASCIILetterOrDigit(b byte) bool {
	return isASCIIDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
