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

// Span is a half-open byte range [Start, End) into a document's source.
// ISPs (inline-span placeholders) and parse errors carry a Span so that
// inline-phase diagnostics can be reported in terms of the original
// document rather than the sub-string being parsed.
type Span struct {
	Start int
	End   int
}

// NullSpan returns an invalid span, used as the zero value for "no
// position available".
func NullSpan() Span {
	return Span{Start: -1, End: -1}
}

// IsValid reports whether the span refers to an actual range.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return s.End - s.Start
}

// Slice returns the bytes of src covered by s, or nil if s is invalid or
// out of range.
func (s Span) Slice(src []byte) []byte {
	if !s.IsValid() || s.End > len(src) {
		return nil
	}
	return src[s.Start:s.End]
}
