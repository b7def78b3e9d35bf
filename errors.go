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
	"strings"
)

// MMarkErr is the taxonomy of errors mmark can raise. Every concrete error
// type below implements MMarkErr as well as the standard error interface.
type MMarkErr interface {
	error
	mmarkErr()
}

type errYamlParse struct{ Message string }

func (e *errYamlParse) Error() string { return "yaml front matter: " + e.Message }
func (*errYamlParse) mmarkErr()       {}

type errListStartIndexTooBig struct{ N int }

func (e *errListStartIndexTooBig) Error() string {
	return fmt.Sprintf("ordered list start index %d is too big", e.N)
}
func (*errListStartIndexTooBig) mmarkErr() {}

type errListIndexOutOfOrder struct{ Actual, Expected int }

func (e *errListIndexOutOfOrder) Error() string {
	return fmt.Sprintf("list item index %d out of order, expected %d", e.Actual, e.Expected)
}
func (*errListIndexOutOfOrder) mmarkErr() {}

type errDuplicateReferenceDefinition struct{ Label string }

func (e *errDuplicateReferenceDefinition) Error() string {
	return fmt.Sprintf("duplicate reference definition for %q", e.Label)
}
func (*errDuplicateReferenceDefinition) mmarkErr() {}

type errCouldNotFindReferenceDefinition struct {
	Label   string
	Nearest []string
}

func (e *errCouldNotFindReferenceDefinition) Error() string {
	if len(e.Nearest) == 0 {
		return fmt.Sprintf("could not find reference definition for %q", e.Label)
	}
	return fmt.Sprintf("could not find reference definition for %q (did you mean %s?)",
		e.Label, strings.Join(quoteAll(e.Nearest), ", "))
}
func (*errCouldNotFindReferenceDefinition) mmarkErr() {}

type errNonFlankingDelimiterRun struct{ Chars string }

func (e *errNonFlankingDelimiterRun) Error() string {
	return fmt.Sprintf("delimiter run %q is neither left- nor right-flanking", e.Chars)
}
func (*errNonFlankingDelimiterRun) mmarkErr() {}

type errInvalidNumericCharacter struct{ CodePoint int64 }

func (e *errInvalidNumericCharacter) Error() string {
	return fmt.Sprintf("invalid numeric character reference U+%X", e.CodePoint)
}
func (*errInvalidNumericCharacter) mmarkErr() {}

type errUnknownHTMLEntityName struct{ Name string }

func (e *errUnknownHTMLEntityName) Error() string {
	return fmt.Sprintf("unknown HTML entity name %q", e.Name)
}
func (*errUnknownHTMLEntityName) mmarkErr() {}

type errUnexpected struct{ Message string }

func (e *errUnexpected) Error() string { return e.Message }
func (*errUnexpected) mmarkErr()       {}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

// ParseError pairs an [MMarkErr] with the source position it occurred at.
type ParseError struct {
	Position Position
	Err      MMarkErr
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseErrorBundle is a non-empty sequence of parse errors, returned by
// [Parse] when a document cannot be fully resolved. Block-level errors are
// recovered in place during parsing; every error encountered across the
// whole document is collected into one bundle rather than stopping at the
// first failure.
type ParseErrorBundle struct {
	FileName string
	Errors   []*ParseError
}

func (b *ParseErrorBundle) Error() string {
	var sb strings.Builder
	for i, e := range b.Errors {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

func (b *ParseErrorBundle) add(fileName string, src []byte, offset int, err MMarkErr) {
	b.Errors = append(b.Errors, &ParseError{
		Position: positionAt(fileName, src, offset),
		Err:      err,
	})
}
