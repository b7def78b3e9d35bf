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

package mmark_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/strictdown/mmark"
)

func render(t *testing.T, input string) string {
	t.Helper()
	doc, err := mmark.Parse("test.md", input)
	if err != nil {
		if _, ok := err.(*mmark.ParseErrorBundle); !ok {
			t.Fatalf("Parse: %v", err)
		}
	}
	return doc.Render()
}

func TestRenderBasics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading", "# Hi", "<h1 id=\"hi\">Hi</h1>\n"},
		{"emphasis", "a *b* c", "<p>a <em>b</em> c</p>\n"},
		{"strong", "a **b** c", "<p>a <strong>b</strong> c</p>\n"},
		{"nested emphasis", "***x***", "<p><strong><em>x</em></strong></p>\n"},
		{"non-flanking underscore", "_foo_bar", "<p>_foo_bar</p>\n"},
		{"thematic break", "---", "<hr />\n"},
		{"strikeout", "a ~~b~~ c", "<p>a <del>b</del> c</p>\n"},
		{"subscript", "H~2~O", "<p>H<sub>2</sub>O</p>\n"},
		{"superscript", "x^2^", "<p>x<sup>2</sup></p>\n"},
		{"code span", "`a  b`", "<p><code>a b</code></p>\n"},
		{"code span trim", "` a `", "<p><code>a</code></p>\n"},
		{"tight list", "1. a\n2. b\n", "<ol>\n<li>a</li>\n<li>b</li>\n</ol>\n"},
		{"loose list", "1. a\n\n2. b\n", "<ol>\n<li><p>a</p>\n</li>\n<li><p>b</p>\n</li>\n</ol>\n"},
		{"blockquote", "> a\n> b\n", "<blockquote>\n<p>a\nb</p>\n</blockquote>\n"},
		{"inline link", "[a](/b \"t\")", "<p><a href=\"/b\" title=\"t\">a</a></p>\n"},
		{"autolink", "<http://example.com>", "<p><a href=\"http://example.com\">http://example.com</a></p>\n"},
		{"hard break", "a  \nb", "<p>a<br />\nb</p>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.input)
			if got != tt.want {
				t.Errorf("render(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReferenceLinks(t *testing.T) {
	input := "[a][1]\n\n[1]: /dest \"title\"\n"
	want := "<p><a href=\"/dest\" title=\"title\">a</a></p>\n"
	if got := render(t, input); got != want {
		t.Errorf("render() = %q, want %q", got, want)
	}
}

func TestUnresolvedReferenceRaisesError(t *testing.T) {
	_, err := mmark.Parse("test.md", "[a][missing]\n")
	bundle, ok := err.(*mmark.ParseErrorBundle)
	if !ok || len(bundle.Errors) == 0 {
		t.Fatalf("expected a ParseErrorBundle with at least one error, got %v", err)
	}
}

func TestInvalidNumericEntityRaisesError(t *testing.T) {
	_, err := mmark.Parse("test.md", "a &#0; b\n")
	bundle, ok := err.(*mmark.ParseErrorBundle)
	if !ok || len(bundle.Errors) == 0 {
		t.Fatalf("expected a ParseErrorBundle with at least one error, got %v", err)
	}
}

func TestNonFlankingDelimiterRunRaisesError(t *testing.T) {
	_, err := mmark.Parse("test.md", "_foo_bar\n")
	bundle, ok := err.(*mmark.ParseErrorBundle)
	if !ok || len(bundle.Errors) == 0 {
		t.Fatalf("expected a ParseErrorBundle with at least one error, got %v", err)
	}
}

func TestEmptyATXHeadingRecovers(t *testing.T) {
	doc, err := mmark.Parse("test.md", "###\n")
	bundle, ok := err.(*mmark.ParseErrorBundle)
	if !ok || len(bundle.Errors) == 0 {
		t.Fatalf("expected a ParseErrorBundle with at least one error, got %v", err)
	}
	blocks := doc.Blocks()
	if len(blocks) != 1 || blocks[0].Kind != mmark.HeadingKind || blocks[0].ParseErr == nil {
		t.Fatalf("expected a recovered HeadingKind block with ParseErr, got %#v", blocks)
	}
}

func TestMalformedReferenceDefinitionRecovers(t *testing.T) {
	doc, err := mmark.Parse("test.md", "[foo]:\n")
	bundle, ok := err.(*mmark.ParseErrorBundle)
	if !ok || len(bundle.Errors) == 0 {
		t.Fatalf("expected a ParseErrorBundle with at least one error, got %v", err)
	}
	blocks := doc.Blocks()
	if len(blocks) != 1 || blocks[0].Kind != mmark.NakedKind || blocks[0].ParseErr == nil {
		t.Fatalf("expected a recovered NakedKind block with ParseErr, got %#v", blocks)
	}
}

func TestYAMLFrontMatter(t *testing.T) {
	input := "---\ntitle: Hello\n---\n# Body\n"
	doc, err := mmark.Parse("test.md", input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.HasYAML {
		t.Fatalf("expected HasYAML")
	}
	m, ok := doc.YAML.(map[string]any)
	if !ok || m["title"] != "Hello" {
		t.Fatalf("YAML = %#v, want map with title=Hello", doc.YAML)
	}
	if got, want := doc.Render(), "<h1 id=\"body\">Body</h1>\n"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestCodeFenceWithInfoString(t *testing.T) {
	input := "```go\nfmt.Println(1)\n```\n"
	want := "<pre><code class=\"language-go\">fmt.Println(1)\n</code></pre>\n"
	if got := render(t, input); got != want {
		t.Errorf("render() = %q, want %q", got, want)
	}
}

func TestTable(t *testing.T) {
	input := "| a | b |\n| --- | ---: |\n| 1 | 2 |\n"
	got := render(t, input)
	want := "<table>\n<thead>\n<tr>\n<th>a</th>\n<th align=\"right\">b</th>\n</tr>\n</thead>\n" +
		"<tbody>\n<tr>\n<td>1</td>\n<td align=\"right\">2</td>\n</tr>\n</tbody>\n</table>\n"
	if got != want {
		t.Errorf("render() = %q, want %q", got, want)
	}
}

func TestUseExtensionLayering(t *testing.T) {
	wrap := mmark.BlockRenderer(mmark.Render[*mmark.Block]{Apply: func(b *mmark.Block, h mmark.Html) mmark.Html {
		if b.Kind == mmark.ThematicBreakKind {
			return h.WriteString("<!-- break -->\n")
		}
		return h
	}})
	doc, err := mmark.Parse("test.md", "---\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	doc.UseExtension(wrap)
	want := "<hr />\n<!-- break -->\n"
	if got := doc.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRunScannerCollectsHeadingsInDocumentOrder(t *testing.T) {
	input := "# One\n\n> ## Two\n\n- ### Three\n"
	doc, err := mmark.Parse("test.md", input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := mmark.RunScanner(doc.Blocks(), []string{}, func(acc []string, b *mmark.Block) []string {
		if b.Kind != mmark.HeadingKind {
			return acc
		}
		return append(acc, mmark.PlainText(b.Inlines))
	})
	want := []string{"One", "Two", "Three"}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("RunScanner headings mismatch (-want +got):\n%s", diff)
	}
}
