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

// MMark is a parsed document: its optional YAML front matter, its block
// tree, and the extension stack that will be applied at render time.
type MMark struct {
	FileName string
	YAML     JSONValue
	HasYAML  bool

	blocks    []*Block
	extension Extension
}

// Parse parses input (named fileName, for diagnostics) into an [MMark],
// using [DefaultYAMLDecoder] for any YAML front matter. It returns a
// non-nil *MMark even when err is a non-nil [*ParseErrorBundle]: blocks
// that couldn't be fully resolved are recovered in place (see
// NakedKind/ParseErr), so a document with errors still has a usable
// tree.
func Parse(fileName, input string) (*MMark, error) {
	return ParseWithYAMLDecoder(fileName, input, DefaultYAMLDecoder)
}

// ParseWithYAMLDecoder is [Parse] with an explicit [YAMLDecoder], for
// callers that want to bind a different YAML library.
func ParseWithYAMLDecoder(fileName, input string, dec YAMLDecoder) (*MMark, error) {
	src := []byte(input)
	bundle := &ParseErrorBundle{FileName: fileName}

	bodyStart := 0
	var yamlVal JSONValue
	hasYAML := false
	if yamlText, yamlOffset, afterFrontMatter, found := extractFrontMatter(src); found {
		val, errOffset, errMsg, err := dec.DecodeYAML(yamlText)
		if err != nil {
			bundle.add(fileName, src, yamlOffset+errOffset, &errYamlParse{Message: errMsg})
		} else {
			yamlVal = val
			hasYAML = true
		}
		bodyStart = afterFrontMatter
	}

	refs := newReferenceTable()
	p := &docParser{src: src, fileName: fileName, bundle: bundle, refs: refs}
	raws := p.parseBody(src, bodyStart, len(src))
	blocks := resolveBlocks(raws, p)

	m := &MMark{
		FileName:  fileName,
		YAML:      yamlVal,
		HasYAML:   hasYAML,
		blocks:    blocks,
		extension: IdentityExtension(),
	}
	if len(bundle.Errors) > 0 {
		return m, bundle
	}
	return m, nil
}

// extractFrontMatter splits off a "---\n...\n---\n" (or "...") YAML
// front-matter block from the start of src, per §4.2/§9. A document whose
// very first line is "---" is always read as front matter, even when it
// would otherwise parse as a thematic break followed later by an
// unrelated "---" line elsewhere in the body; this mirrors how other
// front-matter-aware tools resolve the same column-1 "---" ambiguity, by
// privileging front matter only at the literal start of the document.
func extractFrontMatter(src []byte) (yamlText string, yamlOffset, bodyStart int, found bool) {
	if !bytes.HasPrefix(src, []byte("---")) {
		return "", 0, 0, false
	}
	nl := bytes.IndexByte(src, '\n')
	if nl < 0 {
		return "", 0, 0, false
	}
	firstLine := bytes.TrimRight(src[:nl], "\r")
	if string(firstLine) != "---" {
		return "", 0, 0, false
	}
	start := nl + 1
	i := start
	for i < len(src) {
		j := i
		for j < len(src) && src[j] != '\n' {
			j++
		}
		line := bytes.TrimRight(src[i:j], "\r")
		if string(line) == "---" || string(line) == "..." {
			bodyStart = j
			if j < len(src) {
				bodyStart = j + 1
			}
			return string(src[start:i]), start, bodyStart, true
		}
		i = j + 1
	}
	return "", 0, 0, false
}

// Blocks returns the document's top-level block sequence.
func (m *MMark) Blocks() []*Block {
	return m.blocks
}

// UseExtension layers ext onto the document's renderer/transform stack,
// per §6. Extensions compose in the order applied: the most recently
// added extension's renderer layer sees the output of every earlier one.
func (m *MMark) UseExtension(ext Extension) *MMark {
	m.extension = m.extension.Compose(ext)
	return m
}

// UseExtensions layers exts onto the document's renderer/transform
// stack, in order, per §6.
func (m *MMark) UseExtensions(exts ...Extension) *MMark {
	return m.UseExtension(ComposeExtensions(exts...))
}

// Render renders the document to an HTML string, per §4.5, applying
// every extension layered in via UseExtension/UseExtensions.
func (m *MMark) Render() string {
	return RenderHTML(m.blocks, m.extension)
}
