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
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// JSONValue is the decoded form of a document's YAML front matter: a tree
// of nil, bool, float64/int, string, []any, or map[string]any, matching the
// spec's JsonValue payload.
type JSONValue = any

// YAMLDecoder decodes a block of YAML text into a [JSONValue]. spec.md §9
// leaves the choice of YAML library to the implementation ("let
// implementations bind whichever YAML library is available"); mmark binds
// [gopkg.in/yaml.v3] by default, following its use throughout the example
// pack (spectr, AleutianLocal, vuego all carry it).
type YAMLDecoder interface {
	// DecodeYAML decodes text, returning the offset (relative to the start
	// of text) and message of the first error encountered.
	DecodeYAML(text string) (JSONValue, int, string, error)
}

// defaultYAMLDecoder is the default [YAMLDecoder], backed by yaml.v3.
type defaultYAMLDecoder struct{}

// DefaultYAMLDecoder is the [YAMLDecoder] used by [Parse] unless overridden.
var DefaultYAMLDecoder YAMLDecoder = defaultYAMLDecoder{}

func (defaultYAMLDecoder) DecodeYAML(text string) (JSONValue, int, string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		offset, msg := yamlErrorPosition(text, err)
		return nil, offset, msg, err
	}
	if len(node.Content) == 0 {
		return map[string]any{}, 0, "", nil
	}
	val, err := nodeToJSON(node.Content[0])
	if err != nil {
		offset, msg := yamlErrorPosition(text, err)
		return nil, offset, msg, err
	}
	return val, 0, "", nil
}

// nodeToJSON converts a decoded yaml.Node into a JSONValue tree, since
// yaml.v3's generic Unmarshal target (yaml.Node) doesn't directly give us
// plain Go values the way json.Unmarshal does for interface{}.
func nodeToJSON(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeToJSON(n.Content[0])
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, err := nodeToJSON(n.Content[i])
			if err != nil {
				return nil, err
			}
			val, err := nodeToJSON(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[keyString(key)] = val
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, len(n.Content))
		for i, c := range n.Content {
			val, err := nodeToJSON(c)
			if err != nil {
				return nil, err
			}
			s[i] = val
		}
		return s, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case yaml.AliasNode:
		return nodeToJSON(n.Alias)
	default:
		return nil, nil
	}
}

func keyString(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	default:
		return fmt.Sprint(v)
	}
}

// yamlErrorPosition extracts a best-effort (offset, message) pair from a
// yaml.v3 error. yaml.v3 reports line numbers (not byte offsets) in its
// *yaml.TypeError messages; we translate the first referenced line number
// to a byte offset within text, falling back to offset 0 when no line
// number can be recovered.
func yamlErrorPosition(text string, err error) (int, string) {
	msg := err.Error()
	line := firstLineNumber(msg)
	if line <= 1 {
		return 0, msg
	}
	lines := strings.SplitAfter(text, "\n")
	offset := 0
	for i := 0; i < line-1 && i < len(lines); i++ {
		offset += len(lines[i])
	}
	return offset, msg
}

// firstLineNumber scans a yaml.v3 error message of the form
// "yaml: line N: ..." for the line number, returning 0 if none is found.
func firstLineNumber(msg string) int {
	const marker = "line "
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return 0
	}
	rest := msg[idx+len(marker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return n
}
