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

// Visitor's VisitBlock/VisitInline are called for every node Walk
// encounters. Returning nil stops descent into that node's children;
// returning a non-nil Visitor (typically itself) continues the walk
// with that visitor.
type Visitor interface {
	VisitBlock(*Block) Visitor
	VisitInline(*Inline) Visitor
}

// Walk traverses blocks in document order, calling v.VisitBlock on each
// block and v.VisitInline on every reachable inline node.
func Walk(v Visitor, blocks []*Block) {
	for _, b := range blocks {
		bv := v.VisitBlock(b)
		if bv == nil {
			continue
		}
		WalkInline(bv, b.Inlines)
		Walk(bv, b.Children)
		for _, item := range b.Items {
			Walk(bv, item)
		}
		for _, row := range b.Rows {
			for _, cell := range row {
				WalkInline(bv, cell)
			}
		}
	}
}

// WalkInline traverses inlines in document order, calling v.VisitInline
// on each node and descending into its children.
func WalkInline(v Visitor, inlines []*Inline) {
	for _, in := range inlines {
		iv := v.VisitInline(in)
		if iv == nil {
			continue
		}
		WalkInline(iv, in.Children)
	}
}
