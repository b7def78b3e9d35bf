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

// RunScanner folds f over every block in document order, descending
// into Blockquote children and List items, per §4.4/§9. It is a plain
// left fold: f receives the accumulator and the current block, and
// returns the next accumulator.
func RunScanner[A any](blocks []*Block, init A, f func(A, *Block) A) A {
	acc := init
	for _, b := range blocks {
		acc = f(acc, b)
		acc = RunScanner(b.Children, acc, f)
		for _, item := range b.Items {
			acc = RunScanner(item, acc, f)
		}
	}
	return acc
}

// RunInlineScanner folds f over every inline node reachable from blocks,
// in document order, descending into emphasis/link/image children and
// table cells.
func RunInlineScanner[A any](blocks []*Block, init A, f func(A, *Inline) A) A {
	acc := init
	RunScanner(blocks, struct{}{}, func(_ struct{}, b *Block) struct{} {
		acc = runInlineSeqScanner(b.Inlines, acc, f)
		for _, row := range b.Rows {
			for _, cell := range row {
				acc = runInlineSeqScanner(cell, acc, f)
			}
		}
		return struct{}{}
	})
	return acc
}

func runInlineSeqScanner[A any](inlines []*Inline, acc A, f func(A, *Inline) A) A {
	for _, in := range inlines {
		acc = f(acc, in)
		acc = runInlineSeqScanner(in.Children, acc, f)
	}
	return acc
}
