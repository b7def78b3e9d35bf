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

// BlockTrans and InlineTrans let an [Extension] rewrite the tree between
// parsing and rendering (e.g. to add IDs, collect a table of contents).
type BlockTrans func(*Block) *Block
type InlineTrans func(*Inline) *Inline

// Extension is four independently composable fields, per spec.md §6: a
// block tree transform, an inline tree transform, a block renderer
// layer, and an inline renderer layer. Composing two Extensions composes
// each field independently; the identity Extension is the identity on
// every field.
type Extension struct {
	BlockTrans   BlockTrans
	InlineTrans  InlineTrans
	BlockRender  Render[*Block]
	InlineRender Render[*Inline]
}

// IdentityExtension is the identity element of extension composition.
func IdentityExtension() Extension {
	return Extension{
		BlockTrans:   func(b *Block) *Block { return b },
		InlineTrans:  func(in *Inline) *Inline { return in },
		BlockRender:  IdentityRender[*Block](),
		InlineRender: IdentityRender[*Inline](),
	}
}

// Compose combines e and other, applying e's transforms/renders first.
// Composition is the monoidal operation spec.md §6 describes for each of
// the four fields: (f⊕g)(t, h) = g(t, f(t, h)) for the renderer fields,
// and straight function composition for the tree-transform fields.
func (e Extension) Compose(other Extension) Extension {
	return Extension{
		BlockTrans: func(b *Block) *Block {
			return other.BlockTrans(e.BlockTrans(b))
		},
		InlineTrans: func(in *Inline) *Inline {
			return other.InlineTrans(e.InlineTrans(in))
		},
		BlockRender:  e.BlockRender.Compose(other.BlockRender),
		InlineRender: e.InlineRender.Compose(other.InlineRender),
	}
}

// ComposeExtensions folds Compose over exts in order, starting from the
// identity extension.
func ComposeExtensions(exts ...Extension) Extension {
	result := IdentityExtension()
	for _, e := range exts {
		result = result.Compose(e)
	}
	return result
}

// BlockTransform builds an Extension whose only effect is to rewrite
// every block in the tree via f, run bottom-up (children transformed
// before their parent sees them).
func BlockTransform(f BlockTrans) Extension {
	ext := IdentityExtension()
	ext.BlockTrans = f
	return ext
}

// InlineTransform builds an Extension whose only effect is to rewrite
// every inline node in the tree via f.
func InlineTransform(f InlineTrans) Extension {
	ext := IdentityExtension()
	ext.InlineTrans = f
	return ext
}

// BlockRenderer builds an Extension whose only effect is to layer r onto
// block rendering.
func BlockRenderer(r Render[*Block]) Extension {
	ext := IdentityExtension()
	ext.BlockRender = r
	return ext
}

// InlineRenderer builds an Extension whose only effect is to layer r
// onto inline rendering.
func InlineRenderer(r Render[*Inline]) Extension {
	ext := IdentityExtension()
	ext.InlineRender = r
	return ext
}

// applyBlockTrans applies f recursively, bottom-up, over the block tree.
func applyBlockTrans(blocks []*Block, f BlockTrans) []*Block {
	for _, b := range blocks {
		b.Children = applyBlockTrans(b.Children, f)
		for i, item := range b.Items {
			b.Items[i] = applyBlockTrans(item, f)
		}
	}
	out := make([]*Block, len(blocks))
	for i, b := range blocks {
		out[i] = f(b)
	}
	return out
}

// applyInlineTrans applies f recursively, bottom-up, over an inline tree.
func applyInlineTrans(inlines []*Inline, f InlineTrans) []*Inline {
	for _, in := range inlines {
		in.Children = applyInlineTrans(in.Children, f)
	}
	out := make([]*Inline, len(inlines))
	for i, in := range inlines {
		out[i] = f(in)
	}
	return out
}
