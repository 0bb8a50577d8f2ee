package block

import "github.com/dshills/richdoc/internal/doc"

// IsBlock reports whether k is a block: a non-inline element or decorator
// whose class declares a block variant.
func IsBlock(tx *doc.Txn, k doc.Key) bool {
	c := tx.Class(k)
	return c != nil && !c.Inline && c.Block != doc.BlockNone
}

// IsElementBlock reports whether k is an element block or a paragraph block.
func IsElementBlock(tx *doc.Txn, k doc.Key) bool {
	switch tx.BlockKind(k) {
	case doc.BlockElement, doc.BlockParagraph:
		return IsBlock(tx, k)
	}
	return false
}

// IsDecoratorBlock reports whether k is a decorator block.
func IsDecoratorBlock(tx *doc.Txn, k doc.Key) bool {
	return tx.BlockKind(k) == doc.BlockDecorator && IsBlock(tx, k)
}

// ElementBlockClass turns c into an element block class. Element blocks do
// not take the stored indent.
func ElementBlockClass(c doc.Class) doc.Class {
	c.Kind = doc.KindElement
	c.Block = doc.BlockElement
	c.Inline = false
	c.CanIndent = false
	return c
}

// DecoratorBlockClass turns c into a decorator block class. Moving the
// caret to the start or end of a decorator block selects the whole block.
func DecoratorBlockClass(c doc.Class) doc.Class {
	c.Kind = doc.KindDecorator
	c.Block = doc.BlockDecorator
	c.Inline = false
	selectBlock := func(tx *doc.Txn, k doc.Key) doc.Selection {
		doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: k})
		return tx.Selection()
	}
	if c.SelectStart == nil {
		c.SelectStart = selectBlock
	}
	if c.SelectEnd == nil {
		c.SelectEnd = selectBlock
	}
	return c
}

// SelectPrevious moves the selection to the block before k. Element blocks
// get a caret at their end, other blocks select their end. The first block of
// the root puts the caret at the start of the root.
func SelectPrevious(tx *doc.Txn, k doc.Key) doc.Selection {
	prev := tx.PrevSibling(k)
	if prev == "" {
		parent := tx.Parent(k)
		doc.Assert(parent != "", "block %q is not attached", k)
		if parent == doc.RootKey {
			return tx.Select(doc.RootKey, 0, 0)
		}
		return SelectPrevious(tx, parent)
	}
	if IsElementBlock(tx, prev) {
		return tx.Select(prev, -1, -1)
	}
	return tx.SelectEnd(prev)
}

// SelectNext moves the selection to the block after k. When k is the last
// block of the root a new paragraph is appended and receives the caret.
func SelectNext(tx *doc.Txn, k doc.Key) doc.Selection {
	next := tx.NextSibling(k)
	if next == "" {
		parent := tx.Parent(k)
		doc.Assert(parent != "", "block %q is not attached", k)
		if parent == doc.RootKey {
			p := tx.CreateParagraph()
			tx.Append(doc.RootKey, p)
			return tx.Select(p, 0, 0)
		}
		return SelectNext(tx, parent)
	}
	if IsElementBlock(tx, next) {
		return tx.Select(next, 0, 0)
	}
	return tx.SelectStart(next)
}

// LowestCommonElementBlock returns the deepest element block containing both
// a and b, or "".
func LowestCommonElementBlock(tx *doc.Txn, a, b doc.Key) doc.Key {
	ancestors := make(map[doc.Key]bool)
	for cur := a; cur != ""; cur = tx.Parent(cur) {
		if IsElementBlock(tx, cur) {
			ancestors[cur] = true
		}
	}
	for cur := b; cur != ""; cur = tx.Parent(cur) {
		if ancestors[cur] {
			return cur
		}
	}
	return ""
}

// adjacentNode returns the node right before or after a point within its
// parent, or "".
func adjacentNode(tx *doc.Txn, p doc.Point, backward bool) doc.Key {
	if p.Type == doc.PointElement {
		if backward {
			return tx.ChildAt(p.Key, p.Offset-1)
		}
		return tx.ChildAt(p.Key, p.Offset)
	}
	if backward && p.Offset == 0 {
		return tx.PrevSibling(p.Key)
	}
	if !backward && p.Offset == tx.TextSize(p.Key) {
		return tx.NextSibling(p.Key)
	}
	return ""
}
