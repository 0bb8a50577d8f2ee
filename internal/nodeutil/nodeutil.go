// Package nodeutil holds tree helpers shared by the block, list, table and
// converter packages: point-to-block resolution, inline flattening and
// block insertion at the current selection.
package nodeutil

import "github.com/dshills/richdoc/internal/doc"

// FindMatchingSibling returns the first sibling, starting at start itself,
// that matches pred.
func FindMatchingSibling(tx *doc.Txn, start doc.Key, pred func(doc.Key) bool, backward bool) doc.Key {
	for cur := start; cur != ""; {
		if pred(cur) {
			return cur
		}
		if backward {
			cur = tx.PrevSibling(cur)
		} else {
			cur = tx.NextSibling(cur)
		}
	}
	return ""
}

// TransformToInlines flattens nodes into inline content. Block elements are
// replaced by their inline children, separated by line breaks when allowed;
// decorators become their text content.
func TransformToInlines(tx *doc.Txn, nodes []doc.Key, allowLineBreak bool) []doc.Key {
	var out []doc.Key
	for i, n := range nodes {
		switch {
		case tx.IsInline(n):
			if allowLineBreak || !tx.IsLineBreak(n) {
				out = append(out, n)
			} else if tx.Parent(n) != "" {
				tx.Remove(n)
			}
		case tx.IsElement(n):
			tx.Detach(n)
			out = append(out, TransformToInlines(tx, tx.Children(n), allowLineBreak)...)
			if allowLineBreak && i != len(nodes)-1 {
				if len(out) == 0 || !tx.IsLineBreak(out[len(out)-1]) {
					out = append(out, tx.CreateLineBreak())
				}
			}
		default:
			out = append(out, tx.CreateText(tx.TextContent(n)))
			if tx.Parent(n) != "" {
				tx.Remove(n)
			}
		}
	}
	return out
}

// BlockIfAtBlockStart returns the block whose start the point is at, or "".
func BlockIfAtBlockStart(tx *doc.Txn, p doc.Point) doc.Key {
	if p.Offset != 0 {
		return ""
	}
	node := tx.PointNode(p)
	if p.Type == doc.PointElement {
		node = p.Key
	}
	if tx.IsElement(node) && !tx.IsInline(node) {
		return node
	}
	child := node
	for parent := tx.Parent(node); parent != ""; parent = tx.Parent(parent) {
		if tx.FirstChild(parent) != child {
			return ""
		}
		if !tx.IsInline(parent) {
			return parent
		}
		child = parent
	}
	return ""
}

// BlockIfAtBlockEnd returns the block whose end the point is at, or "".
func BlockIfAtBlockEnd(tx *doc.Txn, p doc.Point) doc.Key {
	node := p.Key
	if p.Type == doc.PointText && p.Offset != tx.TextSize(node) {
		return ""
	}
	if tx.IsElement(node) && !tx.IsInline(node) {
		if p.Offset == tx.ChildrenSize(node) {
			return node
		}
		return ""
	}
	if p.Type == doc.PointElement && p.Offset != tx.ChildrenSize(node) {
		return ""
	}
	child := node
	for parent := tx.Parent(node); parent != ""; parent = tx.Parent(parent) {
		if tx.LastChild(parent) != child {
			return ""
		}
		if !tx.IsInline(parent) {
			return parent
		}
		child = parent
	}
	return ""
}

// IsAtBlockStart reports whether the point is at the start of its block.
func IsAtBlockStart(tx *doc.Txn, p doc.Point) bool { return BlockIfAtBlockStart(tx, p) != "" }

// IsAtBlockEnd reports whether the point is at the end of its block.
func IsAtBlockEnd(tx *doc.Txn, p doc.Point) bool { return BlockIfAtBlockEnd(tx, p) != "" }

// IsAtNodeEnd reports whether the point is at the end of its node.
func IsAtNodeEnd(tx *doc.Txn, p doc.Point) bool {
	if p.Type == doc.PointText {
		return p.Offset == tx.TextSize(p.Key)
	}
	return p.Offset == tx.ChildrenSize(p.Key)
}

// ElementAtPoint returns the element holding the point.
func ElementAtPoint(tx *doc.Txn, p doc.Point) doc.Key {
	node := p.Key
	if p.Type == doc.PointText {
		node = tx.Parent(node)
	}
	if tx.IsElement(node) {
		return node
	}
	return ""
}

// BlockElementAtPoint returns the nearest non-inline element containing the point.
func BlockElementAtPoint(tx *doc.Txn, p doc.Point) doc.Key {
	return tx.BlockAt(p)
}

// TryInsertBlock inserts block after the block holding the selection,
// replacing it if it is an empty paragraph. Without a selection the block is
// appended to the root. It returns "" when no position could be found.
func TryInsertBlock(tx *doc.Txn, block doc.Key, sel doc.Selection) doc.Key {
	if sel == nil {
		tx.Append(doc.RootKey, block)
		return block
	}
	var target doc.Key
	if rs, ok := sel.(*doc.RangeSelection); ok {
		rs.RemoveText(tx)
		target = tx.BlockAt(rs.Anchor)
	} else {
		nodes := sel.Nodes(tx)
		if len(nodes) == 0 {
			return ""
		}
		target = tx.FindParent(nodes[len(nodes)-1], func(k doc.Key) bool {
			return tx.IsElement(k) && !tx.IsInline(k)
		})
	}
	if target == "" {
		return ""
	}
	if target == doc.RootKey {
		tx.Append(doc.RootKey, block)
		return block
	}
	if tx.BlockKind(target) == doc.BlockParagraph && tx.IsEmpty(target) {
		tx.Replace(target, block, false)
	} else {
		tx.InsertAfter(target, block)
	}
	return block
}

// InsertAsInlines flattens nodes and inserts them at the caret, which must be
// inside parent. The caret ends up after the inserted content.
func InsertAsInlines(tx *doc.Txn, sel *doc.RangeSelection, parent doc.Key, nodes []doc.Key) {
	sel.RemoveText(tx)
	node, offset := sel.Anchor.Key, sel.Anchor.Offset
	for node != parent && node != "" {
		node, offset = tx.SplitNodeAtPoint(node, offset)
	}
	after := tx.ChildAt(parent, offset)
	inlines := TransformToInlines(tx, nodes, true)
	if after != "" {
		for _, n := range inlines {
			tx.InsertBefore(after, n)
		}
		tx.SelectStart(after)
		return
	}
	tx.Append(parent, inlines...)
	tx.Select(parent, -1, -1)
}
