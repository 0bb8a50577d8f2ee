package doc

// Select places a range selection inside k. Offsets of -1 mean the end of the
// node: its text length or its number of children.
func (tx *Txn) Select(k Key, anchorOffset, focusOffset int) *RangeSelection {
	n := tx.MustNode(k)
	typ := PointElement
	size := len(n.children)
	if n.kind == KindText {
		typ = PointText
		size = graphemeLen(n.text)
	} else {
		Assert(n.kind.IsElement(), "Select: %q cannot hold a caret", k)
	}
	if anchorOffset < 0 {
		anchorOffset = size
	}
	if focusOffset < 0 {
		focusOffset = size
	}
	rs := NewRangeSelection(Point{k, anchorOffset, typ}, Point{k, focusOffset, typ})
	tx.SetSelection(rs)
	return rs
}

// SelectStart moves the caret to the start of k.
func (tx *Txn) SelectStart(k Key) Selection {
	if c := tx.Class(k); c != nil && c.SelectStart != nil {
		return c.SelectStart(tx, k)
	}
	return tx.SelectStartBase(k)
}

// SelectStartBase moves the caret to the start of k without class overrides.
func (tx *Txn) SelectStartBase(k Key) Selection {
	d := tx.FirstDescendant(k)
	switch {
	case tx.IsText(d):
		return tx.Select(d, 0, 0)
	case tx.IsElement(d):
		return tx.Select(d, 0, 0)
	default:
		parent, idx := tx.Parent(d), tx.IndexWithinParent(d)
		return tx.Select(parent, idx, idx)
	}
}

// SelectEnd moves the caret to the end of k.
func (tx *Txn) SelectEnd(k Key) Selection {
	if c := tx.Class(k); c != nil && c.SelectEnd != nil {
		return c.SelectEnd(tx, k)
	}
	return tx.SelectEndBase(k)
}

// SelectEndBase moves the caret to the end of k without class overrides.
func (tx *Txn) SelectEndBase(k Key) Selection {
	d := tx.LastDescendant(k)
	switch {
	case tx.IsText(d), tx.IsElement(d):
		return tx.Select(d, -1, -1)
	default:
		parent, idx := tx.Parent(d), tx.IndexWithinParent(d)+1
		return tx.Select(parent, idx, idx)
	}
}

// BlockAt returns the nearest non-inline element containing the point.
func (tx *Txn) BlockAt(p Point) Key {
	return tx.FindParent(p.Key, func(k Key) bool {
		return tx.IsElement(k) && !tx.IsInline(k)
	})
}

// SplitNodeAtPoint splits node at offset and returns the parent of node and
// the index in it where the content after the split starts. Text nodes split
// by characters; elements split by children through InsertNewAfter.
func (tx *Txn) SplitNodeAtPoint(node Key, offset int) (Key, int) {
	parent := tx.Parent(node)
	Assert(tx.IsElement(parent), "expected an element parent of %q", node)

	index := tx.IndexWithinParent(node)
	if offset == 0 {
		return parent, index
	}
	if tx.IsText(node) {
		if offset < tx.TextSize(node) {
			tx.SplitText(node, offset)
		}
		return parent, index + 1
	}
	if !tx.IsElement(node) {
		return parent, index
	}

	if first := tx.ChildAt(node, offset); first != "" {
		sel := NewRangeSelection(ElementPoint(node, offset), ElementPoint(node, offset))
		if next := tx.InsertNewAfter(node, sel); next != "" {
			Assert(tx.IsElement(next), "InsertNewAfter of %q must return an element", node)
			tx.Append(next, tx.Children(node)[offset:]...)
		}
	}
	return parent, index + 1
}

// splitAtPoint splits a text point and returns the element and child index
// the point corresponds to.
func (tx *Txn) splitAtPoint(p Point) (Key, int) {
	if p.Type == PointElement {
		return p.Key, p.Offset
	}
	return tx.SplitNodeAtPoint(p.Key, p.Offset)
}

// splitUpTo splits the inline ancestors of a point until the split reaches
// block and returns the child index in block.
func (tx *Txn) splitUpTo(p Point, block Key) int {
	parent, idx := tx.splitAtPoint(p)
	for parent != block {
		parent, idx = tx.SplitNodeAtPoint(parent, idx)
	}
	return idx
}

// WrapContinuousInlines groups consecutive inline nodes into wrappers built by
// create. Non-inline nodes are kept as they are.
func (tx *Txn) WrapContinuousInlines(nodes []Key, create func() Key) []Key {
	var out, run []Key
	flush := func() {
		if len(run) > 0 {
			w := create()
			tx.Append(w, run...)
			out = append(out, w)
			run = nil
		}
	}
	for _, n := range nodes {
		if tx.IsNonInline(n) {
			flush()
			out = append(out, n)
		} else {
			run = append(run, n)
		}
	}
	flush()
	return out
}

// WrapNodeIfRequired wraps node into the parents its class requires.
func (tx *Txn) WrapNodeIfRequired(node Key) Key {
	for {
		c := tx.Class(node)
		if c == nil || !c.ParentRequired || c.CreateParent == nil {
			return node
		}
		parent := c.CreateParent(tx, node)
		tx.Append(parent, node)
		node = parent
	}
}
