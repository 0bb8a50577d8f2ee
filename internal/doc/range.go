package doc

import "strings"

// RangeSelection selects the content between two points. Text offsets count
// grapheme clusters.
type RangeSelection struct {
	Anchor Point
	Focus  Point
	// Format is applied to text typed at a collapsed caret.
	Format TextFormat
	Style  string

	dirty  bool
	cached []Key
}

// NewRangeSelection creates a range selection.
func NewRangeSelection(anchor, focus Point) *RangeSelection {
	return &RangeSelection{Anchor: anchor, Focus: focus, dirty: true}
}

// SetPoints moves both ends of the selection.
func (s *RangeSelection) SetPoints(anchor, focus Point) {
	s.Anchor, s.Focus = anchor, focus
	s.dirty = true
	s.cached = nil
}

// Clone implements Selection.
func (s *RangeSelection) Clone() Selection {
	c := *s
	c.cached = nil
	return &c
}

// Is implements Selection.
func (s *RangeSelection) Is(other Selection) bool {
	o, ok := other.(*RangeSelection)
	return ok && o.Anchor == s.Anchor && o.Focus == s.Focus && o.Format == s.Format && o.Style == s.Style
}

// IsCollapsed implements Selection.
func (s *RangeSelection) IsCollapsed() bool { return s.Anchor == s.Focus }

// Dirty implements Selection.
func (s *RangeSelection) Dirty() bool { return s.dirty }

// SetDirty implements Selection.
func (s *RangeSelection) SetDirty(dirty bool) {
	s.dirty = dirty
	if dirty {
		s.cached = nil
	}
}

// IsBackward reports whether the focus precedes the anchor.
func (s *RangeSelection) IsBackward(tx *Txn) bool {
	return tx.ComparePoints(s.Focus, s.Anchor) < 0
}

// StartEnd returns the points in document order.
func (s *RangeSelection) StartEnd(tx *Txn) (Point, Point) {
	if s.IsBackward(tx) {
		return s.Focus, s.Anchor
	}
	return s.Anchor, s.Focus
}

// Nodes implements Selection. It returns the nodes from the start point to
// the end point in document order.
func (s *RangeSelection) Nodes(tx *Txn) []Key {
	if s.cached != nil && !s.dirty {
		return s.cached
	}
	start, end := s.StartEnd(tx)
	first := tx.PointNode(start)
	if s.IsCollapsed() {
		return []Key{first}
	}
	last := tx.rangeEndNode(end)
	var out []Key
	if first == last || tx.IsBefore(last, first) {
		out = []Key{first}
	} else {
		for cur := first; cur != ""; cur = tx.NextInOrder(cur) {
			out = append(out, cur)
			if cur == last {
				break
			}
		}
	}
	if !tx.ReadOnly() {
		s.cached = out
	}
	return out
}

func (tx *Txn) rangeEndNode(p Point) Key {
	if p.Type == PointText {
		return p.Key
	}
	if p.Offset > 0 {
		return tx.LastDescendant(tx.ChildAt(p.Key, p.Offset-1))
	}
	return p.Key
}

// TextContent implements Selection.
func (s *RangeSelection) TextContent(tx *Txn) string {
	start, end := s.StartEnd(tx)
	var b strings.Builder
	for i, k := range s.Nodes(tx) {
		n := tx.Node(k)
		switch n.kind {
		case KindText:
			from, to := 0, graphemeLen(n.text)
			if k == start.Key && start.Type == PointText {
				from = start.Offset
			}
			if k == end.Key && end.Type == PointText {
				to = end.Offset
			}
			b.WriteString(GraphemeSlice(n.text, from, to))
		case KindLineBreak:
			b.WriteString("\n")
		case KindDecorator:
			b.WriteString(tx.TextContent(k))
		default:
			if i > 0 && !tx.IsInline(k) && b.Len() > 0 {
				b.WriteString("\n\n")
			}
		}
	}
	return b.String()
}

func (s *RangeSelection) activate(tx *Txn) {
	tx.assertWritable()
	if tx.selection != Selection(s) {
		tx.selection = s
	}
	s.dirty = true
	s.cached = nil
}

func (s *RangeSelection) collapseTo(p Point) {
	s.Anchor, s.Focus = p, p
	s.dirty = true
	s.cached = nil
}

// caretAfter places the caret right after node.
func (s *RangeSelection) caretAfter(tx *Txn, node Key) {
	if tx.IsText(node) {
		s.collapseTo(TextPoint(node, tx.TextSize(node)))
		return
	}
	if tx.IsElement(node) && !tx.IsInline(node) {
		tx.SelectEnd(node)
		if rs, ok := tx.RangeSelection(); ok && rs != s {
			s.collapseTo(rs.Anchor)
			tx.selection = s
		}
		return
	}
	s.collapseTo(ElementPoint(tx.Parent(node), tx.IndexWithinParent(node)+1))
}

// InsertText replaces the selection with text.
func (s *RangeSelection) InsertText(tx *Txn, text string) {
	s.activate(tx)
	if !s.IsCollapsed() {
		s.RemoveText(tx)
	}
	if text == "" {
		return
	}
	p := s.Anchor
	if p.Type == PointText {
		n := tx.MustNode(p.Key)
		if n.textFormat == s.Format {
			tx.SpliceText(p.Key, p.Offset, 0, text)
			s.collapseTo(TextPoint(p.Key, p.Offset+graphemeLen(text)))
			return
		}
	}
	t := tx.CreateText(text)
	tx.SetTextFormat(t, s.Format)
	s.insertInline(tx, []Key{t})
}

// insertInline inserts inline nodes at the collapsed caret.
func (s *RangeSelection) insertInline(tx *Txn, nodes []Key) {
	parent, idx := tx.splitAtPoint(s.Anchor)
	if parent == RootKey || !tx.IsElement(parent) {
		p := tx.CreateParagraph()
		tx.AppendBase(p, nodes...)
		tx.Splice(RootKey, idx, 0, p)
	} else {
		tx.Splice(parent, idx, 0, nodes...)
	}
	s.caretAfter(tx, nodes[len(nodes)-1])
}

// InsertNodes implements Selection. Inline nodes are inserted at the caret;
// block nodes split the current block and are placed between the halves.
func (s *RangeSelection) InsertNodes(tx *Txn, nodes []Key) {
	s.activate(tx)
	if !s.IsCollapsed() {
		s.RemoveText(tx)
	}
	if len(nodes) == 0 {
		return
	}

	allInline := true
	for _, n := range nodes {
		if !tx.IsInline(n) {
			allInline = false
			break
		}
	}
	if allInline {
		s.insertInline(tx, nodes)
		return
	}

	wrapped := make([]Key, 0, len(nodes))
	for _, n := range nodes {
		wrapped = append(wrapped, tx.WrapNodeIfRequired(n))
	}
	wrapped = tx.WrapContinuousInlines(wrapped, tx.CreateParagraph)

	block := tx.BlockAt(s.Anchor)
	if block == RootKey || block == "" {
		idx := s.Anchor.Offset
		if s.Anchor.Key != RootKey {
			idx = tx.IndexWithinParent(tx.TopLevel(s.Anchor.Key)) + 1
		}
		tx.Splice(RootKey, idx, 0, wrapped...)
		s.caretAfter(tx, wrapped[len(wrapped)-1])
		return
	}

	idx := tx.splitUpTo(s.Anchor, block)
	size := tx.ChildrenSize(block)
	var after Key
	switch {
	case tx.IsEmpty(block) && tx.BlockKind(block) == BlockParagraph:
		parent := tx.Parent(block)
		pos := tx.IndexWithinParent(block)
		tx.removeNode(block, false)
		tx.Splice(parent, pos, 0, wrapped...)
	case idx == 0:
		for _, n := range wrapped {
			tx.InsertBefore(block, n)
		}
	case idx >= size:
		after = block
		for _, n := range wrapped {
			after = tx.InsertAfter(after, n)
		}
	default:
		rest := tx.Children(block)[idx:]
		tail := tx.InsertNewAfter(block, s)
		if tail == "" {
			tail = tx.CreateParagraph()
			tx.InsertAfterBase(block, tail)
		}
		tx.AppendBase(tail, rest...)
		after = block
		for _, n := range wrapped {
			after = tx.InsertAfterBase(after, n)
		}
	}
	s.caretAfter(tx, wrapped[len(wrapped)-1])
}

// InsertParagraph splits the current block at the caret. It returns the new
// block, or "" when the block cannot be split.
func (s *RangeSelection) InsertParagraph(tx *Txn) Key {
	s.activate(tx)
	if !s.IsCollapsed() {
		s.RemoveText(tx)
	}
	block := tx.BlockAt(s.Anchor)
	if block == RootKey || block == "" {
		p := tx.CreateParagraph()
		tx.Splice(RootKey, s.Anchor.Offset, 0, p)
		tx.Select(p, 0, 0)
		return p
	}

	idx := tx.splitUpTo(s.Anchor, block)
	if idx == 0 && !tx.IsEmpty(block) {
		next := tx.InsertNewAfter(block, s)
		if next == "" {
			return ""
		}
		tx.InsertBeforeBase(block, next)
		tx.SelectStart(block)
		return next
	}
	rest := tx.Children(block)[idx:]
	next := tx.InsertNewAfter(block, s)
	if next == "" {
		return ""
	}
	if tx.IsElement(next) && len(rest) > 0 {
		tx.AppendBase(next, rest...)
	}
	tx.SelectStart(next)
	return next
}

// InsertLineBreak inserts a line break at the caret. With selectStart the
// caret stays before the break.
func (s *RangeSelection) InsertLineBreak(tx *Txn, selectStart bool) {
	s.activate(tx)
	if !s.IsCollapsed() {
		s.RemoveText(tx)
	}
	br := tx.CreateLineBreak()
	s.insertInline(tx, []Key{br})
	if selectStart {
		s.collapseTo(ElementPoint(tx.Parent(br), tx.IndexWithinParent(br)))
	}
}

// RemoveText deletes the selected content and collapses the selection to
// its start. Blocks cut by the range are merged.
func (s *RangeSelection) RemoveText(tx *Txn) {
	s.activate(tx)
	if s.IsCollapsed() {
		return
	}
	start, end := s.StartEnd(tx)

	if start.Key == end.Key && start.Type == PointText && end.Type == PointText {
		s.collapseTo(start)
		tx.SpliceText(start.Key, start.Offset, end.Offset-start.Offset, "")
		return
	}

	startBlock := tx.BlockAt(start)
	endBlock := tx.BlockAt(end)

	// Split the end boundary first so the start split cannot shift it.
	var last Key
	if end.Type == PointText {
		if end.Offset > 0 {
			tx.SplitText(end.Key, end.Offset)
			last = end.Key
		} else {
			last = tx.prevInOrder(end.Key)
		}
	} else {
		last = tx.rangeEndNode(end)
		if end.Offset == 0 {
			last = tx.prevInOrder(end.Key)
		}
	}

	var first Key
	s.collapseTo(start)
	if start.Type == PointText {
		keys := tx.SplitText(start.Key, start.Offset)
		switch {
		case start.Offset == 0:
			first = start.Key
		case len(keys) > 1:
			first = keys[1]
		default:
			first = tx.skipSubtree(start.Key)
		}
	} else {
		first = tx.ChildAt(start.Key, start.Offset)
		if first == "" {
			first = tx.skipSubtree(start.Key)
		}
	}
	if first == "" || last == "" || tx.IsBefore(last, first) && first != last {
		return
	}

	var leaves, elements []Key
	for cur := first; cur != ""; cur = tx.NextInOrder(cur) {
		if tx.IsElement(cur) {
			if cur != startBlock && !tx.IsAncestorOf(cur, startBlock) && cur != endBlock {
				elements = append(elements, cur)
			}
		} else {
			leaves = append(leaves, cur)
		}
		if cur == last {
			break
		}
	}
	for _, k := range leaves {
		if tx.Exists(k) {
			tx.Remove(k)
		}
	}

	if startBlock != endBlock && startBlock != RootKey && tx.Exists(endBlock) && tx.Exists(startBlock) &&
		!tx.IsAncestorOf(endBlock, startBlock) && endBlock != RootKey {
		if rest := tx.Children(endBlock); len(rest) > 0 {
			tx.AppendBase(startBlock, rest...)
		}
		tx.Remove(endBlock)
	}
	for i := len(elements) - 1; i >= 0; i-- {
		k := elements[i]
		if tx.Exists(k) && tx.IsAttached(k) && tx.IsEmpty(k) && !tx.IsAncestorOf(k, startBlock) {
			tx.Remove(k)
		}
	}
}

// prevInOrder returns the node preceding k in a pre-order walk, skipping
// ancestors of k.
func (tx *Txn) prevInOrder(k Key) Key {
	for cur := k; cur != "" && cur != RootKey; cur = tx.Parent(cur) {
		if prev := tx.PrevSibling(cur); prev != "" {
			return tx.LastDescendant(prev)
		}
	}
	return ""
}

// skipSubtree returns the first node after the subtree of k.
func (tx *Txn) skipSubtree(k Key) Key {
	for cur := k; cur != "" && cur != RootKey; cur = tx.Parent(cur) {
		if next := tx.NextSibling(cur); next != "" {
			return next
		}
	}
	return ""
}

// FormatText toggles format on the selected text. When every selected text
// node already has the format it is removed, otherwise it is added. A
// collapsed selection toggles the format used for the next typed text.
func (s *RangeSelection) FormatText(tx *Txn, f TextFormat) {
	s.activate(tx)
	if s.IsCollapsed() {
		s.Format = s.Format.Toggle(f)
		return
	}
	backward := s.IsBackward(tx)
	start, end := s.StartEnd(tx)

	if start.Type == PointText && end.Type == PointText && start.Key == end.Key {
		keys := tx.SplitText(start.Key, start.Offset, end.Offset)
		target := keys[0]
		if start.Offset > 0 && len(keys) > 1 {
			target = keys[1]
		}
		tx.applyFormat([]Key{target}, f)
		s.selectTexts(tx, target, target, backward)
		return
	}

	if end.Type == PointText {
		tx.SplitText(end.Key, end.Offset)
	}
	if start.Type == PointText && start.Offset > 0 {
		if keys := tx.SplitText(start.Key, start.Offset); len(keys) > 1 {
			start = TextPoint(keys[1], 0)
		}
	}
	s.SetPoints(start, end)
	var texts []Key
	for _, k := range s.Nodes(tx) {
		if tx.IsText(k) && tx.TextSize(k) > 0 {
			if k == start.Key && start.Type == PointText && start.Offset >= tx.TextSize(k) {
				continue
			}
			if k == end.Key && end.Type == PointText && end.Offset == 0 {
				continue
			}
			texts = append(texts, k)
		}
	}
	if len(texts) == 0 {
		return
	}
	tx.applyFormat(texts, f)
	s.selectTexts(tx, texts[0], texts[len(texts)-1], backward)
}

func (tx *Txn) applyFormat(texts []Key, f TextFormat) {
	all := true
	for _, k := range texts {
		if !tx.Node(k).textFormat.Has(f) {
			all = false
			break
		}
	}
	for _, k := range texts {
		cur := tx.Node(k).textFormat
		if all {
			tx.SetTextFormat(k, cur&^f)
		} else {
			tx.SetTextFormat(k, cur|f)
		}
	}
}

func (s *RangeSelection) selectTexts(tx *Txn, first, last Key, backward bool) {
	a, f := TextPoint(first, 0), TextPoint(last, tx.TextSize(last))
	if backward {
		a, f = f, a
	}
	s.SetPoints(a, f)
}

// DeleteCharacter deletes one character before (backward) or after the caret.
// At a block boundary the neighboring block is merged.
func (s *RangeSelection) DeleteCharacter(tx *Txn, backward bool) {
	s.activate(tx)
	if !s.IsCollapsed() {
		s.RemoveText(tx)
		return
	}
	p := s.Anchor
	if p.Type == PointText {
		size := tx.TextSize(p.Key)
		if backward && p.Offset > 0 {
			tx.SpliceText(p.Key, p.Offset-1, 1, "")
			s.dropIfEmpty(tx, p.Key)
			return
		}
		if !backward && p.Offset < size {
			tx.SpliceText(p.Key, p.Offset, 1, "")
			s.dropIfEmpty(tx, p.Key)
			return
		}
	}

	block := tx.BlockAt(p)
	if backward {
		if tx.atBlockEdge(p, block, true) {
			if tx.CollapseAtStart(block, s) {
				return
			}
			prev := tx.PrevSibling(block)
			if prev == "" || block == RootKey {
				return
			}
			if !tx.IsElement(prev) || tx.IsInline(prev) {
				tx.Remove(prev)
				return
			}
			target := prev
			for {
				lc := tx.LastChild(target)
				if lc == "" || !tx.IsElement(lc) || tx.IsInline(lc) {
					break
				}
				target = lc
			}
			if rs, ok := tx.SelectEnd(target).(*RangeSelection); ok {
				s.collapseTo(rs.Anchor)
			}
			tx.selection = s
			if rest := tx.Children(block); len(rest) > 0 {
				tx.AppendBase(target, rest...)
			}
			tx.Remove(block)
			return
		}
		leaf := tx.leafBefore(p)
		s.deleteLeaf(tx, leaf, true)
		return
	}

	if tx.atBlockEdge(p, block, false) {
		next := tx.NextSibling(block)
		if next == "" || block == RootKey {
			return
		}
		if !tx.IsElement(next) || tx.IsInline(next) {
			tx.Remove(next)
			return
		}
		if rest := tx.Children(next); len(rest) > 0 {
			tx.AppendBase(block, rest...)
		}
		tx.Remove(next)
		return
	}
	s.deleteLeaf(tx, tx.leafAfter(p), false)
}

func (s *RangeSelection) deleteLeaf(tx *Txn, leaf Key, backward bool) {
	if leaf == "" {
		return
	}
	if tx.IsText(leaf) {
		size := tx.TextSize(leaf)
		if backward {
			s.collapseTo(TextPoint(leaf, size))
			tx.SpliceText(leaf, size-1, 1, "")
		} else {
			s.collapseTo(TextPoint(leaf, 0))
			tx.SpliceText(leaf, 0, 1, "")
		}
		s.dropIfEmpty(tx, leaf)
		return
	}
	tx.Remove(leaf)
}

func (s *RangeSelection) dropIfEmpty(tx *Txn, k Key) {
	if tx.TextSize(k) == 0 {
		tx.Remove(k)
	}
}

// atBlockEdge reports whether the point sits at the start (or end) of block.
func (tx *Txn) atBlockEdge(p Point, block Key, start bool) bool {
	if p.Type == PointText {
		if start && p.Offset != 0 {
			return false
		}
		if !start && p.Offset != tx.TextSize(p.Key) {
			return false
		}
	} else {
		if p.Key == block {
			if start {
				return p.Offset == 0
			}
			return p.Offset == tx.ChildrenSize(block)
		}
		if start && p.Offset != 0 || !start && p.Offset != tx.ChildrenSize(p.Key) {
			return false
		}
	}
	for cur := p.Key; cur != block && cur != ""; cur = tx.Parent(cur) {
		parent := tx.Parent(cur)
		if start && tx.FirstChild(parent) != cur || !start && tx.LastChild(parent) != cur {
			return false
		}
	}
	return true
}

func (tx *Txn) leafBefore(p Point) Key {
	if p.Type == PointElement && p.Offset > 0 {
		return tx.LastDescendant(tx.ChildAt(p.Key, p.Offset-1))
	}
	return tx.prevInOrder(p.Key)
}

func (tx *Txn) leafAfter(p Point) Key {
	if p.Type == PointElement {
		if c := tx.ChildAt(p.Key, p.Offset); c != "" {
			return tx.FirstDescendant(c)
		}
	}
	next := tx.skipSubtree(p.Key)
	if next == "" {
		return ""
	}
	return tx.FirstDescendant(next)
}
