package doc

// Core node types.
const (
	TypeRoot      = "root"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeLineBreak = "linebreak"
)

func registerCoreClasses(r *Registry) {
	for _, c := range []Class{
		{Type: TypeRoot, Kind: KindRoot},
		ParagraphClass(),
		{Type: TypeText, Kind: KindText, Inline: true, Transform: normalizeText},
		{Type: TypeLineBreak, Kind: KindLineBreak, Inline: true},
	} {
		if !r.Has(c.Type) {
			_ = r.Register(c)
		}
	}
}

// ParagraphClass returns the class of the default block.
func ParagraphClass() Class {
	return Class{
		Type:      TypeParagraph,
		Kind:      KindElement,
		Block:     BlockParagraph,
		CanIndent: true,
		InsertNewAfter: func(tx *Txn, k Key, _ *RangeSelection) Key {
			p := tx.CreateParagraph()
			tx.SetDirection(p, tx.MustNode(k).direction)
			tx.InsertAfter(k, p)
			return p
		},
		CollapseAtStart: collapseParagraphAtStart,
		Transform:       liftBlocksOutOfParagraph,
	}
}

func collapseParagraphAtStart(tx *Txn, k Key, _ *RangeSelection) bool {
	first := tx.FirstChild(k)
	if first != "" && !(tx.IsText(first) && isBlank(tx.Node(first).text)) {
		return false
	}
	if next := tx.NextSibling(k); next != "" {
		tx.SelectStart(next)
		tx.Remove(k)
		return true
	}
	if prev := tx.PrevSibling(k); prev != "" {
		tx.SelectEnd(prev)
		tx.Remove(k)
		return true
	}
	return false
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// liftBlocksOutOfParagraph moves non-inline children after the paragraph,
// splitting the surrounding inline content into sibling paragraphs.
func liftBlocksOutOfParagraph(tx *Txn, k Key) {
	children := tx.Children(k)
	hasBlock := false
	for _, c := range children {
		if tx.IsNonInline(c) {
			hasBlock = true
			break
		}
	}
	if !hasBlock || tx.Parent(k) == "" {
		return
	}
	after, cur := k, k
	for _, c := range children {
		switch {
		case tx.IsNonInline(c):
			after = tx.InsertAfterBase(after, c)
			cur = ""
		case cur == "":
			cur = tx.CreateParagraph()
			after = tx.InsertAfterBase(after, cur)
			tx.AppendBase(cur, c)
		case cur != k:
			tx.AppendBase(cur, c)
		}
	}
	if tx.IsEmpty(k) {
		tx.Remove(k)
	}
}

// normalizeText drops empty text nodes and merges a text node with adjacent
// siblings of the same format and style.
func normalizeText(tx *Txn, k Key) {
	if tx.Node(k).text == "" {
		if !tx.hasPointIn(k) {
			tx.Remove(k)
		}
		return
	}
	if prev := tx.PrevSibling(k); tx.canMergeText(prev, k) {
		tx.mergeText(prev, k)
		k = prev
	}
	for next := tx.NextSibling(k); tx.canMergeText(k, next); next = tx.NextSibling(k) {
		tx.mergeText(k, next)
	}
}

func (tx *Txn) canMergeText(a, b Key) bool {
	na, nb := tx.Node(a), tx.Node(b)
	if na == nil || nb == nil || na.kind != KindText || nb.kind != KindText {
		return false
	}
	return na.typ == nb.typ && na.textFormat == nb.textFormat && na.style == nb.style && nb.text != ""
}

// mergeText appends the text of next to k and removes next.
func (tx *Txn) mergeText(k, next Key) {
	size := tx.TextSize(k)
	tx.Writable(k).text += tx.Node(next).text
	tx.eachPoint(func(p *Point) {
		if p.Key == next && p.Type == PointText {
			*p = TextPoint(k, p.Offset+size)
		}
	})
	tx.Remove(next)
}

func (tx *Txn) hasPointIn(k Key) bool {
	rs, ok := tx.selection.(*RangeSelection)
	return ok && rs != nil && (rs.Anchor.Key == k || rs.Focus.Key == k)
}
