package doc

import "github.com/rivo/uniseg"

// graphemeLen returns the number of grapheme clusters in s.
func graphemeLen(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// graphemeByteOffset converts a grapheme offset into a byte offset, clamped to
// the string bounds.
func graphemeByteOffset(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	g := uniseg.NewGraphemes(s)
	i := 0
	for g.Next() {
		if i == offset {
			start, _ := g.Positions()
			return start
		}
		i++
	}
	return len(s)
}

// GraphemeSlice returns the grapheme clusters [start, end) of s.
func GraphemeSlice(s string, start, end int) string {
	if end < start {
		end = start
	}
	return s[graphemeByteOffset(s, start):graphemeByteOffset(s, end)]
}

// GraphemeLen returns the length of s in grapheme clusters.
func GraphemeLen(s string) int { return graphemeLen(s) }

// SetText replaces the text of a text node.
func (tx *Txn) SetText(k Key, text string) {
	Assert(tx.IsText(k), "SetText: %q is not a text node", k)
	if tx.Node(k).text == text {
		return
	}
	tx.Writable(k).text = text
	tx.clampTextPoints(k)
}

// TextSize returns the length of a text node in grapheme clusters.
func (tx *Txn) TextSize(k Key) int {
	return graphemeLen(tx.MustNode(k).text)
}

// SpliceText deletes delCount grapheme clusters at offset and inserts s.
// Selection points inside the node are kept in place relative to the text.
func (tx *Txn) SpliceText(k Key, offset, delCount int, s string) {
	Assert(tx.IsText(k), "SpliceText: %q is not a text node", k)
	text := tx.Node(k).text
	size := graphemeLen(text)
	if offset < 0 {
		offset = 0
	}
	if offset > size {
		offset = size
	}
	if offset+delCount > size {
		delCount = size - offset
	}
	from := graphemeByteOffset(text, offset)
	to := graphemeByteOffset(text, offset+delCount)
	tx.Writable(k).text = text[:from] + s + text[to:]

	inserted := graphemeLen(s)
	tx.eachPoint(func(p *Point) {
		if p.Key != k || p.Type != PointText {
			return
		}
		switch {
		case p.Offset > offset+delCount:
			p.Offset += inserted - delCount
		case p.Offset > offset:
			p.Offset = offset + inserted
		}
	})
}

// SplitText splits a text node at the given grapheme offsets and returns the
// resulting nodes in order. The first node keeps the original key. Offsets at
// the node boundaries are ignored.
func (tx *Txn) SplitText(k Key, offsets ...int) []Key {
	Assert(tx.IsText(k), "SplitText: %q is not a text node", k)
	n := tx.Node(k)
	text := n.text
	size := graphemeLen(text)

	var cuts []int
	last := 0
	for _, o := range offsets {
		if o > last && o < size {
			cuts = append(cuts, o)
			last = o
		}
	}
	if len(cuts) == 0 {
		return []Key{k}
	}

	parts := make([]string, 0, len(cuts)+1)
	prev := 0
	for _, c := range append(cuts, size) {
		parts = append(parts, GraphemeSlice(text, prev, c))
		prev = c
	}

	format, style := n.textFormat, n.style
	tx.Writable(k).text = parts[0]
	keys := []Key{k}
	after := k
	starts := append([]int{0}, cuts...)
	for i, part := range parts[1:] {
		nk := tx.CreateText(part)
		tx.pending[nk].textFormat = format
		tx.pending[nk].style = style
		if tx.Parent(k) != "" {
			tx.InsertAfterBase(after, nk)
		}
		keys = append(keys, nk)
		after = nk

		lo, hi := starts[i+1], size
		if i+2 < len(starts) {
			hi = starts[i+2]
		}
		tx.eachPoint(func(p *Point) {
			if p.Key == k && p.Type == PointText && p.Offset > lo && p.Offset <= hi {
				p.Key = nk
				p.Offset -= lo
			}
		})
	}
	return keys
}

// clampTextPoints keeps selection points inside the text after it changed.
func (tx *Txn) clampTextPoints(k Key) {
	size := tx.TextSize(k)
	tx.eachPoint(func(p *Point) {
		if p.Key == k && p.Type == PointText && p.Offset > size {
			p.Offset = size
		}
	})
}
