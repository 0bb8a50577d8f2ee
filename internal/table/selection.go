package table

import (
	"strings"

	"github.com/dshills/richdoc/internal/doc"
)

// Boundary is an inclusive rectangle of grid slots.
type Boundary struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
}

func (b Boundary) contains(s Slot) bool {
	return s.Row >= b.MinRow && s.LastRow() <= b.MaxRow && s.Col >= b.MinCol && s.LastCol() <= b.MaxCol
}

func (b Boundary) union(s Slot) Boundary {
	b.MinRow = min(b.MinRow, s.Row)
	b.MaxRow = max(b.MaxRow, s.LastRow())
	b.MinCol = min(b.MinCol, s.Col)
	b.MaxCol = max(b.MaxCol, s.LastCol())
	return b
}

// ComputeBoundary returns the smallest rectangle that holds the anchor and
// focus cells and cuts through no spanning cell. The rectangle grows until
// every cell on its edges lies fully inside it; growing one edge can expose
// a spanning cell on another.
func ComputeBoundary(m *Map, anchor, focus doc.Key) Boundary {
	a, f := m.MustCell(anchor), m.MustCell(focus)
	b := Boundary{MinRow: a.Row, MaxRow: a.LastRow(), MinCol: a.Col, MaxCol: a.LastCol()}.union(f)
	for {
		prev := b
		for r := prev.MinRow; r <= prev.MaxRow; r++ {
			b = b.union(m.At(r, prev.MinCol)).union(m.At(r, prev.MaxCol))
		}
		for c := prev.MinCol; c <= prev.MaxCol; c++ {
			b = b.union(m.At(prev.MinRow, c)).union(m.At(prev.MaxRow, c))
		}
		if b == prev {
			return b
		}
	}
}

// Selection selects a rectangle of cells of one table, spanned by the anchor
// and focus cells.
type Selection struct {
	Table  doc.Key
	Anchor doc.Key
	Focus  doc.Key

	dirty bool
	// cache is valid for one tree revision.
	cacheSeq uint64
	boundary *Boundary
	nodes    []doc.Key
}

var _ doc.Selection = (*Selection)(nil)

// NewSelection returns a selection of the cells between anchor and focus.
func NewSelection(table, anchor, focus doc.Key) *Selection {
	return &Selection{Table: table, Anchor: anchor, Focus: focus}
}

// Set moves the selection. Cached cells are dropped.
func (s *Selection) Set(table, anchor, focus doc.Key) {
	if s.Table != table || s.Anchor != anchor || s.Focus != focus {
		s.dirty = true
	}
	s.Table, s.Anchor, s.Focus = table, anchor, focus
	s.boundary, s.nodes = nil, nil
}

func (s *Selection) fresh(tx *doc.Txn) bool {
	if s.cacheSeq != tx.Seq() {
		s.boundary, s.nodes = nil, nil
		s.cacheSeq = tx.Seq()
	}
	return !tx.ReadOnly()
}

func (s *Selection) valid(tx *doc.Txn) bool {
	return IsTable(tx, s.Table) && TableOf(tx, s.Anchor) == s.Table && TableOf(tx, s.Focus) == s.Table
}

// Boundary returns the selected rectangle.
func (s *Selection) Boundary(tx *doc.Txn) Boundary {
	cache := s.fresh(tx)
	if s.boundary != nil {
		return *s.boundary
	}
	if !s.valid(tx) {
		return Boundary{}
	}
	b := ComputeBoundary(MapOf(tx, s.Table), s.Anchor, s.Focus)
	if cache {
		s.boundary = &b
	}
	return b
}

// Nodes implements doc.Selection. It returns the selected cells in grid
// order.
func (s *Selection) Nodes(tx *doc.Txn) []doc.Key {
	cache := s.fresh(tx)
	if s.nodes != nil {
		return s.nodes
	}
	if !s.valid(tx) {
		return nil
	}
	m := MapOf(tx, s.Table)
	b := s.Boundary(tx)
	var out []doc.Key
	seen := make(map[doc.Key]bool)
	for r := b.MinRow; r <= b.MaxRow; r++ {
		for c := b.MinCol; c <= b.MaxCol; {
			slot := m.At(r, c)
			if !seen[slot.Cell] {
				seen[slot.Cell] = true
				out = append(out, slot.Cell)
			}
			c += slot.ColSpan
		}
	}
	if cache {
		s.nodes = out
	}
	return out
}

// IsWholeTable reports whether every cell of the table is selected.
func (s *Selection) IsWholeTable(tx *doc.Txn) bool {
	if !s.valid(tx) {
		return false
	}
	b := s.Boundary(tx)
	m := MapOf(tx, s.Table)
	return b.MinRow == 0 && b.MinCol == 0 && b.MaxRow == m.Rows()-1 && b.MaxCol == m.Columns()-1
}

// TextContent implements doc.Selection. Cells of a row are separated by
// tabs and rows end with a newline.
func (s *Selection) TextContent(tx *doc.Txn) string {
	nodes := s.Nodes(tx)
	var b strings.Builder
	for i, k := range nodes {
		b.WriteString(tx.TextContent(k))
		if i+1 < len(nodes) && tx.Parent(nodes[i+1]) == tx.Parent(k) {
			b.WriteByte('\t')
		} else {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Clone implements doc.Selection.
func (s *Selection) Clone() doc.Selection {
	c := NewSelection(s.Table, s.Anchor, s.Focus)
	c.dirty = s.dirty
	return c
}

// Is implements doc.Selection.
func (s *Selection) Is(other doc.Selection) bool {
	o, ok := other.(*Selection)
	return ok && o.Table == s.Table && o.Anchor == s.Anchor && o.Focus == s.Focus
}

// IsCollapsed implements doc.Selection.
func (s *Selection) IsCollapsed() bool { return false }

// InsertNodes implements doc.Selection. Cell selections do not take content;
// pasting goes through the clipboard handlers.
func (s *Selection) InsertNodes(*doc.Txn, []doc.Key) {}

// Dirty implements doc.Selection.
func (s *Selection) Dirty() bool { return s.dirty }

// SetDirty implements doc.Selection.
func (s *Selection) SetDirty(dirty bool) {
	s.dirty = dirty
	if dirty {
		s.boundary, s.nodes = nil, nil
	}
}

// SelectCells selects the cells between anchor and focus, which must be in
// the same table. An active cell selection is moved rather than replaced.
func SelectCells(tx *doc.Txn, anchor, focus doc.Key) *Selection {
	t := MustTableOf(tx, anchor)
	doc.Assert(TableOf(tx, focus) == t, "cells %q and %q are in different tables", anchor, focus)
	var s *Selection
	if prev, ok := tx.Selection().(*Selection); ok {
		s = prev.Clone().(*Selection)
		s.Set(t, anchor, focus)
	} else {
		s = NewSelection(t, anchor, focus)
		s.dirty = true
	}
	tx.SetSelection(s)
	return s
}

// ToNodeSelection returns a node selection of the selected cells and all of
// their descendants. When the whole table is selected the table and its rows
// are included too, so serializers copy the table rather than loose cells.
func ToNodeSelection(tx *doc.Txn, s *Selection) *doc.NodeSelection {
	ns := doc.NewNodeSelection()
	if s.IsWholeTable(tx) {
		ns.Add(s.Table)
		for _, row := range tx.Children(s.Table) {
			ns.Add(row)
		}
	}
	var add func(k doc.Key)
	add = func(k doc.Key) {
		ns.Add(k)
		for _, c := range tx.Children(k) {
			add(c)
		}
	}
	for _, k := range s.Nodes(tx) {
		add(k)
	}
	return ns
}
