package table

import (
	"strings"

	"github.com/dshills/richdoc/internal/doc"
)

// Slot is one grid position of a table map. Every slot covered by a spanning
// cell holds the same anchor: the top-left position of the cell and its
// spans.
type Slot struct {
	Cell    doc.Key
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// LastRow returns the last grid row the cell covers.
func (s Slot) LastRow() int { return s.Row + s.RowSpan - 1 }

// LastCol returns the last grid column the cell covers.
func (s Slot) LastCol() int { return s.Col + s.ColSpan - 1 }

// Map is the rectangular grid of a table.
type Map struct {
	grid  [][]Slot
	cells map[doc.Key]Slot
}

// Rows returns the number of grid rows.
func (m *Map) Rows() int { return len(m.grid) }

// Columns returns the number of grid columns.
func (m *Map) Columns() int {
	if len(m.grid) == 0 {
		return 0
	}
	return len(m.grid[0])
}

// At returns the slot at row, col.
func (m *Map) At(row, col int) Slot { return m.grid[row][col] }

// Cell returns the anchor slot of cell k.
func (m *Map) Cell(k doc.Key) (Slot, bool) {
	s, ok := m.cells[k]
	return s, ok
}

// MustCell returns the anchor slot of cell k and fails the update when the
// cell is not in the map.
func (m *Map) MustCell(k doc.Key) Slot {
	s, ok := m.cells[k]
	doc.Assert(ok, "cell %q is not in the table map", k)
	return s
}

// String draws the map with the row and column of each slot's anchor. It is
// meant for test failures.
func (m *Map) String() string {
	var b strings.Builder
	for _, row := range m.grid {
		for i, s := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(string(s.Cell))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// MapOf returns the map of table t. The map is computed once per tree
// revision of a writable transaction.
func MapOf(tx *doc.Txn, t doc.Key) *Map {
	return tx.Memo(t, "table-map", func() any { return computeMap(tx, t) }).(*Map)
}

// computeMap places cells row by row, left to right, skipping slots already
// taken by a cell spanning down from an earlier row.
func computeMap(tx *doc.Txn, t doc.Key) *Map {
	m := layout(tx, t)
	columns := m.Columns()
	for r, row := range m.grid {
		doc.Assert(len(row) == columns, "table %q row %d has %d columns, want %d", t, r, len(row), columns)
		for c, s := range row {
			doc.Assert(s.Cell != "", "table %q has no cell at %d,%d", t, r, c)
		}
	}
	return m
}

// layout builds the grid without checking that it is rectangular. Holes keep
// an empty Cell.
func layout(tx *doc.Txn, t doc.Key) *Map {
	rows := tx.Children(t)
	m := &Map{grid: make([][]Slot, len(rows)), cells: make(map[doc.Key]Slot)}
	set := func(r, c int, s Slot) {
		for len(m.grid) <= r {
			m.grid = append(m.grid, nil)
		}
		for len(m.grid[r]) <= c {
			m.grid[r] = append(m.grid[r], Slot{})
		}
		m.grid[r][c] = s
	}
	for r, row := range rows {
		doc.Assert(IsRow(tx, row), "child %q of table %q is not a row", row, t)
		col := 0
		for _, cell := range tx.Children(row) {
			doc.Assert(IsCell(tx, cell), "child %q of row %q is not a cell", cell, row)
			for col < len(m.grid[r]) && m.grid[r][col].Cell != "" {
				col++
			}
			s := Slot{Cell: cell, Row: r, Col: col, RowSpan: RowSpan(tx, cell), ColSpan: ColSpan(tx, cell)}
			for dr := range s.RowSpan {
				for dc := range s.ColSpan {
					set(r+dr, col+dc, s)
				}
			}
			m.cells[cell] = s
			col += s.ColSpan
		}
	}
	width := 0
	for _, row := range m.grid {
		width = max(width, len(row))
	}
	for r := range m.grid {
		for len(m.grid[r]) < width {
			m.grid[r] = append(m.grid[r], Slot{})
		}
	}
	return m
}

func normalizeParentTable(tx *doc.Txn, row doc.Key) {
	if t := tx.Parent(row); IsTable(tx, t) {
		normalizeTable(tx, t)
	}
}

// normalizeTable makes the grid of t rectangular: row spans reaching past
// the last row shrink and missing slots get empty cells. A table without
// cells is removed.
func normalizeTable(tx *doc.Txn, t doc.Key) {
	rows := tx.Children(t)
	m := layout(tx, t)
	if m.Columns() == 0 {
		tx.Remove(t)
		return
	}
	shrunk := false
	for k, s := range m.cells {
		if over := s.Row + s.RowSpan - len(rows); over > 0 {
			SetRowSpan(tx, k, s.RowSpan-over)
			shrunk = true
		}
	}
	if shrunk {
		m = layout(tx, t)
	}
	for r, row := range rows {
		var prev doc.Key
		for c := range m.Columns() {
			s := m.At(r, c)
			switch {
			case s.Cell == "":
				cell := CreateCell(tx)
				if prev != "" {
					tx.InsertAfterBase(prev, cell)
				} else if first := tx.FirstChild(row); first != "" {
					tx.InsertBeforeBase(first, cell)
				} else {
					tx.AppendBase(row, cell)
				}
				prev = cell
			case s.Row == r && s.Col == c:
				prev = s.Cell
			}
		}
	}
}

// appendToTable adds rows as they are. Runs of cells are wrapped in a new
// row and any other content in a new row holding a single cell.
func appendToTable(tx *doc.Txn, t doc.Key, children []doc.Key) {
	var row doc.Key
	var loose []doc.Key
	flush := func() {
		if len(loose) == 0 {
			return
		}
		cell := CreateCell(tx)
		tx.Append(cell, loose...)
		r := CreateRow(tx)
		tx.AppendBase(r, cell)
		tx.AppendBase(t, r)
		loose = nil
	}
	for _, c := range children {
		switch {
		case IsRow(tx, c):
			flush()
			row = ""
			tx.AppendBase(t, c)
		case IsCell(tx, c):
			flush()
			if row == "" {
				row = CreateRow(tx)
				tx.AppendBase(t, row)
			}
			tx.AppendBase(row, c)
		default:
			row = ""
			loose = append(loose, c)
		}
	}
	flush()
}

// appendToRow adds cells as they are and wraps runs of other content in a new
// cell.
func appendToRow(tx *doc.Txn, row doc.Key, children []doc.Key) {
	var loose []doc.Key
	flush := func() {
		if len(loose) == 0 {
			return
		}
		cell := CreateCell(tx)
		tx.Append(cell, loose...)
		tx.AppendBase(row, cell)
		loose = nil
	}
	for _, c := range children {
		if IsCell(tx, c) {
			flush()
			tx.AppendBase(row, c)
			continue
		}
		loose = append(loose, c)
	}
	flush()
}

// appendToCell keeps cells inline: elements are replaced by their content
// with line breaks between them, and decorators by their text.
func appendToCell(tx *doc.Txn, cell doc.Key, children []doc.Key) {
	for i, c := range children {
		switch {
		case tx.IsInline(c):
			tx.AppendBase(cell, c)
		case tx.IsElement(c):
			if content := tx.Children(c); len(content) > 0 {
				appendToCell(tx, cell, content)
			}
			tx.Remove(c)
			if last := tx.LastChild(cell); i < len(children)-1 && last != "" && !tx.IsLineBreak(last) {
				tx.AppendBase(cell, tx.CreateLineBreak())
			}
		default:
			text := tx.TextContent(c)
			tx.Remove(c)
			if text != "" {
				tx.AppendBase(cell, tx.CreateText(text))
			}
		}
	}
}
