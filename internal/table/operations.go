package table

import (
	"slices"

	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
)

// InsertRow adds a row of empty cells above or below the rows covered by
// cell. Cells spanning across the insertion point grow instead of receiving
// a new cell.
func InsertRow(tx *doc.Txn, cell doc.Key, above bool) doc.Key {
	t := MustTableOf(tx, cell)
	m := MapOf(tx, t)
	at := m.MustCell(cell)
	r := at.LastRow()
	if above {
		r = at.Row
	}
	row := CreateRow(tx)
	for c := range m.Columns() {
		s := m.At(r, c)
		edge := s.LastRow()
		if above {
			edge = s.Row
		}
		switch {
		case edge == r:
			tx.AppendBase(row, CreateCell(tx))
		case s.Col == c:
			SetRowSpan(tx, s.Cell, s.RowSpan+1)
		}
	}
	target := tx.ChildAt(t, r)
	if above {
		tx.InsertBefore(target, row)
	} else {
		tx.InsertAfter(target, row)
	}
	return row
}

// InsertColumn adds a column of empty cells left or right of the columns
// covered by cell and returns the new cell of the first row that got one.
func InsertColumn(tx *doc.Txn, cell doc.Key, left bool) doc.Key {
	t := MustTableOf(tx, cell)
	m := MapOf(tx, t)
	at := m.MustCell(cell)
	col := at.LastCol()
	if left {
		col = at.Col
	}
	var first doc.Key
	for r := range m.Rows() {
		s := m.At(r, col)
		edge := s.LastCol()
		if left {
			edge = s.Col
		}
		if edge != col {
			if s.Row == r {
				SetColSpan(tx, s.Cell, s.ColSpan+1)
			}
			continue
		}
		added := CreateCell(tx)
		if first == "" {
			first = added
		}
		switch {
		case s.Row == r && left:
			tx.InsertBefore(s.Cell, added)
		case s.Row == r:
			tx.InsertAfter(s.Cell, added)
		default:
			// The slot belongs to a cell spanning down from above: put the
			// new cell before the next cell anchored in this row.
			insertInRow(tx, m, tx.ChildAt(t, r), r, col+1, added)
		}
	}

	widths := ColumnWidths(tx, t)
	at2 := col + 1
	if left {
		at2 = col
	}
	if at2 <= len(widths) {
		SetColumnWidths(tx, t, slices.Insert(widths, at2, 0))
	}
	return first
}

// insertInRow puts cell into row r before the first cell anchored in that
// row at or after column from.
func insertInRow(tx *doc.Txn, m *Map, row doc.Key, r, from int, cell doc.Key) {
	for c := from; c < m.Columns(); c++ {
		if s := m.At(r, c); s.Row == r {
			tx.InsertBefore(s.Cell, cell)
			return
		}
	}
	tx.Append(row, cell)
}

// DeleteRows removes the grid rows [start, end) of table t. Cells spanning
// into the range from above shrink; cells spanning out of it below move to
// the first remaining row and shrink. Removing every row removes the table.
func DeleteRows(tx *doc.Txn, t doc.Key, start, end int) {
	m := MapOf(tx, t)
	rows, columns := m.Rows(), m.Columns()
	doc.Assert(start >= 0 && start < end && end <= rows, "invalid row range [%d,%d) of %d rows", start, end, rows)

	if start == 0 && end == rows {
		block.SelectPrevious(tx, t)
		tx.Remove(t)
		return
	}

	for c := range columns {
		for r := start; r < end; {
			s := m.At(r, c)
			if s.Col == c {
				switch {
				case s.Row < start:
					overlap := min(end, s.Row+s.RowSpan) - start
					SetRowSpan(tx, s.Cell, s.RowSpan-overlap)
				case s.LastRow() >= end:
					insertInRow(tx, m, tx.ChildAt(t, end), end, s.LastCol()+1, s.Cell)
					SetRowSpan(tx, s.Cell, s.RowSpan-(end-s.Row))
				}
			}
			r = s.Row + s.RowSpan
		}
	}

	removed := tx.Children(t)[start:end]
	next := tx.NextSibling(removed[len(removed)-1])
	for _, row := range removed {
		tx.Remove(row)
	}
	if next != "" {
		tx.SelectStart(next)
	} else {
		tx.SelectEnd(t)
	}
}

// DeleteColumns removes the grid columns [start, end) of table t. Cells
// spanning over the range edges shrink; cells inside it are removed.
// Removing every column removes the table.
func DeleteColumns(tx *doc.Txn, t doc.Key, start, end int) {
	m := MapOf(tx, t)
	rows, columns := m.Rows(), m.Columns()
	doc.Assert(start >= 0 && start < end && end <= columns, "invalid column range [%d,%d) of %d columns", start, end, columns)

	if start == 0 && end == columns {
		block.SelectPrevious(tx, t)
		tx.Remove(t)
		return
	}

	for r := range rows {
		for c := start; c < end; {
			s := m.At(r, c)
			if s.Row == r {
				switch {
				case s.Col < start:
					overlap := min(end, s.Col+s.ColSpan) - start
					SetColSpan(tx, s.Cell, s.ColSpan-overlap)
				case s.LastCol() >= end:
					SetColSpan(tx, s.Cell, s.ColSpan-(end-s.Col))
				default:
					tx.Remove(s.Cell)
				}
			}
			c = s.Col + s.ColSpan
		}
	}

	if widths := ColumnWidths(tx, t); start < len(widths) {
		SetColumnWidths(tx, t, slices.Delete(widths, start, min(end, len(widths))))
	}

	focus := m.At(0, end).Cell
	if end == columns {
		focus = m.At(0, start-1).Cell
	}
	tx.SelectStart(focus)
}

// MergeCells turns the selected rectangle into its first cell. The content
// of the other cells moves into it.
func MergeCells(tx *doc.Txn, s *Selection) doc.Key {
	cells := s.Nodes(tx)
	doc.Assert(len(cells) > 0, "merge of an empty cell selection")
	b := s.Boundary(tx)
	first := cells[0]
	SetColSpan(tx, first, b.MaxCol-b.MinCol+1)
	SetRowSpan(tx, first, b.MaxRow-b.MinRow+1)
	for _, c := range cells[1:] {
		if content := tx.Children(c); len(content) > 0 {
			tx.Append(first, content...)
		}
		tx.Remove(c)
	}
	return first
}

// UnmergeCell splits a spanning cell into single cells. The cell keeps its
// content and its top-left slot; the other slots get empty cells.
func UnmergeCell(tx *doc.Txn, cell doc.Key) {
	t := MustTableOf(tx, cell)
	m := MapOf(tx, t)
	at := m.MustCell(cell)

	for i := 1; i < at.ColSpan; i++ {
		tx.InsertAfter(cell, CreateCell(tx))
	}
	SetColSpan(tx, cell, 1)

	row := tx.Parent(cell)
	for i := 1; i < at.RowSpan; i++ {
		row = tx.NextSibling(row)
		r := at.Row + i
		fill := make([]doc.Key, at.ColSpan)
		for j := range fill {
			fill[j] = CreateCell(tx)
		}
		switch prev, next := anchoredBefore(m, r, at.Col), anchoredAfter(m, r, at.LastCol()); {
		case prev != "":
			for j := len(fill) - 1; j >= 0; j-- {
				tx.InsertAfter(prev, fill[j])
			}
		case next != "":
			for _, f := range fill {
				tx.InsertBefore(next, f)
			}
		default:
			tx.Append(row, fill...)
		}
	}
	SetRowSpan(tx, cell, 1)
}

// anchoredBefore returns the nearest cell anchored in row r left of col.
func anchoredBefore(m *Map, r, col int) doc.Key {
	for c := col - 1; c >= 0; c-- {
		if s := m.At(r, c); s.Row == r {
			return s.Cell
		}
	}
	return ""
}

// anchoredAfter returns the nearest cell anchored in row r right of col.
func anchoredAfter(m *Map, r, col int) doc.Key {
	for c := col + 1; c < m.Columns(); c++ {
		if s := m.At(r, c); s.Row == r {
			return s.Cell
		}
	}
	return ""
}

// CopyToTable replaces the content of the cells starting at start with the
// content of grid, row by row. Extra grid cells are ignored. Copying stops
// at the first cell whose spans differ from the grid cell, leaving the cells
// copied so far in place. It returns the last cell visited.
func CopyToTable(tx *doc.Txn, start doc.Key, grid [][]doc.Key) doc.Key {
	m := MapOf(tx, MustTableOf(tx, start))
	at := m.MustCell(start)
	cell := start
	row, startCol := at.Row, at.Col
	rows := min(len(grid), m.Rows()-row)

copying:
	for i := 0; i < rows; i, row = i+1, row+1 {
		if m.At(row, startCol).Col != startCol {
			break
		}
		col := startCol
		for j := 0; j < len(grid[i]) && col < m.Columns(); {
			s := m.At(row, col)
			cell = s.Cell
			if s.Row != row {
				col += s.ColSpan
				continue
			}
			src := grid[i][j]
			if s.ColSpan != ColSpan(tx, src) || s.RowSpan != RowSpan(tx, src) {
				break copying
			}
			tx.Clear(cell)
			if content := tx.Children(src); len(content) > 0 {
				tx.Append(cell, content...)
			}
			col += s.ColSpan
			j++
		}
	}
	return cell
}

// clearCells empties the selected cells, or removes the table when every
// cell is selected.
func clearCells(tx *doc.Txn, s *Selection) {
	cells := s.Nodes(tx)
	if len(cells) == 0 {
		return
	}
	m := MapOf(tx, s.Table)
	if cells[0] == m.At(0, 0).Cell && cells[len(cells)-1] == m.At(m.Rows()-1, m.Columns()-1).Cell {
		block.SelectPrevious(tx, s.Table)
		tx.Remove(s.Table)
		return
	}
	for _, c := range cells {
		tx.Clear(c)
	}
	tx.SelectEnd(s.Focus)
}

type direction int

const (
	up direction = iota
	down
	left
	right
)

// navigate moves the caret from the cell at the focus to a neighbor cell.
// Moving up or down past the table edge leaves the table. A cell selection
// collapses to its focus cell.
func navigate(tx *doc.Txn, dir direction) bool {
	switch sel := tx.Selection().(type) {
	case *Selection:
		tx.SelectEnd(sel.Focus)
		return true
	case *doc.RangeSelection:
		cell := CellAt(tx, sel.Focus)
		if cell == "" {
			return false
		}
		switch dir {
		case up, down:
			moveVertically(tx, cell, dir)
		case left:
			if prev := adjacentCell(tx, cell, true); prev != "" {
				tx.SelectEnd(prev)
			}
		case right:
			if next := adjacentCell(tx, cell, false); next != "" {
				tx.SelectStart(next)
			}
		}
		return true
	}
	return false
}

func moveVertically(tx *doc.Txn, cell doc.Key, dir direction) {
	t := MustTableOf(tx, cell)
	m := MapOf(tx, t)
	at := m.MustCell(cell)
	col := at.Col
	current := at
	for r := at.Row; ; {
		if dir == down {
			r += current.RowSpan
		} else {
			r--
		}
		switch {
		case r < 0:
			block.SelectPrevious(tx, t)
			return
		case r >= m.Rows():
			block.SelectNext(tx, t)
			return
		}
		// Cells spanning in from a column on the left are skipped.
		s := m.At(r, col)
		if s.Col == col {
			if dir == down {
				tx.SelectStart(s.Cell)
			} else {
				tx.SelectEnd(s.Cell)
			}
			return
		}
		current = s
	}
}

// adjacentCell returns the cell before or after cell in reading order,
// crossing rows, or "".
func adjacentCell(tx *doc.Txn, cell doc.Key, backward bool) doc.Key {
	sibling := tx.NextSibling
	edge := tx.FirstChild
	if backward {
		sibling, edge = tx.PrevSibling, tx.LastChild
	}
	if c := sibling(cell); c != "" {
		return c
	}
	for row := sibling(tx.Parent(cell)); row != ""; row = sibling(row) {
		if c := edge(row); c != "" {
			return c
		}
	}
	return ""
}
