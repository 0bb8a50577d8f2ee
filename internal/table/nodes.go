package table

import (
	"fmt"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
)

// Node types.
const (
	TypeTable = "table"
	TypeRow   = "tablerow"
	TypeCell  = "tablecell"
)

// Table is the payload of tables. A zero column width leaves the width to
// the renderer.
type Table struct {
	ColumnWidths []float64
	Scrollable   bool
	// HeaderRow renders the first row as header cells.
	HeaderRow bool
}

// ClonePayload implements doc.Payload.
func (t *Table) ClonePayload() doc.Payload {
	c := *t
	c.ColumnWidths = slices.Clone(t.ColumnWidths)
	return &c
}

// Cell is the payload of table cells. Spans are at least 1.
type Cell struct {
	ColSpan int
	RowSpan int
}

// ClonePayload implements doc.Payload.
func (c *Cell) ClonePayload() doc.Payload {
	cc := *c
	return &cc
}

// Classes returns the node classes of the package.
func Classes() []doc.Class {
	return []doc.Class{TableClass(), RowClass(), CellClass()}
}

// TableClass returns the class of tables.
func TableClass() doc.Class {
	return block.ElementBlockClass(doc.Class{
		Type:            TypeTable,
		RemoveWhenEmpty: true,
		NewPayload:      func() doc.Payload { return &Table{} },
		Append:          appendToTable,
		Transform:       normalizeTable,
		ExportJSON: func(n *doc.Node, out map[string]any) {
			t := n.Payload().(*Table)
			widths := make([]any, len(t.ColumnWidths))
			for i, w := range t.ColumnWidths {
				if w > 0 {
					widths[i] = w
				}
			}
			out["columnWidths"] = widths
			out["scrollable"] = t.Scrollable
			out["headerRow"] = t.HeaderRow
		},
		ImportJSON: func(tx *doc.Txn, k doc.Key, v gjson.Result) error {
			t := doc.WritablePayloadOf[*Table](tx, k)
			t.ColumnWidths = nil
			for _, w := range v.Get("columnWidths").Array() {
				t.ColumnWidths = append(t.ColumnWidths, w.Float())
			}
			t.Scrollable = v.Get("scrollable").Bool()
			t.HeaderRow = v.Get("headerRow").Bool()
			return nil
		},
	})
}

// RowClass returns the class of table rows.
func RowClass() doc.Class {
	return doc.Class{
		Type:           TypeRow,
		Kind:           doc.KindElement,
		ParentRequired: true,
		CreateParent:   func(tx *doc.Txn, _ doc.Key) doc.Key { return CreateTable(tx) },
		Append:         appendToRow,
		Transform:      normalizeParentTable,
	}
}

// CellClass returns the class of table cells.
func CellClass() doc.Class {
	return doc.Class{
		Type:           TypeCell,
		Kind:           doc.KindElement,
		ParentRequired: true,
		CreateParent:   func(tx *doc.Txn, _ doc.Key) doc.Key { return CreateRow(tx) },
		NewPayload:     func() doc.Payload { return &Cell{ColSpan: 1, RowSpan: 1} },
		Append:         appendToCell,
		Transform: func(tx *doc.Txn, k doc.Key) {
			normalizeParentTable(tx, tx.Parent(k))
		},
		ExportJSON: func(n *doc.Node, out map[string]any) {
			c := n.Payload().(*Cell)
			out["colSpan"] = c.ColSpan
			out["rowSpan"] = c.RowSpan
		},
		ImportJSON: func(tx *doc.Txn, k doc.Key, v gjson.Result) error {
			c := doc.WritablePayloadOf[*Cell](tx, k)
			for _, f := range []struct {
				name string
				dst  *int
			}{{"colSpan", &c.ColSpan}, {"rowSpan", &c.RowSpan}} {
				span := v.Get(f.name)
				if !span.Exists() {
					continue
				}
				if span.Int() < 1 {
					return fmt.Errorf("%w: %s %d", ErrInvalidSpan, f.name, span.Int())
				}
				*f.dst = int(span.Int())
			}
			return nil
		},
	}
}

// IsTable reports whether k is a table.
func IsTable(tx *doc.Txn, k doc.Key) bool { return k != "" && tx.Is(k, TypeTable) }

// IsRow reports whether k is a table row.
func IsRow(tx *doc.Txn, k doc.Key) bool { return k != "" && tx.Is(k, TypeRow) }

// IsCell reports whether k is a table cell.
func IsCell(tx *doc.Txn, k doc.Key) bool { return k != "" && tx.Is(k, TypeCell) }

// CreateTable creates an empty detached table.
func CreateTable(tx *doc.Txn) doc.Key { return tx.CreateNode(TypeTable) }

// CreateRow creates an empty detached row.
func CreateRow(tx *doc.Txn) doc.Key { return tx.CreateNode(TypeRow) }

// CreateCell creates an empty detached cell spanning one slot.
func CreateCell(tx *doc.Txn) doc.Key { return tx.CreateNode(TypeCell) }

// Build creates a detached table of rows by columns empty cells.
func Build(tx *doc.Txn, rows, columns int) doc.Key {
	t := CreateTable(tx)
	for range rows {
		row := CreateRow(tx)
		for range columns {
			tx.AppendBase(row, CreateCell(tx))
		}
		tx.AppendBase(t, row)
	}
	return t
}

// TableOf returns the table holding cell or row k, or "".
func TableOf(tx *doc.Txn, k doc.Key) doc.Key {
	if IsCell(tx, k) {
		k = tx.Parent(k)
	}
	if !IsRow(tx, k) {
		return ""
	}
	if t := tx.Parent(k); IsTable(tx, t) {
		return t
	}
	return ""
}

// MustTableOf is TableOf for code that requires an attached cell.
func MustTableOf(tx *doc.Txn, cell doc.Key) doc.Key {
	t := TableOf(tx, cell)
	doc.Assert(t != "", "cell %q is not inside a table", cell)
	return t
}

// CellAt returns the table cell holding point p, or "".
func CellAt(tx *doc.Txn, p doc.Point) doc.Key {
	if b := tx.BlockAt(p); IsCell(tx, b) {
		return b
	}
	return ""
}

// ColSpan returns the number of columns cell k covers.
func ColSpan(tx *doc.Txn, k doc.Key) int { return doc.PayloadOf[*Cell](tx, k).ColSpan }

// RowSpan returns the number of rows cell k covers.
func RowSpan(tx *doc.Txn, k doc.Key) int { return doc.PayloadOf[*Cell](tx, k).RowSpan }

// SetColSpan changes the column span of cell k.
func SetColSpan(tx *doc.Txn, k doc.Key, span int) {
	doc.Assert(span >= 1, "colSpan of %q must be at least 1, got %d", k, span)
	if ColSpan(tx, k) != span {
		doc.WritablePayloadOf[*Cell](tx, k).ColSpan = span
	}
}

// SetRowSpan changes the row span of cell k.
func SetRowSpan(tx *doc.Txn, k doc.Key, span int) {
	doc.Assert(span >= 1, "rowSpan of %q must be at least 1, got %d", k, span)
	if RowSpan(tx, k) != span {
		doc.WritablePayloadOf[*Cell](tx, k).RowSpan = span
	}
}

// ColumnWidths returns the column widths of table t; zero means unset.
func ColumnWidths(tx *doc.Txn, t doc.Key) []float64 {
	return slices.Clone(doc.PayloadOf[*Table](tx, t).ColumnWidths)
}

// SetColumnWidths replaces the column widths of table t.
func SetColumnWidths(tx *doc.Txn, t doc.Key, widths []float64) {
	doc.WritablePayloadOf[*Table](tx, t).ColumnWidths = widths
}

// SetColumnWidth sets the width of one column. A zero width resets it.
func SetColumnWidth(tx *doc.Txn, t doc.Key, col int, width float64) {
	widths := ColumnWidths(tx, t)
	for len(widths) <= col {
		widths = append(widths, 0)
	}
	widths[col] = width
	SetColumnWidths(tx, t, widths)
}

// Scrollable reports whether table t scrolls instead of fitting the page.
func Scrollable(tx *doc.Txn, t doc.Key) bool { return doc.PayloadOf[*Table](tx, t).Scrollable }

// SetScrollable changes whether table t scrolls.
func SetScrollable(tx *doc.Txn, t doc.Key, scrollable bool) {
	if Scrollable(tx, t) != scrollable {
		doc.WritablePayloadOf[*Table](tx, t).Scrollable = scrollable
	}
}

// HeaderRow reports whether the first row of t is a header.
func HeaderRow(tx *doc.Txn, t doc.Key) bool { return doc.PayloadOf[*Table](tx, t).HeaderRow }

// SetHeaderRow changes whether the first row of t is a header.
func SetHeaderRow(tx *doc.Txn, t doc.Key, header bool) {
	if HeaderRow(tx, t) != header {
		doc.WritablePayloadOf[*Table](tx, t).HeaderRow = header
	}
}

// ColumnCount returns the number of grid columns of table t, read from its
// first row.
func ColumnCount(tx *doc.Txn, t doc.Key) int {
	row := tx.FirstChild(t)
	if row == "" {
		return 0
	}
	doc.Assert(IsRow(tx, row), "child %q of table %q is not a row", row, t)
	columns := 0
	for _, c := range tx.Children(row) {
		columns += ColSpan(tx, c)
	}
	return columns
}
