package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/richdoc/internal/clipboard"
	"github.com/dshills/richdoc/internal/config"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
	"github.com/dshills/richdoc/internal/richtext"
)

type cellSpec struct {
	text             string
	colSpan, rowSpan int
}

func c(text string) cellSpec { return cellSpec{text: text, colSpan: 1, rowSpan: 1} }

func span(text string, colSpan, rowSpan int) cellSpec {
	return cellSpec{text: text, colSpan: colSpan, rowSpan: rowSpan}
}

func newEditor(t *testing.T, opts ...editor.Option) *editor.Editor {
	t.Helper()
	opts = append(opts, editor.WithPlugins(richtext.Plugin(), Plugin()))
	e, err := editor.New(opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func update(t *testing.T, e *editor.Editor, fn func(tx *doc.Txn)) {
	t.Helper()
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		fn(tx)
		return nil
	}))
}

func read(t *testing.T, e *editor.Editor, fn func(tx *doc.Txn)) {
	t.Helper()
	require.NoError(t, e.Read(func(tx *doc.Txn) error {
		fn(tx)
		return nil
	}))
}

func markdownOf(t *testing.T, e *editor.Editor) string {
	t.Helper()
	md, err := e.ToMarkdown()
	require.NoError(t, err)
	return md
}

func dispatch[P any](t *testing.T, e *editor.Editor, cmd doc.Command[P], p P) {
	t.Helper()
	handled, err := editor.Dispatch(e, cmd, p)
	require.NoError(t, err)
	require.True(t, handled, "command %s not handled", cmd.Name())
}

// setup builds a table from rows and returns the cells keyed by their text.
func setup(t *testing.T, rows [][]cellSpec) (*editor.Editor, doc.Key, map[string]doc.Key) {
	t.Helper()
	e := newEditor(t)
	var table doc.Key
	cells := make(map[string]doc.Key)
	update(t, e, func(tx *doc.Txn) {
		tx.Clear(doc.RootKey)
		table = CreateTable(tx)
		for _, specs := range rows {
			row := CreateRow(tx)
			for _, s := range specs {
				cell := CreateCell(tx)
				SetColSpan(tx, cell, s.colSpan)
				SetRowSpan(tx, cell, s.rowSpan)
				if s.text != "" {
					tx.Append(cell, tx.CreateText(s.text))
				}
				tx.Append(row, cell)
				cells[s.text] = cell
			}
			tx.Append(table, row)
		}
		tx.Append(doc.RootKey, table)
	})
	return e, table, cells
}

// grid returns the text of the anchor cell of every slot.
func grid(t *testing.T, e *editor.Editor, table doc.Key) [][]string {
	t.Helper()
	var out [][]string
	read(t, e, func(tx *doc.Txn) {
		m := MapOf(tx, table)
		for r := range m.Rows() {
			row := make([]string, m.Columns())
			for col := range row {
				row[col] = tx.TextContent(m.At(r, col).Cell)
			}
			out = append(out, row)
		}
	})
	return out
}

func TestMapOfPlainTable(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("a"), c("b")}, {c("c"), c("d")}})
	read(t, e, func(tx *doc.Txn) {
		m := MapOf(tx, table)
		assert.Equal(t, 2, m.Rows())
		assert.Equal(t, 2, m.Columns())
		assert.Equal(t, Slot{Cell: cells["d"], Row: 1, Col: 1, RowSpan: 1, ColSpan: 1}, m.At(1, 1))
		assert.Equal(t, 2, ColumnCount(tx, table))
	})
}

func TestMapOfSpanningCells(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{span("a", 2, 2), c("b")},
		{c("c")},
		{c("d"), c("e"), c("f")},
	})
	assert.Equal(t, [][]string{
		{"a", "a", "b"},
		{"a", "a", "c"},
		{"d", "e", "f"},
	}, grid(t, e, table))
	read(t, e, func(tx *doc.Txn) {
		s := MapOf(tx, table).MustCell(cells["c"])
		assert.Equal(t, 1, s.Row)
		assert.Equal(t, 2, s.Col)
	})
}

func TestComputeBoundaryGrowsOverSpans(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{span("a", 2, 2), c("b")},
		{c("c")},
		{c("d"), c("e"), c("f")},
	})
	read(t, e, func(tx *doc.Txn) {
		m := MapOf(tx, table)
		b := ComputeBoundary(m, cells["a"], cells["c"])
		assert.Equal(t, Boundary{MinRow: 0, MaxRow: 1, MinCol: 0, MaxCol: 2}, b)

		// e sits below a; b to the right of it. The rectangle between them
		// cuts a and has to grow to its left edge.
		b = ComputeBoundary(m, cells["b"], cells["e"])
		assert.Equal(t, Boundary{MinRow: 0, MaxRow: 2, MinCol: 0, MaxCol: 2}, b)
		assert.Equal(t, b, ComputeBoundary(m, cells["e"], cells["b"]))

		for r := b.MinRow; r <= b.MaxRow; r++ {
			for col := b.MinCol; col <= b.MaxCol; col++ {
				assert.True(t, b.contains(m.At(r, col)))
			}
		}
	})
}

func TestSelectionNodes(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{span("a", 2, 2), c("b")},
		{c("c")},
		{c("d"), c("e"), c("f")},
	})
	update(t, e, func(tx *doc.Txn) {
		s := SelectCells(tx, cells["c"], cells["d"])
		assert.Equal(t, table, s.Table)
		assert.Equal(t, []doc.Key{cells["a"], cells["b"], cells["c"], cells["d"], cells["e"], cells["f"]}, s.Nodes(tx))
		assert.True(t, s.IsWholeTable(tx))
		assert.Equal(t, "a\tb\nc\nd\te\tf\n", s.TextContent(tx))
	})
	read(t, e, func(tx *doc.Txn) {
		s, ok := tx.Selection().(*Selection)
		require.True(t, ok)
		assert.Equal(t, cells["c"], s.Anchor)
		assert.Equal(t, cells["d"], s.Focus)
	})
}

func TestDeleteRowsShrinksSpanFromAbove(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{span("a", 1, 3), c("b")},
		{c("c")},
		{c("d")},
		{c("e"), c("f")},
	})
	update(t, e, func(tx *doc.Txn) {
		DeleteRows(tx, table, 1, 3)
	})
	assert.Equal(t, [][]string{{"a", "b"}, {"e", "f"}}, grid(t, e, table))
	read(t, e, func(tx *doc.Txn) {
		assert.Equal(t, 1, RowSpan(tx, cells["a"]))
	})
}

func TestDeleteRowsMovesSpanBelow(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{c("a"), c("b")},
		{span("c", 1, 2), c("d")},
		{c("e")},
	})
	update(t, e, func(tx *doc.Txn) {
		DeleteRows(tx, table, 0, 2)
	})
	assert.Equal(t, [][]string{{"c", "e"}}, grid(t, e, table))
	read(t, e, func(tx *doc.Txn) {
		assert.Equal(t, 1, RowSpan(tx, cells["c"]))
	})
}

func TestDeleteAllRowsRemovesTable(t *testing.T) {
	e, table, _ := setup(t, [][]cellSpec{{c("a")}, {c("b")}})
	update(t, e, func(tx *doc.Txn) {
		tx.Append(doc.RootKey, tx.CreateParagraph())
		DeleteRows(tx, table, 0, 2)
	})
	read(t, e, func(tx *doc.Txn) {
		assert.False(t, tx.Exists(table))
		assert.Equal(t, doc.TypeParagraph, tx.Type(tx.FirstChild(doc.RootKey)))
	})
}

func TestInsertRowGrowsCrossingSpans(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{span("a", 1, 2), c("b")},
		{c("c")},
	})
	update(t, e, func(tx *doc.Txn) {
		row := InsertRow(tx, cells["b"], false)
		assert.Equal(t, 1, tx.ChildrenSize(row))
	})
	assert.Equal(t, [][]string{{"a", "b"}, {"a", ""}, {"a", "c"}}, grid(t, e, table))
	read(t, e, func(tx *doc.Txn) {
		assert.Equal(t, 3, RowSpan(tx, cells["a"]))
	})

	update(t, e, func(tx *doc.Txn) {
		InsertRow(tx, cells["a"], true)
	})
	assert.Equal(t, [][]string{{"", ""}, {"a", "b"}, {"a", ""}, {"a", "c"}}, grid(t, e, table))
}

func TestInsertColumnKeepsWidths(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{span("a", 2, 1)},
		{c("b"), c("c")},
	})
	update(t, e, func(tx *doc.Txn) {
		SetColumnWidths(tx, table, []float64{100, 200})
		first := InsertColumn(tx, cells["b"], false)
		assert.Equal(t, tx.Parent(cells["b"]), tx.Parent(first))
	})
	assert.Equal(t, [][]string{{"a", "a", "a"}, {"b", "", "c"}}, grid(t, e, table))
	read(t, e, func(tx *doc.Txn) {
		assert.Equal(t, 3, ColSpan(tx, cells["a"]))
		assert.Equal(t, []float64{100, 0, 200}, ColumnWidths(tx, table))
	})
}

func TestInsertColumnBesideRowSpan(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{span("a", 1, 2), c("b")},
		{c("c")},
	})
	update(t, e, func(tx *doc.Txn) {
		InsertColumn(tx, cells["a"], false)
	})
	assert.Equal(t, [][]string{{"a", "", "b"}, {"a", "", "c"}}, grid(t, e, table))
}

func TestDeleteColumns(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{c("a"), c("b"), c("c")},
		{span("d", 2, 1), c("e")},
	})
	update(t, e, func(tx *doc.Txn) {
		SetColumnWidths(tx, table, []float64{10, 20, 30})
		DeleteColumns(tx, table, 1, 2)
	})
	assert.Equal(t, [][]string{{"a", "c"}, {"d", "e"}}, grid(t, e, table))
	read(t, e, func(tx *doc.Txn) {
		assert.False(t, tx.Exists(cells["b"]))
		assert.Equal(t, 1, ColSpan(tx, cells["d"]))
		assert.Equal(t, []float64{10, 30}, ColumnWidths(tx, table))
	})
}

func TestMergeAndUnmerge(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{c("a"), c("b"), c("c")},
		{c("d"), c("e"), c("f")},
		{c("g"), c("h"), c("i")},
	})
	update(t, e, func(tx *doc.Txn) {
		SelectCells(tx, cells["a"], cells["e"])
	})
	dispatch(t, e, MergeCellsCommand, struct{}{})
	assert.Equal(t, [][]string{
		{"abde", "abde", "c"},
		{"abde", "abde", "f"},
		{"g", "h", "i"},
	}, grid(t, e, table))

	update(t, e, func(tx *doc.Txn) {
		tx.SelectEnd(cells["a"])
	})
	dispatch(t, e, UnmergeCellsCommand, struct{}{})
	assert.Equal(t, [][]string{
		{"abde", "", "c"},
		{"", "", "f"},
		{"g", "h", "i"},
	}, grid(t, e, table))
}

func TestUnmergeFindsNeighborInSameRow(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{c("a"), span("b", 2, 2)},
		{c("c")},
	})
	update(t, e, func(tx *doc.Txn) {
		UnmergeCell(tx, cells["b"])
	})
	assert.Equal(t, [][]string{{"a", "b", ""}, {"c", "", ""}}, grid(t, e, table))
}

func TestCopyToTableStopsAtSpanMismatch(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{
		{c("a"), c("b")},
		{span("c", 2, 1)},
	})
	update(t, e, func(tx *doc.Txn) {
		src := Build(tx, 2, 2)
		var rows [][]doc.Key
		n := 0
		for _, row := range tx.Children(src) {
			for _, cell := range tx.Children(row) {
				n++
				tx.Append(cell, tx.CreateText(string(rune('0'+n))))
			}
			rows = append(rows, tx.Children(row))
		}
		last := CopyToTable(tx, cells["a"], rows)
		assert.Equal(t, cells["c"], last)
		tx.Remove(src)
	})
	assert.Equal(t, [][]string{{"1", "2"}, {"c", "c"}}, grid(t, e, table))
}

func TestNormalizeRaggedTable(t *testing.T) {
	e, table, _ := setup(t, [][]cellSpec{
		{c("a"), c("b"), c("c")},
		{span("d", 1, 3)},
	})
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d", "", ""}}, grid(t, e, table))
	read(t, e, func(tx *doc.Txn) {
		assert.Equal(t, 1, RowSpan(tx, tx.FirstChild(tx.ChildAt(table, 1))))
	})
}

func TestCellFlattensBlocks(t *testing.T) {
	e, _, cells := setup(t, [][]cellSpec{{c("a")}})
	update(t, e, func(tx *doc.Txn) {
		p1, p2 := tx.CreateParagraph(), tx.CreateParagraph()
		tx.Append(p1, tx.CreateText("x"))
		tx.Append(p2, tx.CreateText("y"))
		tx.Append(cells["a"], p1, p2)
	})
	read(t, e, func(tx *doc.Txn) {
		children := tx.Children(cells["a"])
		require.Len(t, children, 3)
		assert.Equal(t, "ax", tx.TextContent(children[0]))
		assert.True(t, tx.IsLineBreak(children[1]))
		assert.Equal(t, "y", tx.TextContent(children[2]))
	})
}

func TestMarkdownRoundTrip(t *testing.T) {
	for _, md := range []string{
		"| a | b |\n| --- | --- |\n| c | d |",
		"| left | mid | right |\n| :--- | :---: | ---: |\n| 1 | 2 | 3 |",
		"| **bold** | `code` |\n| --- | --- |\n| x |  |",
		"before\n\n| a |\n| --- |\n| b |\n\nafter",
		"| a \\| b | c |\n| --- | --- |\n| d | e |",
	} {
		t.Run(md, func(t *testing.T) {
			e := newEditor(t)
			require.NoError(t, e.FromMarkdown(md))
			assert.Equal(t, md, markdownOf(t, e))
		})
	}
}

func TestMarkdownImportSetsHeaderAndAlignment(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.FromMarkdown("| a | b |\n| --- | :---: |\n| c | d |"))
	read(t, e, func(tx *doc.Txn) {
		table := tx.FirstChild(doc.RootKey)
		require.True(t, IsTable(tx, table))
		assert.True(t, HeaderRow(tx, table))
		assert.Equal(t, 2, tx.ChildrenSize(table))
		d := tx.LastChild(tx.LastChild(table))
		assert.Equal(t, doc.AlignCenter, tx.Node(d).Format())
	})
}

func TestMarkdownExportRepeatsSpanningCells(t *testing.T) {
	e, _, _ := setup(t, [][]cellSpec{
		{span("a", 2, 1)},
		{c("b"), c("line")},
	})
	assert.Equal(t, "| a | a |\n| --- | --- |\n| b | line |", markdownOf(t, e))
}

func TestHTMLImport(t *testing.T) {
	e := newEditor(t)
	src := `<table data-scrollable="true">
  <colgroup><col style="width: 120px"><col></colgroup>
  <thead><tr><th>a</th><th style="text-align: right">b</th></tr></thead>
  <tbody><tr><td colspan="2"><p>c</p><p>d</p></td></tr></tbody>
</table>`
	require.NoError(t, e.FromHTML(src))
	read(t, e, func(tx *doc.Txn) {
		table := tx.FirstChild(doc.RootKey)
		require.True(t, IsTable(tx, table))
		assert.True(t, Scrollable(tx, table))
		assert.True(t, HeaderRow(tx, table))
		assert.Equal(t, []float64{120, 0}, ColumnWidths(tx, table))
		require.Equal(t, 2, tx.ChildrenSize(table))

		header := tx.FirstChild(table)
		assert.Equal(t, doc.AlignRight, tx.Node(tx.LastChild(header)).Format())

		body := tx.Children(tx.LastChild(table))
		require.Len(t, body, 1)
		assert.Equal(t, 2, ColSpan(tx, body[0]))
		assert.Equal(t, "c\nd", tx.TextContent(body[0]))
	})
}

func TestHTMLExport(t *testing.T) {
	e, table, _ := setup(t, [][]cellSpec{
		{c("a"), c("b")},
		{span("c", 2, 1)},
	})
	update(t, e, func(tx *doc.Txn) {
		SetHeaderRow(tx, table, true)
		SetScrollable(tx, table, true)
		SetColumnWidth(tx, table, 1, 80)
	})
	out, err := e.ToHTML()
	require.NoError(t, err)
	assert.Contains(t, out, `<table data-scrollable="true">`)
	assert.Contains(t, out, `width: 80px`)
	assert.Contains(t, out, `<th>a</th>`)
	assert.Contains(t, out, `<td colspan="2">c</td>`)

	other := newEditor(t)
	require.NoError(t, other.FromHTML(out))
	assert.Equal(t, markdownOf(t, e), markdownOf(t, other))
}

func TestJSON(t *testing.T) {
	e, table, _ := setup(t, [][]cellSpec{
		{span("a", 1, 2), c("b")},
		{c("c")},
	})
	update(t, e, func(tx *doc.Txn) {
		SetColumnWidth(tx, table, 1, 50)
	})
	data, err := e.ToJSON(false)
	require.NoError(t, err)
	v := gjson.ParseBytes(data).Get("root.children.0")
	assert.Equal(t, "table", v.Get("type").String())
	assert.Equal(t, `[null,50]`, v.Get("columnWidths").Raw)
	assert.Equal(t, int64(2), v.Get("children.0.children.0.rowSpan").Int())

	other := newEditor(t)
	require.NoError(t, other.FromJSON(data))
	assert.Equal(t, markdownOf(t, e), markdownOf(t, other))

	bad := `{"root":{"type":"root","children":[{"type":"table","children":[{"type":"tablerow","children":[{"type":"tablecell","colSpan":0,"children":[]}]}]}]}}`
	assert.ErrorIs(t, other.FromJSON([]byte(bad)), ErrInvalidSpan)
}

func TestInsertTableUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Table = config.TableConfig{DefaultRows: 2, DefaultColumns: 4, HeaderRow: false}
	e := newEditor(t, editor.WithConfig(cfg))
	update(t, e, func(tx *doc.Txn) {
		tx.Clear(doc.RootKey)
		p := tx.CreateParagraph()
		tx.Append(doc.RootKey, p)
		tx.Select(p, 0, 0)
	})
	dispatch(t, e, InsertTable, InsertTablePayload{})
	read(t, e, func(tx *doc.Txn) {
		table := tx.FirstChild(doc.RootKey)
		require.True(t, IsTable(tx, table))
		m := MapOf(tx, table)
		assert.Equal(t, 2, m.Rows())
		assert.Equal(t, 4, m.Columns())
		assert.False(t, HeaderRow(tx, table))
		sel, ok := tx.RangeSelection()
		require.True(t, ok)
		assert.Equal(t, m.At(0, 0).Cell, CellAt(tx, sel.Anchor))
	})
}

func TestInsertTableDefaults(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.FromMarkdown("text"))
	update(t, e, func(tx *doc.Txn) {
		tx.SelectEnd(tx.FirstChild(doc.RootKey))
	})
	dispatch(t, e, InsertTable, InsertTablePayload{})
	read(t, e, func(tx *doc.Txn) {
		table := tx.LastChild(doc.RootKey)
		require.True(t, IsTable(tx, table))
		assert.Equal(t, 3, MapOf(tx, table).Rows())
		assert.Equal(t, 3, MapOf(tx, table).Columns())
		assert.True(t, HeaderRow(tx, table))
	})
}

func TestTabNavigation(t *testing.T) {
	e, _, cells := setup(t, [][]cellSpec{{c("a"), c("b")}, {c("c"), c("d")}})
	caret := func() doc.Key {
		var cell doc.Key
		read(t, e, func(tx *doc.Txn) {
			sel, ok := tx.RangeSelection()
			require.True(t, ok)
			cell = CellAt(tx, sel.Focus)
		})
		return cell
	}
	update(t, e, func(tx *doc.Txn) { tx.SelectEnd(cells["b"]) })
	dispatch(t, e, doc.KeyTab, doc.KeyEvent{Key: "Tab"})
	assert.Equal(t, cells["c"], caret())
	dispatch(t, e, doc.KeyTab, doc.KeyEvent{Key: "Tab", Shift: true})
	assert.Equal(t, cells["b"], caret())
	dispatch(t, e, doc.KeyArrowDown, doc.KeyEvent{Key: "ArrowDown"})
	assert.Equal(t, cells["d"], caret())
	dispatch(t, e, doc.KeyArrowUp, doc.KeyEvent{Key: "ArrowUp"})
	assert.Equal(t, cells["b"], caret())
}

func TestArrowDownLeavesTable(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("a")}})
	update(t, e, func(tx *doc.Txn) { tx.SelectEnd(cells["a"]) })
	dispatch(t, e, doc.KeyArrowDown, doc.KeyEvent{Key: "ArrowDown"})
	read(t, e, func(tx *doc.Txn) {
		sel, ok := tx.RangeSelection()
		require.True(t, ok)
		b := tx.BlockAt(sel.Anchor)
		assert.Equal(t, table, tx.PrevSibling(b))
		assert.Equal(t, doc.TypeParagraph, tx.Type(b))
	})
}

func TestArrowDownSkipsRowSpan(t *testing.T) {
	e, _, cells := setup(t, [][]cellSpec{
		{span("a", 1, 2), c("b")},
		{c("c")},
		{c("d"), c("e")},
	})
	update(t, e, func(tx *doc.Txn) { tx.SelectEnd(cells["a"]) })
	dispatch(t, e, doc.KeyArrowDown, doc.KeyEvent{Key: "ArrowDown"})
	read(t, e, func(tx *doc.Txn) {
		sel, _ := tx.RangeSelection()
		assert.Equal(t, cells["d"], CellAt(tx, sel.Anchor))
	})
}

func TestEnterInsertsLineBreak(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("ab")}})
	update(t, e, func(tx *doc.Txn) { tx.Select(tx.FirstChild(cells["ab"]), 1, 1) })
	dispatch(t, e, doc.KeyEnter, doc.KeyEvent{Key: "Enter"})
	read(t, e, func(tx *doc.Txn) {
		assert.Equal(t, 1, tx.ChildrenSize(table))
		children := tx.Children(cells["ab"])
		require.Len(t, children, 3)
		assert.True(t, tx.IsLineBreak(children[1]))
	})
}

func TestBackspaceAtCellStartKeepsCells(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("a"), c("b")}})
	update(t, e, func(tx *doc.Txn) { tx.Select(tx.FirstChild(cells["b"]), 0, 0) })
	dispatch(t, e, doc.DeleteCharacter, true)
	assert.Equal(t, [][]string{{"a", "b"}}, grid(t, e, table))
}

func TestCrossCellRangeBecomesCellSelection(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("a"), c("b")}, {c("c"), c("d")}})
	update(t, e, func(tx *doc.Txn) {
		sel := tx.Select(tx.FirstChild(cells["a"]), 0, 0)
		sel.SetPoints(doc.TextPoint(tx.FirstChild(cells["a"]), 0), doc.TextPoint(tx.FirstChild(cells["c"]), 1))
	})
	read(t, e, func(tx *doc.Txn) {
		s, ok := tx.Selection().(*Selection)
		require.True(t, ok)
		assert.Equal(t, table, s.Table)
		assert.Equal(t, []doc.Key{cells["a"], cells["c"]}, s.Nodes(tx))
	})
}

func TestFormatTextOverCells(t *testing.T) {
	e, _, cells := setup(t, [][]cellSpec{{c("a"), c("b")}, {c("c"), c("d")}})
	update(t, e, func(tx *doc.Txn) { SelectCells(tx, cells["a"], cells["b"]) })
	dispatch(t, e, doc.FormatText, doc.FormatBold)
	assert.Equal(t, "| **a** | **b** |\n| --- | --- |\n| c | d |", markdownOf(t, e))

	dispatch(t, e, doc.FormatText, doc.FormatBold)
	assert.Equal(t, "| a | b |\n| --- | --- |\n| c | d |", markdownOf(t, e))
	read(t, e, func(tx *doc.Txn) {
		_, ok := tx.Selection().(*Selection)
		assert.True(t, ok)
	})
}

func TestClearSelectedCells(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("a"), c("b")}, {c("c"), c("d")}})
	update(t, e, func(tx *doc.Txn) { SelectCells(tx, cells["a"], cells["c"]) })
	dispatch(t, e, doc.KeyBackspace, doc.KeyEvent{Key: "Backspace"})
	assert.Equal(t, [][]string{{"", "b"}, {"", "d"}}, grid(t, e, table))

	update(t, e, func(tx *doc.Txn) { SelectCells(tx, cells["a"], cells["d"]) })
	dispatch(t, e, doc.KeyDelete, doc.KeyEvent{Key: "Delete"})
	read(t, e, func(tx *doc.Txn) {
		assert.False(t, tx.Exists(table))
	})
}

func TestRowAndColumnCommands(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("a"), c("b")}, {c("c"), c("d")}})
	update(t, e, func(tx *doc.Txn) { tx.SelectEnd(cells["a"]) })
	dispatch(t, e, InsertRowCommand, true)
	dispatch(t, e, InsertColumnCommand, true)
	assert.Equal(t, [][]string{{"a", "", "b"}, {"", "", ""}, {"c", "", "d"}}, grid(t, e, table))

	update(t, e, func(tx *doc.Txn) { SelectCells(tx, cells["a"], cells["c"]) })
	dispatch(t, e, DeleteColumnCommand, struct{}{})
	assert.Equal(t, [][]string{{"", "b"}, {"", ""}, {"", "d"}}, grid(t, e, table))

	update(t, e, func(tx *doc.Txn) { tx.SelectEnd(cells["b"]) })
	dispatch(t, e, DeleteRowCommand, struct{}{})
	assert.Equal(t, [][]string{{"", ""}, {"", "d"}}, grid(t, e, table))

	dispatch(t, e, DeleteTableCommand, struct{}{})
	read(t, e, func(tx *doc.Txn) { assert.False(t, tx.Exists(table)) })
}

func TestCopyAndPasteCells(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("a"), c("b")}, {c("c"), c("d")}})
	update(t, e, func(tx *doc.Txn) { SelectCells(tx, cells["a"], cells["b"]) })

	dt := doc.NewDataTransfer()
	dispatch(t, e, doc.Copy, dt)
	plain, _ := dt.Get(clipboard.MIMEPlain)
	assert.Equal(t, "a\tb\n", plain)
	native, ok := dt.Get(e.Clipboard().MIME())
	require.True(t, ok)
	v := gjson.Parse(native)
	assert.Equal(t, "table", v.Get("nodes.0.type").String())
	assert.Equal(t, int64(1), v.Get("nodes.0.children.#").Int())
	assert.Equal(t, int64(2), v.Get("nodes.0.children.0.children.#").Int())

	update(t, e, func(tx *doc.Txn) { tx.SelectEnd(cells["c"]) })
	dispatch(t, e, doc.Paste, dt)
	assert.Equal(t, [][]string{{"a", "b"}, {"a", "b"}}, grid(t, e, table))
}

func TestToNodeSelectionOfWholeTable(t *testing.T) {
	e, table, cells := setup(t, [][]cellSpec{{c("a"), c("b")}})
	update(t, e, func(tx *doc.Txn) {
		s := SelectCells(tx, cells["a"], cells["b"])
		ns := ToNodeSelection(tx, s)
		assert.True(t, ns.Has(table))
		assert.True(t, ns.Has(tx.FirstChild(table)))
		assert.True(t, ns.Has(tx.FirstChild(cells["b"])))
	})
}
