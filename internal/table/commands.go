package table

import (
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/clipboard"
	"github.com/dshills/richdoc/internal/config"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/nodeutil"
)

// InsertTablePayload is the payload of InsertTable. Zero sizes use the
// configured defaults.
type InsertTablePayload struct {
	Rows    int
	Columns int
}

// ColumnWidthPayload is the payload of SetColumnWidthCommand.
type ColumnWidthPayload struct {
	Cell  doc.Key
	Width float64
}

// Table commands. Row and column commands act on the cell at the caret or
// on the selected cells.
var (
	InsertTable = doc.NewCommand[InsertTablePayload]("INSERT_TABLE")
	// InsertRowCommand inserts below when true, above otherwise.
	InsertRowCommand = doc.NewCommand[bool]("INSERT_TABLE_ROW")
	// InsertColumnCommand inserts right when true, left otherwise.
	InsertColumnCommand   = doc.NewCommand[bool]("INSERT_TABLE_COLUMN")
	DeleteRowCommand      = doc.NewCommand[struct{}]("DELETE_TABLE_ROW")
	DeleteColumnCommand   = doc.NewCommand[struct{}]("DELETE_TABLE_COLUMN")
	DeleteTableCommand    = doc.NewCommand[struct{}]("DELETE_TABLE")
	MergeCellsCommand     = doc.NewCommand[struct{}]("MERGE_TABLE_CELLS")
	UnmergeCellsCommand   = doc.NewCommand[struct{}]("UNMERGE_TABLE_CELLS")
	SetColumnWidthCommand = doc.NewCommand[ColumnWidthPayload]("SET_TABLE_COLUMN_WIDTH")
	ToggleScrollable      = doc.NewCommand[struct{}]("TOGGLE_TABLE_SCROLLABLE")
	ToggleHeaderRow       = doc.NewCommand[struct{}]("TOGGLE_TABLE_HEADER_ROW")
)

type handlers struct {
	clip   *clipboard.Clipboard
	cfg    config.TableConfig
	logger *zap.Logger
}

// Register installs the table commands on d. clip serializes copied cells
// and may be nil.
func Register(d *doc.Document, clip *clipboard.Clipboard, cfg config.TableConfig) func() {
	h := &handlers{clip: clip, cfg: cfg, logger: d.Logger().Named("table")}
	return doc.MergeRegister(
		doc.RegisterCommand(d, InsertTable, h.insertTable, doc.PriorityEditor),
		doc.RegisterCommand(d, InsertRowCommand, h.insertRow, doc.PriorityEditor),
		doc.RegisterCommand(d, InsertColumnCommand, h.insertColumn, doc.PriorityEditor),
		doc.RegisterCommand(d, DeleteRowCommand, h.deleteRows, doc.PriorityEditor),
		doc.RegisterCommand(d, DeleteColumnCommand, h.deleteColumns, doc.PriorityEditor),
		doc.RegisterCommand(d, DeleteTableCommand, h.deleteTable, doc.PriorityEditor),
		doc.RegisterCommand(d, MergeCellsCommand, h.mergeCells, doc.PriorityEditor),
		doc.RegisterCommand(d, UnmergeCellsCommand, h.unmergeCells, doc.PriorityEditor),
		doc.RegisterCommand(d, SetColumnWidthCommand, h.setColumnWidth, doc.PriorityEditor),
		doc.RegisterCommand(d, ToggleScrollable, func(tx *doc.Txn, _ struct{}) bool {
			t := currentTable(tx)
			if t != "" {
				SetScrollable(tx, t, !Scrollable(tx, t))
			}
			return t != ""
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, ToggleHeaderRow, func(tx *doc.Txn, _ struct{}) bool {
			t := currentTable(tx)
			if t != "" {
				SetHeaderRow(tx, t, !HeaderRow(tx, t))
			}
			return t != ""
		}, doc.PriorityEditor),

		doc.RegisterCommand(d, doc.SelectionChange, selectionChange, doc.PriorityLow),
		doc.RegisterCommand(d, doc.InsertParagraph, func(tx *doc.Txn, _ struct{}) bool {
			sel, ok := tx.RangeSelection()
			if !ok || CellAt(tx, sel.Anchor) == "" {
				return false
			}
			sel.InsertLineBreak(tx, false)
			return true
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.KeyTab, func(tx *doc.Txn, ev doc.KeyEvent) bool {
			if ev.Shift {
				return navigate(tx, left)
			}
			return navigate(tx, right)
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.KeyArrowUp, func(tx *doc.Txn, _ doc.KeyEvent) bool {
			return navigate(tx, up)
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.KeyArrowDown, func(tx *doc.Txn, _ doc.KeyEvent) bool {
			return navigate(tx, down)
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.KeyEscape, func(tx *doc.Txn, _ doc.KeyEvent) bool {
			s, ok := tx.Selection().(*Selection)
			if ok {
				tx.SelectEnd(s.Focus)
			}
			return ok
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.DeleteCharacter, deleteCharacter, doc.PriorityLow),
		doc.RegisterCommand(d, doc.RemoveText, func(tx *doc.Txn, _ struct{}) bool {
			return clearSelected(tx)
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.KeyBackspace, func(tx *doc.Txn, _ doc.KeyEvent) bool {
			return clearSelected(tx)
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.KeyDelete, func(tx *doc.Txn, _ doc.KeyEvent) bool {
			return clearSelected(tx)
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.InsertText, func(tx *doc.Txn, text string) bool {
			s, ok := tx.Selection().(*Selection)
			if !ok {
				return false
			}
			clearCells(tx, s)
			if sel, ok := tx.RangeSelection(); ok {
				sel.InsertText(tx, text)
			}
			return true
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.FormatText, formatCells, doc.PriorityLow),
		doc.RegisterCommand(d, doc.FormatElement, func(tx *doc.Txn, f doc.ElementFormat) bool {
			s, ok := tx.Selection().(*Selection)
			if !ok {
				return false
			}
			for _, c := range s.Nodes(tx) {
				tx.SetFormat(c, f)
			}
			return true
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.Copy, func(tx *doc.Txn, dt *doc.DataTransfer) bool {
			return h.copyCells(tx, dt)
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.Cut, func(tx *doc.Txn, dt *doc.DataTransfer) bool {
			if !h.copyCells(tx, dt) {
				return false
			}
			return clearSelected(tx)
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.SelectionInsertClipboardNodes, h.paste, doc.PriorityLow),
	)
}

// focusCell returns the cell holding the caret or the focus of a cell
// selection.
func focusCell(tx *doc.Txn) doc.Key {
	switch sel := tx.Selection().(type) {
	case *Selection:
		return sel.Focus
	case *doc.RangeSelection:
		return CellAt(tx, sel.Focus)
	}
	return ""
}

func currentTable(tx *doc.Txn) doc.Key {
	if c := focusCell(tx); c != "" {
		return TableOf(tx, c)
	}
	return ""
}

// selectedRect returns the table and grid rectangle the selection covers:
// the selected cells, or the cell at the caret.
func selectedRect(tx *doc.Txn) (doc.Key, Boundary, bool) {
	if s, ok := tx.Selection().(*Selection); ok {
		if !s.valid(tx) {
			return "", Boundary{}, false
		}
		return s.Table, s.Boundary(tx), true
	}
	cell := focusCell(tx)
	if cell == "" {
		return "", Boundary{}, false
	}
	t := MustTableOf(tx, cell)
	at := MapOf(tx, t).MustCell(cell)
	return t, Boundary{MinRow: at.Row, MaxRow: at.LastRow(), MinCol: at.Col, MaxCol: at.LastCol()}, true
}

func (h *handlers) insertTable(tx *doc.Txn, p InsertTablePayload) bool {
	rows, columns := p.Rows, p.Columns
	if rows < 1 {
		rows = h.cfg.DefaultRows
	}
	if columns < 1 {
		columns = h.cfg.DefaultColumns
	}
	t := Build(tx, rows, columns)
	SetHeaderRow(tx, t, h.cfg.HeaderRow)

	if cur := currentTable(tx); cur != "" {
		tx.InsertAfter(cur, t)
	} else if nodeutil.TryInsertBlock(tx, t, tx.Selection()) == "" {
		tx.Append(doc.RootKey, t)
	}
	tx.SelectStart(tx.FirstChild(tx.FirstChild(t)))
	h.logger.Debug("table inserted", zap.Int("rows", rows), zap.Int("columns", columns))
	return true
}

func (h *handlers) insertRow(tx *doc.Txn, below bool) bool {
	t, b, ok := selectedRect(tx)
	if !ok {
		return false
	}
	// No cell crosses the edges of the rectangle, so the corner slots are
	// anchored on them.
	r := b.MinRow
	if below {
		r = b.MaxRow
	}
	InsertRow(tx, MapOf(tx, t).At(r, b.MinCol).Cell, !below)
	return true
}

func (h *handlers) insertColumn(tx *doc.Txn, right bool) bool {
	t, b, ok := selectedRect(tx)
	if !ok {
		return false
	}
	c := b.MinCol
	if right {
		c = b.MaxCol
	}
	InsertColumn(tx, MapOf(tx, t).At(b.MinRow, c).Cell, !right)
	return true
}

func (h *handlers) deleteRows(tx *doc.Txn, _ struct{}) bool {
	t, b, ok := selectedRect(tx)
	if !ok {
		return false
	}
	DeleteRows(tx, t, b.MinRow, b.MaxRow+1)
	return true
}

func (h *handlers) deleteColumns(tx *doc.Txn, _ struct{}) bool {
	t, b, ok := selectedRect(tx)
	if !ok {
		return false
	}
	DeleteColumns(tx, t, b.MinCol, b.MaxCol+1)
	return true
}

func (h *handlers) deleteTable(tx *doc.Txn, _ struct{}) bool {
	t := currentTable(tx)
	if t == "" {
		return false
	}
	m := MapOf(tx, t)
	DeleteRows(tx, t, 0, m.Rows())
	return true
}

func (h *handlers) mergeCells(tx *doc.Txn, _ struct{}) bool {
	s, ok := tx.Selection().(*Selection)
	if !ok || !s.valid(tx) {
		return false
	}
	first := MergeCells(tx, s)
	tx.SelectEnd(first)
	return true
}

func (h *handlers) unmergeCells(tx *doc.Txn, _ struct{}) bool {
	var cells []doc.Key
	if s, ok := tx.Selection().(*Selection); ok {
		cells = s.Nodes(tx)
	} else if c := focusCell(tx); c != "" {
		cells = []doc.Key{c}
	}
	for _, c := range cells {
		if ColSpan(tx, c) > 1 || RowSpan(tx, c) > 1 {
			UnmergeCell(tx, c)
		}
	}
	return len(cells) > 0
}

func (h *handlers) setColumnWidth(tx *doc.Txn, p ColumnWidthPayload) bool {
	cell := p.Cell
	if cell == "" {
		cell = focusCell(tx)
	}
	t := TableOf(tx, cell)
	if t == "" || p.Width < 0 {
		return false
	}
	SetColumnWidth(tx, t, MapOf(tx, t).MustCell(cell).Col, p.Width)
	return true
}

// selectionChange turns a range selection whose ends lie in different cells
// of one table into a cell selection.
func selectionChange(tx *doc.Txn, _ struct{}) bool {
	sel, ok := tx.RangeSelection()
	if !ok {
		return false
	}
	anchor, focus := CellAt(tx, sel.Anchor), CellAt(tx, sel.Focus)
	if anchor == "" || focus == "" || anchor == focus {
		return false
	}
	if t := TableOf(tx, anchor); t != "" && t == TableOf(tx, focus) {
		SelectCells(tx, anchor, focus)
	}
	return false
}

// deleteCharacter keeps deletion at a cell edge from merging the cell with
// its neighbor.
func deleteCharacter(tx *doc.Txn, backward bool) bool {
	if clearSelected(tx) {
		return true
	}
	sel, ok := tx.RangeSelection()
	if !ok || !sel.IsCollapsed() {
		return false
	}
	cell := CellAt(tx, sel.Anchor)
	if cell == "" {
		return false
	}
	if backward {
		return nodeutil.BlockIfAtBlockStart(tx, sel.Anchor) == cell
	}
	return nodeutil.BlockIfAtBlockEnd(tx, sel.Anchor) == cell
}

func clearSelected(tx *doc.Txn) bool {
	s, ok := tx.Selection().(*Selection)
	if !ok {
		return false
	}
	clearCells(tx, s)
	return true
}

// formatCells applies f to all text of the selected cells. The format is
// removed when every text already carries it and added otherwise.
func formatCells(tx *doc.Txn, f doc.TextFormat) bool {
	s, ok := tx.Selection().(*Selection)
	if !ok {
		return false
	}
	var texts []doc.Key
	for _, c := range s.Nodes(tx) {
		for _, k := range tx.Descendants(c) {
			if tx.IsText(k) {
				texts = append(texts, k)
			}
		}
	}
	all := len(texts) > 0
	for _, k := range texts {
		if !tx.Node(k).TextFormat().Has(f) {
			all = false
			break
		}
	}
	for _, k := range texts {
		cur := tx.Node(k).TextFormat()
		if all {
			tx.SetTextFormat(k, cur&^f)
		} else {
			tx.SetTextFormat(k, cur|f)
		}
	}
	return true
}

// copyCells writes a cell selection to dt. Partially selected tables are
// copied as a table holding the selected cells, row by row.
func (h *handlers) copyCells(tx *doc.Txn, dt *doc.DataTransfer) bool {
	s, ok := tx.Selection().(*Selection)
	if !ok || h.clip == nil || !s.valid(tx) {
		return false
	}
	h.clip.WriteSelection(tx, ToNodeSelection(tx, s), dt)
	dt.Set(clipboard.MIMEPlain, s.TextContent(tx))
	if s.IsWholeTable(tx) {
		return true
	}

	b := s.Boundary(tx)
	byRow := make(map[doc.Key][]any)
	for _, c := range s.Nodes(tx) {
		byRow[tx.Parent(c)] = append(byRow[tx.Parent(c)], tx.ExportNode(c))
	}
	rows := make([]any, 0, b.MaxRow-b.MinRow+1)
	for r := b.MinRow; r <= b.MaxRow; r++ {
		row := tx.ChildAt(s.Table, r)
		out := tx.ExportNode(row)
		cells := byRow[row]
		if cells == nil {
			cells = []any{}
		}
		out["children"] = cells
		rows = append(rows, out)
	}
	t := tx.ExportNode(s.Table)
	t["children"] = rows
	if widths := ColumnWidths(tx, s.Table); b.MinCol < len(widths) {
		part := make([]any, 0, b.MaxCol-b.MinCol+1)
		for _, w := range widths[b.MinCol:min(b.MaxCol+1, len(widths))] {
			if w > 0 {
				part = append(part, w)
			} else {
				part = append(part, nil)
			}
		}
		t["columnWidths"] = part
	}

	payload, err := sjson.Set("", "namespace", tx.Document().Namespace())
	if err == nil {
		payload, err = sjson.Set(payload, "nodes", []any{t})
	}
	if err != nil {
		h.logger.Warn("cell payload not written", zap.Error(err))
		return true
	}
	dt.Set(h.clip.MIME(), payload)
	return true
}

// paste copies a pasted table into the grid at the selection, cell by cell.
// Other content pasted over a cell selection replaces the content of the
// focus cell.
func (h *handlers) paste(tx *doc.Txn, p doc.InsertNodesPayload) bool {
	var start doc.Key
	switch sel := p.Selection.(type) {
	case *Selection:
		if !sel.valid(tx) {
			return false
		}
		b := sel.Boundary(tx)
		start = MapOf(tx, sel.Table).At(b.MinRow, b.MinCol).Cell
	case *doc.RangeSelection:
		start = CellAt(tx, sel.Anchor)
	}
	if start == "" {
		return false
	}

	if len(p.Nodes) != 1 || !IsTable(tx, p.Nodes[0]) {
		if _, ok := p.Selection.(*Selection); !ok {
			return false
		}
		tx.Clear(start)
		tx.Append(start, p.Nodes...)
		tx.SelectEnd(start)
		return true
	}

	src := p.Nodes[0]
	var grid [][]doc.Key
	for _, row := range tx.Children(src) {
		grid = append(grid, tx.Children(row))
	}
	last := CopyToTable(tx, start, grid)
	tx.Remove(src)
	tx.SelectEnd(last)
	h.logger.Debug("cells pasted", zap.Int("rows", len(grid)))
	return true
}
