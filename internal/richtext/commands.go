package richtext

import (
	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/nodeutil"
)

// InsertTab inserts a tab character at the caret.
var InsertTab = doc.NewCommand[struct{}]("INSERT_TAB")

// Register installs the text editing commands on d.
func Register(d *doc.Document) func() {
	return doc.MergeRegister(
		doc.RegisterCommand(d, doc.DeleteCharacter, func(tx *doc.Txn, backward bool) bool {
			sel, ok := tx.RangeSelection()
			if !ok {
				return false
			}
			sel.DeleteCharacter(tx, backward)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.RemoveText, func(tx *doc.Txn, _ struct{}) bool {
			sel, ok := tx.RangeSelection()
			if !ok {
				return false
			}
			sel.RemoveText(tx)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.InsertText, insertText, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.FormatText, func(tx *doc.Txn, f doc.TextFormat) bool {
			sel, ok := tx.RangeSelection()
			if !ok {
				return false
			}
			sel.FormatText(tx, f)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.FormatElement, formatElement, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.InsertLineBreak, func(tx *doc.Txn, selectStart bool) bool {
			sel, ok := tx.RangeSelection()
			if !ok {
				return false
			}
			sel.InsertLineBreak(tx, selectStart)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.InsertParagraph, func(tx *doc.Txn, _ struct{}) bool {
			sel, ok := tx.RangeSelection()
			if !ok {
				return false
			}
			sel.InsertParagraph(tx)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, InsertTab, func(tx *doc.Txn, _ struct{}) bool {
			return insertText(tx, "\t")
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.IndentContent, func(tx *doc.Txn, _ struct{}) bool {
			blocks := indentableBlocks(tx)
			for _, b := range blocks {
				tx.SetIndent(b, tx.Indent(b)+1)
			}
			return len(blocks) > 0
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.OutdentContent, func(tx *doc.Txn, _ struct{}) bool {
			blocks := indentableBlocks(tx)
			for _, b := range blocks {
				if indent := tx.Indent(b); indent > 0 {
					tx.SetIndent(b, indent-1)
				}
			}
			return len(blocks) > 0
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.KeyTab, func(tx *doc.Txn, ev doc.KeyEvent) bool {
			sel, ok := tx.RangeSelection()
			if !ok {
				return false
			}
			switch {
			case ev.Shift:
				doc.Dispatch(tx, doc.OutdentContent, struct{}{})
			case indentOverTab(tx, sel):
				doc.Dispatch(tx, doc.IndentContent, struct{}{})
			default:
				doc.Dispatch(tx, InsertTab, struct{}{})
			}
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.KeyEnter, func(tx *doc.Txn, ev doc.KeyEvent) bool {
			if _, ok := tx.RangeSelection(); !ok {
				return false
			}
			if ev.Shift {
				return doc.Dispatch(tx, doc.InsertLineBreak, false)
			}
			return doc.Dispatch(tx, doc.InsertParagraph, struct{}{})
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.KeyBackspace, backspace, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.KeyDelete, func(tx *doc.Txn, _ doc.KeyEvent) bool {
			return doc.Dispatch(tx, doc.DeleteCharacter, false)
		}, doc.PriorityEditor),
	)
}

func insertText(tx *doc.Txn, text string) bool {
	sel := tx.Selection()
	if sel == nil {
		return false
	}
	if rs, ok := sel.(*doc.RangeSelection); ok {
		rs.InsertText(tx, text)
		return true
	}
	sel.InsertNodes(tx, []doc.Key{tx.CreateText(text)})
	return true
}

func isBlockElement(tx *doc.Txn, k doc.Key) bool {
	return k != doc.RootKey && tx.IsElement(k) && !tx.IsInline(k)
}

func formatElement(tx *doc.Txn, f doc.ElementFormat) bool {
	sel := tx.Selection()
	switch sel.(type) {
	case *doc.RangeSelection, *doc.NodeSelection:
	default:
		return false
	}
	for _, n := range sel.Nodes(tx) {
		el := tx.FindParent(n, func(k doc.Key) bool { return isBlockElement(tx, k) })
		if el != "" {
			tx.SetFormat(el, f)
		}
	}
	return true
}

func canIndent(tx *doc.Txn, k doc.Key) bool {
	c := tx.Class(k)
	return c != nil && c.CanIndent
}

// indentableBlocks returns the nearest element blocks of the selected nodes
// that accept an indent, each once.
func indentableBlocks(tx *doc.Txn) []doc.Key {
	sel, ok := tx.RangeSelection()
	if !ok {
		return nil
	}
	seen := make(map[doc.Key]bool)
	var out []doc.Key
	for _, n := range sel.Nodes(tx) {
		b := tx.FindParent(n, func(k doc.Key) bool { return block.IsElementBlock(tx, k) })
		if b == "" || seen[b] || !canIndent(tx, b) {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out
}

// indentOverTab reports whether Tab should indent rather than insert a tab:
// a selected block accepts an indent, or the selection starts at the start
// of such a block.
func indentOverTab(tx *doc.Txn, sel *doc.RangeSelection) bool {
	for _, n := range sel.Nodes(tx) {
		if block.IsElementBlock(tx, n) && canIndent(tx, n) {
			return true
		}
	}
	start, _ := sel.StartEnd(tx)
	b := nodeutil.BlockIfAtBlockStart(tx, start)
	return b != "" && canIndent(tx, b)
}

// backspace outdents an indented block or collapses a non-paragraph block
// when the caret is at its start. Otherwise it deletes a character.
func backspace(tx *doc.Txn, _ doc.KeyEvent) bool {
	sel, ok := tx.RangeSelection()
	if !ok {
		return false
	}
	if sel.IsCollapsed() {
		if b := nodeutil.BlockIfAtBlockStart(tx, sel.Anchor); b != "" && b != doc.RootKey {
			if canIndent(tx, b) {
				if indent := tx.Indent(b); indent > 0 {
					tx.SetIndent(b, indent-1)
					return true
				}
			} else if !tx.Is(b, doc.TypeParagraph) && tx.CollapseAtStart(b, sel) {
				return true
			}
		}
	}
	return doc.Dispatch(tx, doc.DeleteCharacter, true)
}
