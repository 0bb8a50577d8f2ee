package block

import (
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/nodeutil"
)

// SelectBlockPayload is the payload of SelectBlock. A nil Selection installs a
// fresh block selection holding Node; otherwise Node is added to Selection.
type SelectBlockPayload struct {
	Node      doc.Key
	Selection *Selection
}

// SelectBlock selects a block as a unit.
var SelectBlock = doc.NewCommand[SelectBlockPayload]("SELECT_BLOCK")

// ClipboardWriter serializes a selection into a data transfer.
type ClipboardWriter interface {
	WriteSelection(tx *doc.Txn, sel doc.Selection, dt *doc.DataTransfer)
}

// Register installs the block command handlers on d. clip may be nil, in
// which case copy and cut of block selections are not handled.
func Register(d *doc.Document, clip ClipboardWriter) func() {
	prevSelected := make(map[doc.Key]bool)

	fns := []func(){
		doc.RegisterCommand(d, SelectBlock, selectBlock, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.SelectionChange, func(tx *doc.Txn, _ struct{}) bool {
			sel, ok := tx.Selection().(*Selection)
			if ok {
				for k := range prevSelected {
					if !sel.Has(k) && tx.Exists(k) {
						tx.SetBlockSelected(k, false)
					}
				}
				prevSelected = make(map[doc.Key]bool, sel.Len())
				for _, k := range sel.Keys() {
					prevSelected[k] = true
				}
				return true
			}
			for k := range prevSelected {
				if tx.Exists(k) {
					tx.SetBlockSelected(k, false)
				}
			}
			clear(prevSelected)
			return false
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.SelectionChange, func(tx *doc.Txn, _ struct{}) bool {
			ns, ok := tx.Selection().(*doc.NodeSelection)
			if !ok {
				return false
			}
			nodes := ns.Nodes(tx)
			if len(nodes) != 1 || !IsBlock(tx, nodes[0]) {
				return false
			}
			return doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: nodes[0]})
		}, doc.PriorityLow),
		doc.RegisterCommand(d, doc.KeyArrowUp, arrowUp, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.KeyArrowDown, arrowDown, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.SelectAll, selectAll, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.KeyBackspace, func(tx *doc.Txn, _ doc.KeyEvent) bool {
			return removeBlocks(tx, true)
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.KeyDelete, func(tx *doc.Txn, _ doc.KeyEvent) bool {
			return removeBlocks(tx, false)
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.KeyEnter, enter, doc.PriorityEditor),
	}
	if clip != nil {
		fns = append(fns,
			doc.RegisterCommand(d, doc.Copy, func(tx *doc.Txn, dt *doc.DataTransfer) bool {
				sel, ok := tx.Selection().(*Selection)
				if !ok {
					return false
				}
				clip.WriteSelection(tx, ToNodeSelection(tx, sel), dt)
				return true
			}, doc.PriorityLow),
			doc.RegisterCommand(d, doc.Cut, func(tx *doc.Txn, dt *doc.DataTransfer) bool {
				sel, ok := tx.Selection().(*Selection)
				if !ok {
					return false
				}
				blocks := sel.Nodes(tx)
				clip.WriteSelection(tx, ToNodeSelection(tx, sel), dt)
				if len(blocks) > 0 {
					SelectPrevious(tx, blocks[0])
				}
				for _, k := range blocks {
					if tx.Exists(k) && tx.IsAttached(k) {
						tx.Remove(k)
					}
				}
				ensureRootChild(tx)
				return true
			}, doc.PriorityLow),
		)
	}
	return doc.MergeRegister(fns...)
}

func selectBlock(tx *doc.Txn, p SelectBlockPayload) bool {
	if !IsBlock(tx, p.Node) {
		return false
	}
	if n := tx.Node(p.Node); !n.BlockSelected() {
		tx.SetBlockSelected(p.Node, true)
	}
	if p.Selection == nil {
		tx.SetSelection(NewSelection().Add(p.Node))
		return true
	}
	p.Selection.Add(p.Node)
	return true
}

func arrowUp(tx *doc.Txn, _ doc.KeyEvent) bool {
	switch sel := tx.Selection().(type) {
	case *Selection:
		nodes := sel.Nodes(tx)
		if len(nodes) == 0 {
			return false
		}
		SelectPrevious(tx, nodes[0])
		return true
	case *doc.RangeSelection:
		if prev := adjacentNode(tx, sel.Focus, true); prev != "" && IsDecoratorBlock(tx, prev) {
			tx.SelectEnd(prev)
			return true
		}
	}
	return false
}

func arrowDown(tx *doc.Txn, _ doc.KeyEvent) bool {
	switch sel := tx.Selection().(type) {
	case *Selection:
		nodes := sel.Nodes(tx)
		if len(nodes) == 0 {
			return false
		}
		SelectNext(tx, nodes[len(nodes)-1])
		return true
	case *doc.RangeSelection:
		if next := adjacentNode(tx, sel.Focus, false); next != "" && IsDecoratorBlock(tx, next) {
			tx.SelectStart(next)
			return true
		}
	}
	return false
}

// selectAll widens the selection one step: the content of the current
// block, then the block itself, then the lowest common block, and finally
// every top-level block.
func selectAll(tx *doc.Txn, _ struct{}) bool {
	if sel, ok := tx.RangeSelection(); ok {
		if sel.IsCollapsed() {
			if el := nodeutil.ElementAtPoint(tx, sel.Anchor); el != "" {
				if !tx.IsEmpty(el) {
					selectWholeContent(tx, el, sel)
					return true
				}
				if b := tx.FindParent(el, func(k doc.Key) bool { return IsElementBlock(tx, k) }); b != "" {
					return doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: b})
				}
			}
		} else {
			anchorBlock := nodeutil.BlockElementAtPoint(tx, sel.Anchor)
			focusBlock := nodeutil.BlockElementAtPoint(tx, sel.Focus)
			if anchorBlock != "" && focusBlock != "" {
				if anchorBlock == focusBlock {
					start, end := sel.StartEnd(tx)
					if !nodeutil.IsAtBlockStart(tx, start) || !nodeutil.IsAtBlockEnd(tx, end) {
						selectWholeContent(tx, anchorBlock, sel)
						return true
					}
					if b := tx.FindParent(anchorBlock, func(k doc.Key) bool { return IsElementBlock(tx, k) }); b != "" {
						return doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: b})
					}
				} else if common := LowestCommonElementBlock(tx, anchorBlock, focusBlock); common != "" {
					return doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: common})
				}
			}
		}
	}

	all := NewSelection()
	for _, k := range tx.Children(doc.RootKey) {
		doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: k, Selection: all})
	}
	tx.SetSelection(all)
	return true
}

func selectWholeContent(tx *doc.Txn, el doc.Key, sel *doc.RangeSelection) {
	sel.SetPoints(doc.ElementPoint(el, 0), doc.ElementPoint(el, tx.ChildrenSize(el)))
	tx.SetSelection(sel)
}

func removeBlocks(tx *doc.Txn, backward bool) bool {
	sel, ok := tx.Selection().(*Selection)
	if !ok {
		return false
	}
	for _, k := range sel.Nodes(tx) {
		if !tx.Exists(k) || !tx.IsAttached(k) {
			continue
		}
		if backward {
			SelectPrevious(tx, k)
		} else {
			SelectNext(tx, k)
		}
		tx.Remove(k)
	}
	ensureRootChild(tx)
	return true
}

func enter(tx *doc.Txn, _ doc.KeyEvent) bool {
	sel, ok := tx.Selection().(*Selection)
	if !ok {
		return false
	}
	nodes := sel.Nodes(tx)
	if len(nodes) == 0 {
		return false
	}
	p := tx.InsertAfter(nodes[len(nodes)-1], tx.CreateParagraph())
	tx.SelectStart(p)
	return true
}

// ensureRootChild keeps at least one paragraph in the root.
func ensureRootChild(tx *doc.Txn) {
	if tx.IsEmpty(doc.RootKey) {
		p := tx.CreateParagraph()
		tx.Append(doc.RootKey, p)
		tx.Select(p, 0, 0)
	}
}
