package list

import (
	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/nodeutil"
)

// InsertList turns the block at the caret into a list of the given type, or
// inserts an empty list after it.
var InsertList = doc.NewCommand[Type]("INSERT_LIST")

// ToggleChecked flips the check mark of an item. An empty key toggles the
// items touched by the selection.
var ToggleChecked = doc.NewCommand[doc.Key]("TOGGLE_CHECKED")

// Register installs the list commands and transforms on d.
func Register(d *doc.Document) func() {
	return doc.MergeRegister(
		d.RegisterTransform(doc.TypeRoot, mergeAdjacent),
		d.RegisterTransform(TypeListItem, mergeAdjacent),
		doc.RegisterCommand(d, doc.KeyEnter, enter, doc.PriorityLow),
		doc.RegisterCommand(d, doc.InsertParagraph, insertParagraph, doc.PriorityLow),
		doc.RegisterCommand(d, doc.KeyBackspace, backspace, doc.PriorityLow),
		doc.RegisterCommand(d, block.SelectBlock, func(tx *doc.Txn, p block.SelectBlockPayload) bool {
			if !IsList(tx, p.Node) {
				return false
			}
			sel := p.Selection
			if sel == nil {
				sel = block.NewSelection()
			}
			for _, item := range tx.Children(p.Node) {
				doc.Dispatch(tx, block.SelectBlock, block.SelectBlockPayload{Node: item, Selection: sel})
			}
			if p.Selection == nil {
				tx.SetSelection(sel)
			}
			return true
		}, doc.PriorityLow),
		doc.RegisterCommand(d, InsertList, insertList, doc.PriorityEditor),
		doc.RegisterCommand(d, ToggleChecked, toggleChecked, doc.PriorityEditor),
	)
}

// enter leaves or outdents an empty item, and turns an empty trailing
// paragraph of an item into a new item.
func enter(tx *doc.Txn, _ doc.KeyEvent) bool {
	sel, ok := tx.RangeSelection()
	if !ok || !sel.IsCollapsed() {
		return false
	}
	b := nodeutil.BlockIfAtBlockStart(tx, sel.Anchor)
	if b == "" || !tx.IsEmpty(b) {
		return false
	}
	item := tx.Parent(b)
	if !IsItem(tx, item) {
		return false
	}

	if IsParagraph(tx, b) {
		if tx.ChildrenSize(item) != 1 {
			return false
		}
		if indent := tx.Indent(item); indent > 0 {
			tx.SetIndent(item, indent-1)
			tx.SelectStart(b)
		} else {
			tx.CollapseAtStart(item, sel)
		}
		return true
	}

	if tx.Is(b, doc.TypeParagraph) && tx.LastChild(item) == b {
		next := CreateItem(tx, nil)
		tx.InsertAfter(item, next)
		lp := CreateParagraph(tx)
		tx.AppendBase(next, lp)
		tx.Remove(b)
		tx.Select(lp, 0, 0)
		return true
	}
	return false
}

// insertParagraph splits the item at the caret. The new item receives the
// content after the caret and the nested blocks of the old one.
func insertParagraph(tx *doc.Txn, _ struct{}) bool {
	sel, ok := tx.RangeSelection()
	if !ok {
		return false
	}
	sel.RemoveText(tx)
	lp := tx.BlockAt(sel.Anchor)
	if !IsParagraph(tx, lp) {
		return false
	}

	parent, idx := sel.Anchor.Key, sel.Anchor.Offset
	if sel.Anchor.Type == doc.PointText {
		parent, idx = tx.SplitNodeAtPoint(parent, idx)
	}
	for parent != lp {
		parent, idx = tx.SplitNodeAtPoint(parent, idx)
	}

	next := tx.InsertNewAfter(lp, sel)
	nextLp := CreateParagraph(tx)
	tx.AppendBase(next, nextLp)
	if rest := tx.Children(lp)[idx:]; len(rest) > 0 {
		tx.AppendBase(nextLp, rest...)
	}
	if nested := tx.NextSiblings(lp); len(nested) > 0 {
		tx.AppendBase(next, nested...)
	}
	tx.SelectStart(nextLp)
	return true
}

// backspace at the start of an item turns it into a paragraph: inside the
// previous item when there is one, in place of the item otherwise. A
// paragraph ending the last item is moved out of the list.
func backspace(tx *doc.Txn, _ doc.KeyEvent) bool {
	sel, ok := tx.RangeSelection()
	if !ok || !sel.IsCollapsed() {
		return false
	}
	b := nodeutil.BlockIfAtBlockStart(tx, sel.Anchor)
	if b == "" {
		return false
	}
	item := tx.Parent(b)
	if !IsItem(tx, item) {
		return false
	}

	if IsParagraph(tx, b) {
		prev := tx.PrevSibling(item)
		if !IsItem(tx, prev) {
			return tx.CollapseAtStart(item, sel)
		}
		tx.Append(prev, item)
		p := tx.CreateParagraph()
		tx.Replace(item, p, true)
		tx.SelectStart(p)
		return true
	}

	list := tx.Parent(item)
	doc.Assert(IsList(tx, list), "parent of list item %q must be a list", item)
	if tx.Is(b, doc.TypeParagraph) && tx.LastChild(item) == b && tx.LastChild(list) == item {
		tx.InsertAfter(list, b)
		return true
	}
	return false
}

func insertList(tx *doc.Txn, t Type) bool {
	sel, ok := tx.RangeSelection()
	if !ok || !t.Valid() {
		return false
	}
	target := tx.BlockAt(sel.Anchor)
	if target == "" || target == doc.RootKey {
		return false
	}
	var checked *bool
	if t == Check {
		checked = boolPtr(false)
	}
	l := CreateList(tx, t, 1)
	item := CreateItem(tx, checked)
	lp := CreateParagraph(tx)
	tx.AppendBase(item, lp)
	tx.AppendBase(l, item)

	if tx.Is(target, doc.TypeParagraph) {
		if content := tx.Children(target); len(content) > 0 {
			tx.AppendBase(lp, content...)
		}
		tx.Replace(target, l, false)
	} else {
		tx.InsertAfter(target, l)
	}
	tx.SelectStart(lp)
	return true
}

func toggleChecked(tx *doc.Txn, k doc.Key) bool {
	var items []doc.Key
	if k != "" {
		if !IsItem(tx, k) {
			return false
		}
		items = append(items, k)
	} else if sel := tx.Selection(); sel != nil {
		seen := make(map[doc.Key]bool)
		for _, n := range sel.Nodes(tx) {
			item := tx.FindParent(n, func(p doc.Key) bool { return IsItem(tx, p) })
			if item != "" && !seen[item] {
				seen[item] = true
				items = append(items, item)
			}
		}
	}
	toggled := false
	for _, item := range items {
		checked := ItemOf(tx, item).Checked
		if checked == nil {
			continue
		}
		SetChecked(tx, item, boolPtr(!*checked))
		toggled = true
	}
	return toggled
}
