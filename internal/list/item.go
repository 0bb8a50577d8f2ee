package list

import "github.com/dshills/richdoc/internal/doc"

// appendToList wraps anything that is not a list item into a new item.
func appendToList(tx *doc.Txn, k doc.Key, children []doc.Key) {
	for _, c := range children {
		if IsItem(tx, c) {
			tx.AppendBase(k, c)
			continue
		}
		var checked *bool
		if ListType(tx, k) == Check {
			checked = boolPtr(false)
		}
		item := CreateItem(tx, checked)
		tx.Append(item, c)
		tx.AppendBase(k, item)
	}
}

// appendToItem groups inline children into paragraphs. The first group of an
// empty item becomes its list paragraph.
func appendToItem(tx *doc.Txn, k doc.Key, children []doc.Key) {
	create := tx.CreateParagraph
	if tx.IsEmpty(k) && len(children) > 0 && tx.IsInline(children[0]) {
		first := true
		create = func() doc.Key {
			if first {
				first = false
				return CreateParagraph(tx)
			}
			return tx.CreateParagraph()
		}
	}
	tx.AppendBase(k, tx.WrapContinuousInlines(children, create)...)
}

// splitList moves the items after item into a new list of the same type,
// returned detached. It returns "" when item is the last one.
func splitList(tx *doc.Txn, list, item doc.Key) doc.Key {
	rest := tx.NextSiblings(item)
	if len(rest) == 0 {
		return ""
	}
	start := Start(tx, list) + tx.IndexWithinParent(item) + 1
	tail := CreateList(tx, ListType(tx, list), start)
	tx.AppendBase(tail, rest...)
	return tail
}

// insertAfterItem puts a non-item node after the list, splitting the list
// when item is not its last child.
func insertAfterItem(tx *doc.Txn, k, node doc.Key) doc.Key {
	list := tx.Parent(k)
	if IsItem(tx, node) || !IsList(tx, list) {
		return tx.InsertAfterBase(k, node)
	}
	tail := splitList(tx, list, k)
	tx.InsertAfter(list, node)
	if tail != "" {
		tx.InsertAfterBase(node, tail)
	}
	return node
}

// insertBeforeItem puts a non-item node before the list, splitting the list
// when item is not its first child.
func insertBeforeItem(tx *doc.Txn, k, node doc.Key) doc.Key {
	list := tx.Parent(k)
	if IsItem(tx, node) || !IsList(tx, list) {
		return tx.InsertBeforeBase(k, node)
	}
	prev := tx.PrevSiblings(k)
	if len(prev) == 0 {
		tx.InsertBefore(list, node)
		return node
	}
	head := CreateList(tx, ListType(tx, list), Start(tx, list))
	tx.AppendBase(head, prev...)
	if ListType(tx, list) == Number {
		doc.WritablePayloadOf[*List](tx, list).Start += len(prev)
	}
	tx.InsertBefore(list, node)
	tx.InsertBeforeBase(node, head)
	return node
}

// replaceItem puts with where the item was, outside the list. With
// includeChildren the content of the list paragraph moves into with and the
// remaining children of the item follow it.
func replaceItem(tx *doc.Txn, k, with doc.Key, includeChildren bool) doc.Key {
	list := tx.Parent(k)
	if IsList(tx, list) {
		switch k {
		case tx.FirstChild(list):
			tx.InsertBeforeBase(list, with)
		case tx.LastChild(list):
			tx.InsertAfterBase(list, with)
		default:
			tail := splitList(tx, list, k)
			tx.InsertAfterBase(list, with)
			tx.InsertAfterBase(with, tail)
		}
	} else {
		tx.InsertAfterBase(k, with)
	}

	if includeChildren {
		doc.Assert(tx.IsElement(with), "Replace: %q cannot take children", with)
		if children := tx.Children(k); len(children) > 0 {
			doc.Assert(IsParagraph(tx, children[0]), "first child of list item %q must be a list paragraph", k)
			if content := tx.Children(children[0]); len(content) > 0 {
				tx.Append(with, content...)
			}
			prev := with
			for _, c := range children[1:] {
				tx.InsertAfterBase(prev, c)
				prev = c
			}
		}
	}
	tx.Remove(k)
	return with
}

func insertNewItem(tx *doc.Txn, k doc.Key, _ *doc.RangeSelection) doc.Key {
	var checked *bool
	if ItemOf(tx, k).Checked != nil {
		checked = boolPtr(false)
	}
	item := CreateItem(tx, checked)
	tx.InsertAfter(k, item)
	return item
}

// collapseItem turns the item into a paragraph.
func collapseItem(tx *doc.Txn, k doc.Key, _ *doc.RangeSelection) bool {
	p := tx.CreateParagraph()
	tx.Replace(k, p, true)
	tx.SelectStart(p)
	return true
}

func itemIndent(tx *doc.Txn, k doc.Key) int {
	if list := tx.Parent(k); IsList(tx, list) {
		return Depth(tx, list)
	}
	return 0
}

// setItemIndent moves the item one level at a time. Indenting nests it in a
// new list inside the previous item and stops at the first item of a list.
// Outdenting puts it after the enclosing item and carries the following
// items along as its own sublist.
func setItemIndent(tx *doc.Txn, k doc.Key, level int) {
	doc.Assert(level >= 0, "indent level must not be negative, got %d", level)
	for cur := tx.Indent(k); cur != level; {
		if cur < level {
			prev := tx.PrevSibling(k)
			if !IsItem(tx, prev) {
				return
			}
			sub := CreateList(tx, InferType(tx, k), 1)
			tx.Append(sub, k)
			tx.Append(prev, sub)
			cur++
			continue
		}

		list := tx.Parent(k)
		if !IsList(tx, list) {
			return
		}
		owner := tx.Parent(list)
		doc.Assert(IsItem(tx, owner), "nested list %q must be inside a list item", list)
		followers := tx.NextSiblings(k)
		trailing := tx.NextSiblings(list)
		tx.InsertAfter(owner, k)
		if len(followers) > 0 {
			sub := CreateList(tx, ListType(tx, list), 1)
			tx.Append(sub, followers...)
			tx.Append(k, sub)
		}
		if len(trailing) > 0 {
			tx.Append(k, trailing...)
		}
		cur--
	}
}
