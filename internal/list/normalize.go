package list

import "github.com/dshills/richdoc/internal/doc"

// normalizeList removes empty lists, merges a list into an adjacent list of
// the same type and syncs item numbers and checks with the list type.
func normalizeList(tx *doc.Txn, k doc.Key) {
	if tx.IsEmpty(k) {
		tx.Remove(k)
		return
	}
	if prev := tx.PrevSibling(k); IsList(tx, prev) && ListType(tx, prev) == ListType(tx, k) {
		tx.AppendBase(prev, tx.Children(k)...)
		tx.Remove(k)
		return
	}
	if next := tx.NextSibling(k); IsList(tx, next) && ListType(tx, next) == ListType(tx, k) {
		tx.AppendBase(k, tx.Children(next)...)
		tx.Remove(next)
	}

	for _, c := range tx.Children(k) {
		if !IsItem(tx, c) {
			item := CreateItem(tx, nil)
			tx.InsertBeforeBase(c, item)
			tx.Append(item, c)
		}
	}

	switch ListType(tx, k) {
	case Number:
		start := Start(tx, k)
		for i, c := range tx.Children(k) {
			v := start + i
			SetValue(tx, c, &v)
			SetChecked(tx, c, nil)
		}
	case Bullet:
		for _, c := range tx.Children(k) {
			SetValue(tx, c, nil)
			SetChecked(tx, c, nil)
		}
	case Check:
		for _, c := range tx.Children(k) {
			SetValue(tx, c, nil)
			if ItemOf(tx, c).Checked == nil {
				SetChecked(tx, c, boolPtr(false))
			}
		}
	}
}

// normalizeItem makes sure the first child of an item is a list paragraph.
func normalizeItem(tx *doc.Txn, k doc.Key) {
	first := tx.FirstChild(k)
	switch {
	case first == "":
		tx.AppendBase(k, CreateParagraph(tx))
	case IsParagraph(tx, first):
	case tx.Is(first, doc.TypeParagraph):
		lp := CreateParagraph(tx)
		tx.Replace(first, lp, true)
	case tx.IsInline(first):
		var run []doc.Key
		for c := first; c != "" && tx.IsInline(c); c = tx.NextSibling(c) {
			run = append(run, c)
		}
		lp := CreateParagraph(tx)
		tx.InsertBeforeBase(first, lp)
		tx.AppendBase(lp, run...)
	default:
		tx.InsertBeforeBase(first, CreateParagraph(tx))
	}
}

// mergeAdjacent merges neighboring lists of the same type among the
// children of k. It catches lists that became adjacent when a node between
// them was removed.
func mergeAdjacent(tx *doc.Txn, k doc.Key) {
	children := tx.Children(k)
	for i := len(children) - 1; i > 0; i-- {
		a, b := children[i-1], children[i]
		if IsList(tx, a) && IsList(tx, b) && ListType(tx, a) == ListType(tx, b) {
			tx.AppendBase(a, tx.Children(b)...)
			tx.Remove(b)
		}
	}
}
