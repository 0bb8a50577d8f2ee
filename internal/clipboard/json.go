package clipboard

import "github.com/dshills/richdoc/internal/doc"

// SelectedNodes serializes the selected part of the document. Range
// selections keep only the selected children of partially covered elements
// and the selected part of text. Other selections copy whole subtrees.
func SelectedNodes(tx *doc.Txn, sel doc.Selection) []any {
	keys := sel.Nodes(tx)
	selected := make(map[doc.Key]bool, len(keys))
	for _, k := range keys {
		selected[k] = true
	}

	rs, ok := sel.(*doc.RangeSelection)
	if !ok {
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			if tx.FindParent(tx.Parent(k), func(p doc.Key) bool { return selected[p] }) != "" {
				continue
			}
			out = append(out, tx.ExportNode(k))
		}
		return out
	}

	start, end := rs.StartEnd(tx)
	var prune func(k doc.Key) map[string]any
	prune = func(k doc.Key) map[string]any {
		if !tx.IsElement(k) {
			if !selected[k] {
				return nil
			}
			m := tx.ExportNode(k)
			if tx.IsText(k) {
				text := tx.Node(k).Text()
				from, to := 0, doc.GraphemeLen(text)
				if start.Key == k && start.Type == doc.PointText {
					from = start.Offset
				}
				if end.Key == k && end.Type == doc.PointText {
					to = end.Offset
				}
				m["text"] = doc.GraphemeSlice(text, from, to)
			}
			return m
		}
		children := make([]any, 0)
		for _, c := range tx.Children(k) {
			if m := prune(c); m != nil {
				children = append(children, m)
			}
		}
		if !selected[k] && len(children) == 0 {
			return nil
		}
		m := tx.ExportNode(k)
		m["children"] = children
		return m
	}

	var out []any
	for _, k := range tx.Children(doc.RootKey) {
		if m := prune(k); m != nil {
			out = append(out, m)
		}
	}
	return out
}
