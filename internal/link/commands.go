package link

import "github.com/dshills/richdoc/internal/doc"

// Payload is the payload of TOGGLE_LINK.
type Payload struct {
	// URL is the link target. An empty URL removes the selected links.
	URL   string
	Title string
}

// ToggleLink links the selected content, or unlinks it when the payload URL
// is empty.
var ToggleLink = doc.NewCommand[Payload]("TOGGLE_LINK")

// Register installs TOGGLE_LINK on d.
func Register(d *doc.Document) func() {
	return doc.RegisterCommand(d, ToggleLink, func(tx *doc.Txn, p Payload) bool {
		sel, ok := tx.RangeSelection()
		if !ok {
			return false
		}
		Toggle(tx, sel, p.URL, p.Title)
		return true
	}, doc.PriorityEditor)
}

// Toggle applies url to the content of sel. Links touched by the selection
// are updated in place; runs of unlinked inline content sharing a parent are
// wrapped in new links. An empty url unwraps every touched link. A collapsed
// selection only updates or unwraps the link holding the caret.
func Toggle(tx *doc.Txn, sel *doc.RangeSelection, url, title string) {
	if url == "" {
		seen := make(map[doc.Key]bool)
		for _, k := range sel.Nodes(tx) {
			if l := Of(tx, k); l != "" && !seen[l] {
				seen[l] = true
				Unwrap(tx, l)
			}
		}
		return
	}
	if sel.IsCollapsed() {
		if l := Of(tx, sel.Anchor.Key); l != "" {
			Set(tx, l, url, title)
		}
		return
	}

	var run []doc.Key
	wrap := func() {
		if len(run) == 0 {
			return
		}
		l := CreateLink(tx, url, title)
		tx.InsertBeforeBase(run[0], l)
		tx.AppendBase(l, run...)
		run = nil
	}
	updated := make(map[doc.Key]bool)
	for _, k := range selectedLeaves(tx, sel) {
		if l := Of(tx, k); l != "" {
			wrap()
			if !updated[l] {
				updated[l] = true
				Set(tx, l, url, title)
			}
			continue
		}
		if n := len(run); n > 0 && tx.NextSibling(run[n-1]) != k {
			wrap()
		}
		run = append(run, k)
	}
	wrap()
}

// selectedLeaves splits the text at the selection edges and returns the
// selected text nodes and line breaks in document order.
func selectedLeaves(tx *doc.Txn, sel *doc.RangeSelection) []doc.Key {
	backward := sel.IsBackward(tx)
	start, end := sel.StartEnd(tx)

	if start.Type == doc.PointText && end.Type == doc.PointText && start.Key == end.Key {
		keys := tx.SplitText(start.Key, start.Offset, end.Offset)
		target := keys[0]
		if start.Offset > 0 && len(keys) > 1 {
			target = keys[1]
		}
		selectRange(sel, doc.TextPoint(target, 0), doc.TextPoint(target, tx.TextSize(target)), backward)
		return []doc.Key{target}
	}

	if end.Type == doc.PointText {
		tx.SplitText(end.Key, end.Offset)
	}
	if start.Type == doc.PointText && start.Offset > 0 {
		if keys := tx.SplitText(start.Key, start.Offset); len(keys) > 1 {
			start = doc.TextPoint(keys[1], 0)
		}
	}
	selectRange(sel, start, end, backward)

	var out []doc.Key
	for _, k := range sel.Nodes(tx) {
		switch {
		case tx.IsLineBreak(k):
			out = append(out, k)
		case tx.IsText(k) && tx.TextSize(k) > 0:
			if k == start.Key && start.Type == doc.PointText && start.Offset >= tx.TextSize(k) {
				continue
			}
			if k == end.Key && end.Type == doc.PointText && end.Offset == 0 {
				continue
			}
			out = append(out, k)
		}
	}
	return out
}

func selectRange(sel *doc.RangeSelection, start, end doc.Point, backward bool) {
	if backward {
		sel.SetPoints(end, start)
		return
	}
	sel.SetPoints(start, end)
}
