package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
)

type exporter struct {
	tx  *doc.Txn
	reg *registry

	// selected is nil for a full export.
	selected map[doc.Key]bool
	// partial is set for range selections: selected elements keep only
	// their selected children and text is cut to the selected offsets.
	partial    bool
	start, end doc.Point
}

func (e *exporter) withSelection(sel doc.Selection) {
	e.selected = make(map[doc.Key]bool)
	for _, k := range sel.Nodes(e.tx) {
		e.selected[k] = true
	}
	if rs, ok := sel.(*doc.RangeSelection); ok {
		e.partial = true
		e.start, e.end = rs.StartEnd(e.tx)
	}
}

// node renders k into parent and reports whether anything was included.
func (e *exporter) node(parent *html.Node, k doc.Key, full bool) bool {
	tx := e.tx
	self := e.selected == nil || full || e.selected[k]
	if self && !e.partial {
		full = true
	}

	switch tx.Kind(k) {
	case doc.KindText:
		if !self {
			return false
		}
		e.text(parent, k)
		return true
	case doc.KindLineBreak:
		if !self {
			return false
		}
		parent.AppendChild(NewElement(atom.Br))
		return true
	}

	var el *html.Node
	if fn, ok := e.reg.exports[tx.Type(k)]; ok {
		el = fn(tx, k)
	}
	if !tx.IsElement(k) {
		if !self || el == nil {
			return false
		}
		parent.AppendChild(el)
		return true
	}

	target := el
	if target == nil {
		target = &html.Node{Type: html.DocumentNode}
	}
	included := self
	for _, c := range tx.Children(k) {
		if e.node(target, c, full) {
			included = true
		}
	}
	if !included {
		return false
	}
	if el != nil {
		parent.AppendChild(el)
		return true
	}
	for c := target.FirstChild; c != nil; {
		next := c.NextSibling
		target.RemoveChild(c)
		parent.AppendChild(c)
		c = next
	}
	return true
}

func (e *exporter) text(parent *html.Node, k doc.Key) {
	n := e.tx.Node(k)
	content := n.Text()
	if e.partial {
		from, to := 0, doc.GraphemeLen(content)
		if e.start.Key == k && e.start.Type == doc.PointText {
			from = e.start.Offset
		}
		if e.end.Key == k && e.end.Type == doc.PointText {
			to = e.end.Offset
		}
		content = doc.GraphemeSlice(content, from, to)
	}
	out := &html.Node{Type: html.TextNode, Data: content}
	format := n.TextFormat()
	for _, ft := range FormatTags {
		if format&ft.Format == 0 {
			continue
		}
		wrap := NewElement(ft.Tag)
		wrap.AppendChild(out)
		out = wrap
	}
	if style := n.Style(); style != "" {
		span := NewElement(atom.Span, html.Attribute{Key: "style", Val: style})
		span.AppendChild(out)
		out = span
	}
	parent.AppendChild(out)
}

func render(root *html.Node) (string, error) {
	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
