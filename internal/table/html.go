package table

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
)

const attrScrollable = "data-scrollable"

var pixelWidth = regexp.MustCompile(`^(\d+(\.\d+)?)px$`)

// HTMLExtension converts table, tr, td and th. Section elements are
// unwrapped and column groups only contribute widths.
func HTMLExtension() dom.Extension {
	unwrap := []dom.Conversion{{Convert: func(*doc.Txn, *html.Node) *dom.Output { return nil }}}
	drop := []dom.Conversion{{Convert: func(*doc.Txn, *html.Node) *dom.Output {
		return &dom.Output{After: func(*doc.Txn, []doc.Key) []doc.Key { return nil }}
	}}}
	cell := []dom.Conversion{{Convert: convertCell}}
	return dom.Extension{
		Conversions: map[string][]dom.Conversion{
			"table": {{Convert: convertTable}},
			"thead": unwrap,
			"tbody": unwrap,
			"tfoot": unwrap,
			"colgroup": drop,
			"caption":  drop,
			"tr": {{Convert: func(tx *doc.Txn, _ *html.Node) *dom.Output {
				return &dom.Output{Nodes: []doc.Key{CreateRow(tx)}, After: dropBlankText}
			}}},
			"td": cell,
			"th": cell,
		},
		Exports: map[string]dom.ExportFunc{
			TypeTable: exportTableHTML,
			TypeRow: func(*doc.Txn, doc.Key) *html.Node {
				return dom.NewElement(atom.Tr)
			},
			TypeCell: exportCellHTML,
		},
	}
}

func convertTable(tx *doc.Txn, n *html.Node) *dom.Output {
	t := CreateTable(tx)
	var widths []float64
	set := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom != atom.Colgroup {
			continue
		}
		for col := c.FirstChild; col != nil; col = col.NextSibling {
			if col.DataAtom != atom.Col {
				continue
			}
			var w float64
			if m := pixelWidth.FindStringSubmatch(dom.Style(col)["width"]); m != nil {
				w, _ = strconv.ParseFloat(m[1], 64)
				set = true
			}
			widths = append(widths, w)
		}
	}
	if set {
		SetColumnWidths(tx, t, widths)
	}
	SetScrollable(tx, t, dom.Attr(n, attrScrollable) == "true")
	if tr := firstRow(n); tr != nil {
		if first := firstElement(tr); first != nil && first.DataAtom == atom.Th {
			SetHeaderRow(tx, t, true)
		}
	}
	return &dom.Output{Nodes: []doc.Key{t}, After: dropBlankText}
}

func convertCell(tx *doc.Txn, n *html.Node) *dom.Output {
	c := CreateCell(tx)
	if span, err := strconv.Atoi(dom.Attr(n, "colspan")); err == nil && span > 1 {
		SetColSpan(tx, c, span)
	}
	if span, err := strconv.Atoi(dom.Attr(n, "rowspan")); err == nil && span > 1 {
		SetRowSpan(tx, c, span)
	}
	dom.ApplyElementStyle(tx, c, n)
	return &dom.Output{Nodes: []doc.Key{c}}
}

// firstRow returns the first tr of table n, looking into row groups.
func firstRow(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.DataAtom {
		case atom.Tr:
			return c
		case atom.Thead, atom.Tbody, atom.Tfoot:
			if tr := firstRow(c); tr != nil {
				return tr
			}
		}
	}
	return nil
}

func firstElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// dropBlankText removes the whitespace between table elements.
func dropBlankText(tx *doc.Txn, children []doc.Key) []doc.Key {
	out := children[:0]
	for _, k := range children {
		if tx.IsText(k) && strings.TrimSpace(tx.Node(k).Text()) == "" {
			continue
		}
		out = append(out, k)
	}
	return out
}

func exportTableHTML(tx *doc.Txn, t doc.Key) *html.Node {
	el := dom.NewElement(atom.Table)
	if Scrollable(tx, t) {
		dom.SetAttr(el, attrScrollable, "true")
	}
	widths := ColumnWidths(tx, t)
	set := false
	for _, w := range widths {
		set = set || w > 0
	}
	if set {
		group := dom.NewElement(atom.Colgroup)
		for _, w := range widths {
			col := dom.NewElement(atom.Col)
			if w > 0 {
				dom.SetAttr(col, "style", "width: "+strconv.FormatFloat(w, 'f', -1, 64)+"px")
			}
			group.AppendChild(col)
		}
		el.AppendChild(group)
	}
	return el
}

func exportCellHTML(tx *doc.Txn, k doc.Key) *html.Node {
	tag := atom.Td
	row := tx.Parent(k)
	if t := tx.Parent(row); IsTable(tx, t) && HeaderRow(tx, t) && tx.FirstChild(t) == row {
		tag = atom.Th
	}
	el := dom.ElementWithStyle(tx, k, tag)
	if span := ColSpan(tx, k); span > 1 {
		dom.SetAttr(el, "colspan", strconv.Itoa(span))
	}
	if span := RowSpan(tx, k); span > 1 {
		dom.SetAttr(el, "rowspan", strconv.Itoa(span))
	}
	return el
}
