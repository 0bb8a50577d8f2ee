package list

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
)

const attrListType = "data-list-type"

// HTMLExtension converts ol, ul and li.
func HTMLExtension() dom.Extension {
	return dom.Extension{
		Conversions: map[string][]dom.Conversion{
			"ol": {{Convert: func(tx *doc.Txn, n *html.Node) *dom.Output {
				start, err := strconv.Atoi(dom.Attr(n, "start"))
				if err != nil {
					start = 1
				}
				return &dom.Output{Nodes: []doc.Key{CreateList(tx, Number, start)}}
			}}},
			"ul": {{Convert: func(tx *doc.Txn, n *html.Node) *dom.Output {
				t := Bullet
				if dom.Attr(n, attrListType) == string(Check) {
					t = Check
				}
				return &dom.Output{Nodes: []doc.Key{CreateList(tx, t, 1)}}
			}}},
			"li": {{Convert: func(tx *doc.Txn, n *html.Node) *dom.Output {
				var checked *bool
				if dom.HasAttr(n, "aria-checked") {
					checked = boolPtr(dom.Attr(n, "aria-checked") == "true")
				}
				item := CreateItem(tx, checked)
				dom.ApplyElementStyle(tx, item, n)
				return &dom.Output{Nodes: []doc.Key{item}}
			}}},
		},
		Exports: map[string]dom.ExportFunc{
			TypeList: func(tx *doc.Txn, k doc.Key) *html.Node {
				t := ListType(tx, k)
				tag := atom.Ul
				if t == Number {
					tag = atom.Ol
				}
				el := dom.NewElement(tag, html.Attribute{Key: attrListType, Val: string(t)})
				if start := Start(tx, k); t == Number && start != 1 {
					dom.SetAttr(el, "start", strconv.Itoa(start))
				}
				return el
			},
			TypeListItem: func(tx *doc.Txn, k doc.Key) *html.Node {
				el := dom.ElementWithStyle(tx, k, atom.Li)
				it := ItemOf(tx, k)
				if it.Checked != nil {
					dom.SetAttr(el, "aria-checked", strconv.FormatBool(*it.Checked))
				}
				if it.Value != nil {
					dom.SetAttr(el, "value", strconv.Itoa(*it.Value))
				}
				return el
			},
			TypeListParagraph: func(tx *doc.Txn, k doc.Key) *html.Node {
				p := dom.ElementWithStyle(tx, k, atom.P)
				if tx.IsEmpty(k) {
					p.AppendChild(dom.NewElement(atom.Br))
				}
				return p
			},
		},
	}
}
