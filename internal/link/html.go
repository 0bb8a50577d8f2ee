package link

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
)

// HTMLExtension converts a elements that have text. Anchors without text
// are unwrapped.
func HTMLExtension() dom.Extension {
	return dom.Extension{
		Conversions: map[string][]dom.Conversion{
			"a": {{
				Match: func(n *html.Node) bool {
					return strings.TrimSpace(dom.TextContent(n)) != ""
				},
				Convert: func(tx *doc.Txn, n *html.Node) *dom.Output {
					return &dom.Output{Nodes: []doc.Key{CreateLink(tx, dom.Attr(n, "href"), dom.Attr(n, "title"))}}
				},
			}},
		},
		Exports: map[string]dom.ExportFunc{
			TypeLink: func(tx *doc.Txn, k doc.Key) *html.Node {
				el := dom.NewElement(atom.A, html.Attribute{Key: "href", Val: URL(tx, k)})
				if title := Title(tx, k); title != "" {
					dom.SetAttr(el, "title", title)
				}
				return el
			},
		},
	}
}
