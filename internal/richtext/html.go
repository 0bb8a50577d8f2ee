package richtext

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
)

var headingAtoms = map[string]atom.Atom{
	"h1": atom.H1, "h2": atom.H2, "h3": atom.H3,
	"h4": atom.H4, "h5": atom.H5, "h6": atom.H6,
}

// HTMLExtension converts h1-h6, blockquote and hr.
func HTMLExtension() dom.Extension {
	conv := map[string][]dom.Conversion{
		"blockquote": {{Convert: func(tx *doc.Txn, n *html.Node) *dom.Output {
			q := CreateQuote(tx)
			dom.ApplyElementStyle(tx, q, n)
			return &dom.Output{Nodes: []doc.Key{q}}
		}}},
		"hr": {{Convert: func(tx *doc.Txn, _ *html.Node) *dom.Output {
			return &dom.Output{Nodes: []doc.Key{CreateHorizontalRule(tx)}}
		}}},
	}
	for tag := range headingAtoms {
		conv[tag] = []dom.Conversion{{Convert: func(tx *doc.Txn, n *html.Node) *dom.Output {
			h := CreateHeading(tx, n.Data)
			dom.ApplyElementStyle(tx, h, n)
			return &dom.Output{Nodes: []doc.Key{h}}
		}}}
	}
	return dom.Extension{
		Conversions: conv,
		Exports: map[string]dom.ExportFunc{
			TypeHeading: func(tx *doc.Txn, k doc.Key) *html.Node {
				return dom.ElementWithStyle(tx, k, headingAtoms[HeadingTag(tx, k)])
			},
			TypeQuote: func(tx *doc.Txn, k doc.Key) *html.Node {
				return dom.ElementWithStyle(tx, k, atom.Blockquote)
			},
			TypeHorizontalRule: func(*doc.Txn, doc.Key) *html.Node {
				return dom.NewElement(atom.Hr)
			},
		},
	}
}
