package dom

import (
	"golang.org/x/net/html"

	"github.com/dshills/richdoc/internal/doc"
)

// Output is the result of converting one HTML node.
type Output struct {
	// Nodes are the nodes built for the HTML node. The last one receives
	// the converted children when it is an element.
	Nodes []doc.Key
	// ForChild transforms every node built from the descendants before it
	// is used. Returning "" drops the node.
	ForChild ChildConversion
	// After post-processes the converted children before they are attached.
	After func(tx *doc.Txn, children []doc.Key) []doc.Key
}

// ChildConversion transforms a node built inside a converted element.
type ChildConversion func(tx *doc.Txn, node, parent doc.Key) doc.Key

// ConversionFunc converts an HTML node. A nil Output states explicitly that
// the node has no equivalent; its converted children are spliced into the
// parent.
type ConversionFunc func(tx *doc.Txn, n *html.Node) *Output

// Conversion is a candidate conversion for a tag.
type Conversion struct {
	// Match restricts the conversion to some nodes. Nil matches all.
	Match    func(n *html.Node) bool
	Convert  ConversionFunc
	Priority int
}

// ExportFunc renders node k. It returns the HTML element that receives the
// rendered children, or nil to render the children in place.
type ExportFunc func(tx *doc.Txn, k doc.Key) *html.Node

// Extension is the HTML vocabulary contributed by one plugin. Conversions are
// keyed by lowercase tag name, "#text" for text nodes.
type Extension struct {
	Conversions map[string][]Conversion
	Exports     map[string]ExportFunc
}

type registry struct {
	conversions map[string][]Conversion
	exports     map[string]ExportFunc
}

func newRegistry() *registry {
	return &registry{
		conversions: make(map[string][]Conversion),
		exports:     make(map[string]ExportFunc),
	}
}

func (r *registry) add(ext Extension) {
	for tag, cs := range ext.Conversions {
		r.conversions[tag] = append(r.conversions[tag], cs...)
	}
	for typ, fn := range ext.Exports {
		r.exports[typ] = fn
	}
}

// lookup returns the matching conversion with the highest priority. On ties
// the last registered wins.
func (r *registry) lookup(n *html.Node) ConversionFunc {
	var best *Conversion
	for i := range r.conversions[nodeName(n)] {
		c := &r.conversions[nodeName(n)][i]
		if c.Match != nil && !c.Match(n) {
			continue
		}
		if best == nil || c.Priority >= best.Priority {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return best.Convert
}

func nodeName(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return "#text"
	case html.ElementNode:
		return n.Data
	}
	return ""
}
