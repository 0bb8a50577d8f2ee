package dom

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
)

var inlineTags = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.Acronym: true, atom.B: true,
	atom.Cite: true, atom.Code: true, atom.Del: true, atom.Em: true,
	atom.I: true, atom.Ins: true, atom.Kbd: true, atom.Label: true,
	atom.Output: true, atom.Q: true, atom.Ruby: true, atom.S: true,
	atom.Samp: true, atom.Span: true, atom.Strong: true, atom.Sub: true,
	atom.Sup: true, atom.Time: true, atom.U: true, atom.Tt: true,
	atom.Var: true,
}

// IsInline reports whether n is text or an inline element.
func IsInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		return inlineTags[n.DataAtom]
	}
	return false
}

type importer struct {
	tx     *doc.Txn
	reg    *registry
	logger *zap.Logger
}

func (im *importer) convert(n *html.Node, parent doc.Key, forChild []ChildConversion) []doc.Key {
	if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
		return nil
	}
	if n.Type == html.CommentNode || n.Type == html.DoctypeNode {
		return nil
	}

	tx := im.tx
	var nodes []doc.Key
	var current doc.Key

	fn := im.reg.lookup(n)
	var out *Output
	if fn != nil {
		out = fn(tx, n)
	}

	if out != nil && len(out.Nodes) > 0 {
		current = out.Nodes[len(out.Nodes)-1]
		for _, conv := range forChild {
			if current = conv(tx, current, parent); current == "" {
				break
			}
		}
		if current != "" {
			if len(out.Nodes) > 1 {
				nodes = append(nodes, out.Nodes...)
			} else {
				nodes = append(nodes, current)
			}
		}
	}

	if current != "" && !tx.IsElement(current) {
		return nodes
	}

	if out != nil && out.ForChild != nil {
		forChild = append(forChild[:len(forChild):len(forChild)], out.ForChild)
	}

	var children []doc.Key
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, im.convert(c, current, forChild)...)
	}
	if out != nil && out.After != nil {
		children = out.After(tx, children)
	}

	switch {
	case current != "":
		tx.Append(current, children...)
	case (fn != nil && out == nil) || IsInline(n):
		return children
	default:
		if fn == nil && n.Type == html.ElementNode && len(children) > 0 {
			im.logger.Debug("html element without conversion wrapped", zap.String("tag", n.Data))
		}
		nodes = append(nodes, tx.WrapContinuousInlines(children, tx.CreateParagraph)...)
	}
	return nodes
}
