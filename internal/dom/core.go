package dom

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/richdoc/internal/doc"
)

// FormatTags maps text format bits to the element written around formatted
// text on export. Import accepts these tags and a few aliases.
var FormatTags = []struct {
	Format doc.TextFormat
	Tag    atom.Atom
}{
	{doc.FormatBold, atom.Strong},
	{doc.FormatItalic, atom.Em},
	{doc.FormatStrikethrough, atom.S},
	{doc.FormatUnderline, atom.U},
	{doc.FormatCode, atom.Code},
	{doc.FormatSubscript, atom.Sub},
	{doc.FormatSuperscript, atom.Sup},
	{doc.FormatHighlight, atom.Mark},
}

var formatAliases = map[string]doc.TextFormat{
	"b":      doc.FormatBold,
	"i":      doc.FormatItalic,
	"del":    doc.FormatStrikethrough,
	"strike": doc.FormatStrikethrough,
}

// CoreExtension converts paragraphs, line breaks, text and inline format
// elements.
func CoreExtension() Extension {
	conv := map[string][]Conversion{
		"p": {{Convert: func(tx *doc.Txn, n *html.Node) *Output {
			p := tx.CreateParagraph()
			ApplyElementStyle(tx, p, n)
			return &Output{Nodes: []doc.Key{p}}
		}}},
		"br": {{Convert: func(tx *doc.Txn, _ *html.Node) *Output {
			return &Output{Nodes: []doc.Key{tx.CreateLineBreak()}}
		}}},
		"#text": {{Convert: convertText}},
		"span":  {{Convert: convertSpan}},
	}
	formatConversion := func(f doc.TextFormat) []Conversion {
		return []Conversion{{Convert: func(*doc.Txn, *html.Node) *Output {
			return &Output{ForChild: ApplyTextFormat(f)}
		}}}
	}
	for _, ft := range FormatTags {
		conv[ft.Tag.String()] = formatConversion(ft.Format)
	}
	for tag, f := range formatAliases {
		conv[tag] = formatConversion(f)
	}

	return Extension{
		Conversions: conv,
		Exports: map[string]ExportFunc{
			doc.TypeParagraph: func(tx *doc.Txn, k doc.Key) *html.Node {
				return ElementWithStyle(tx, k, atom.P)
			},
		},
	}
}

// ApplyTextFormat returns a child conversion that sets f on text nodes.
func ApplyTextFormat(f doc.TextFormat) ChildConversion {
	return func(tx *doc.Txn, node, _ doc.Key) doc.Key {
		if tx.IsText(node) {
			if cur := tx.Node(node).TextFormat(); !cur.Has(f) {
				tx.SetTextFormat(node, cur|f)
			}
		}
		return node
	}
}

func convertSpan(_ *doc.Txn, n *html.Node) *Output {
	style := Style(n)
	var f doc.TextFormat
	switch style["font-weight"] {
	case "bold", "bolder", "600", "700", "800", "900":
		f |= doc.FormatBold
	}
	if style["font-style"] == "italic" {
		f |= doc.FormatItalic
	}
	deco := style["text-decoration"]
	if strings.Contains(deco, "line-through") {
		f |= doc.FormatStrikethrough
	}
	if strings.Contains(deco, "underline") {
		f |= doc.FormatUnderline
	}
	switch style["vertical-align"] {
	case "sub":
		f |= doc.FormatSubscript
	case "super":
		f |= doc.FormatSuperscript
	}
	if f == 0 {
		return &Output{}
	}
	return &Output{ForChild: ApplyTextFormat(f)}
}

var whitespace = regexp.MustCompile(`[ \t\r\n\f]+`)

func convertText(tx *doc.Txn, n *html.Node) *Output {
	text := n.Data
	if !insidePre(n) {
		text = collapse(text)
		if strings.HasPrefix(text, " ") {
			prev := adjacentText(n, true)
			if prev == nil || strings.HasSuffix(collapse(prev.Data), " ") {
				text = strings.TrimLeft(text, " ")
			}
		}
		if strings.HasSuffix(text, " ") && adjacentText(n, false) == nil {
			text = strings.TrimRight(text, " ")
		}
	}
	if text == "" {
		return &Output{}
	}
	return &Output{Nodes: []doc.Key{tx.CreateText(norm.NFC.String(text))}}
}

func collapse(s string) string {
	return whitespace.ReplaceAllString(s, " ")
}

func insidePre(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Pre {
			return true
		}
	}
	return false
}

// adjacentText finds the text node rendered next to n on the same line. It
// steps out of inline parents and into inline siblings and stops at block
// elements and line breaks.
func adjacentText(n *html.Node, backward bool) *html.Node {
	step := func(x *html.Node) *html.Node {
		if backward {
			return x.PrevSibling
		}
		return x.NextSibling
	}
	cur := n
	for {
		sib := step(cur)
		for sib == nil {
			p := cur.Parent
			if p == nil || !IsInline(p) {
				return nil
			}
			cur = p
			sib = step(cur)
		}
		switch sib.Type {
		case html.TextNode:
			return sib
		case html.ElementNode:
			if !IsInline(sib) {
				return nil
			}
			if t, stop := edgeText(sib, backward); t != nil || stop {
				return t
			}
		}
		cur = sib
	}
}

// edgeText returns the first (or last) text inside an inline element. stop
// reports that a block boundary was found first.
func edgeText(el *html.Node, backward bool) (*html.Node, bool) {
	c := el.FirstChild
	if backward {
		c = el.LastChild
	}
	for c != nil {
		switch {
		case c.Type == html.TextNode:
			return c, false
		case c.Type == html.ElementNode && !IsInline(c):
			return nil, true
		case c.Type == html.ElementNode:
			if t, stop := edgeText(c, backward); t != nil || stop {
				return t, stop
			}
		}
		if backward {
			c = c.PrevSibling
		} else {
			c = c.NextSibling
		}
	}
	return nil, false
}

// Attr returns the value of attribute key, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether n carries attribute key.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Style parses the inline style attribute of n into lowercase properties.
func Style(n *html.Node) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(Attr(n, "style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(name))] = strings.ToLower(strings.TrimSpace(value))
	}
	return out
}

// TextContent returns the concatenated text below n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(x *html.Node) {
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// ApplyElementStyle copies alignment and direction of n onto element k.
func ApplyElementStyle(tx *doc.Txn, k doc.Key, n *html.Node) {
	if f := doc.ParseElementFormat(Style(n)["text-align"]); f != doc.AlignNone {
		tx.SetFormat(k, f)
	}
	if dir := Attr(n, "dir"); dir == "ltr" || dir == "rtl" {
		tx.SetDirection(k, dir)
	}
}

// NewElement creates a detached HTML element.
func NewElement(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String(), Attr: attrs}
}

// SetAttr sets or replaces attribute key on n.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// ElementWithStyle creates tag carrying the alignment and direction of k.
func ElementWithStyle(tx *doc.Txn, k doc.Key, tag atom.Atom) *html.Node {
	el := NewElement(tag)
	n := tx.Node(k)
	if f := n.Format(); f != doc.AlignNone {
		SetAttr(el, "style", "text-align: "+string(f))
	}
	if dir := n.Direction(); dir != "" {
		SetAttr(el, "dir", dir)
	}
	return el
}
