package codeblock

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
)

const attrLanguage = "data-language"

// HTMLExtension converts pre elements and writes code blocks as
// <pre data-language="x"><code>...</code></pre>.
func HTMLExtension() dom.Extension {
	return dom.Extension{
		Conversions: map[string][]dom.Conversion{
			"pre": {{Convert: func(tx *doc.Txn, n *html.Node) *dom.Output {
				code := strings.TrimSuffix(dom.TextContent(n), "\n")
				return &dom.Output{Nodes: []doc.Key{CreateCodeBlock(tx, languageOf(n), code)}}
			}}},
		},
		Exports: map[string]dom.ExportFunc{
			TypeCodeBlock: func(tx *doc.Txn, k doc.Key) *html.Node {
				pre := dom.NewElement(atom.Pre)
				if lang := Language(tx, k); lang != "" {
					dom.SetAttr(pre, attrLanguage, lang)
				}
				code := dom.NewElement(atom.Code)
				code.AppendChild(&html.Node{Type: html.TextNode, Data: Code(tx, k)})
				pre.AppendChild(code)
				return pre
			},
		},
	}
}

// languageOf reads the language from data-language on pre or its code child,
// or from a language-x class on the code child.
func languageOf(pre *html.Node) string {
	if lang := dom.Attr(pre, attrLanguage); lang != "" {
		return lang
	}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom != atom.Code {
			continue
		}
		if lang := dom.Attr(c, attrLanguage); lang != "" {
			return lang
		}
		for _, class := range strings.Fields(dom.Attr(c, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				return lang
			}
		}
	}
	return ""
}
