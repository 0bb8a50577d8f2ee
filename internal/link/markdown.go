package link

import (
	"strings"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/markdown"
)

var destinationEscaper = strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29")

// MarkdownExtension maps inline links and autolinks to links and writes
// links as [text](url "title").
func MarkdownExtension() markdown.Extension {
	return markdown.Extension{
		TokenParsers: markdown.ParserMap{
			"link": {Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
				return CreateLink(tx, tok.Attr("href"), tok.Attr("title"))
			}},
		},
		Serializers: map[string]markdown.Serializer{
			TypeLink: func(e *markdown.Exporter, k doc.Key) string {
				tx := e.Txn()
				var b strings.Builder
				b.WriteString("[")
				b.WriteString(e.Children(k))
				b.WriteString("](")
				b.WriteString(destinationEscaper.Replace(URL(tx, k)))
				if title := Title(tx, k); title != "" {
					b.WriteString(` "`)
					b.WriteString(strings.ReplaceAll(title, `"`, `\"`))
					b.WriteString(`"`)
				}
				b.WriteString(")")
				return b.String()
			},
		},
	}
}
