package image

import (
	"strings"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/markdown"
)

var altEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)

// MarkdownExtension maps markdown images to image blocks and writes them as
// ![alt](src). Markdown has no width, so it is dropped on export.
func MarkdownExtension() markdown.Extension {
	return markdown.Extension{
		TokenParsers: markdown.ParserMap{
			"image": {Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
				return CreateImage(tx, tok.Attr("src"), tok.Attr("alt"), 0)
			}},
		},
		Serializers: map[string]markdown.Serializer{
			TypeImage: func(e *markdown.Exporter, k doc.Key) string {
				img := Of(e.Txn(), k)
				return "![" + altEscaper.Replace(img.Alt) + "](" + strings.ReplaceAll(img.Src, " ", "%20") + ")"
			},
		},
	}
}
