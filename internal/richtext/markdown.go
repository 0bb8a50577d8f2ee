package richtext

import (
	"strings"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/markdown"
)

func formatParser(f doc.TextFormat) markdown.TokenParser {
	return markdown.TokenParser{Format: func(*markdown.Token) doc.TextFormat { return f }}
}

// MarkdownExtension maps headings, quotes, rules and the inline formats.
func MarkdownExtension() markdown.Extension {
	return markdown.Extension{
		FormatTags: markdown.FormatTags{
			doc.FormatBold:          "**",
			doc.FormatItalic:        "*",
			doc.FormatStrikethrough: "~~",
			doc.FormatCode:          "`",
		},
		TokenParsers: markdown.ParserMap{
			"heading": {Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
				return CreateHeading(tx, tok.Tag)
			}},
			"blockquote": {Node: func(tx *doc.Txn, _ *markdown.Token) doc.Key {
				return CreateQuote(tx)
			}},
			"hr": {Node: func(tx *doc.Txn, _ *markdown.Token) doc.Key {
				return CreateHorizontalRule(tx)
			}},
			"em":          formatParser(doc.FormatItalic),
			"strong":      formatParser(doc.FormatBold),
			"s":           formatParser(doc.FormatStrikethrough),
			"code_inline": formatParser(doc.FormatCode),
		},
		Serializers: map[string]markdown.Serializer{
			TypeHeading: func(e *markdown.Exporter, k doc.Key) string {
				level := HeadingLevel(HeadingTag(e.Txn(), k))
				return e.Children(k, markdown.WithLinePrefix(strings.Repeat("#", level)+" "))
			},
			TypeQuote: func(e *markdown.Exporter, k doc.Key) string {
				return e.Children(k, markdown.WithLinePrefix("> "))
			},
			TypeHorizontalRule: func(*markdown.Exporter, doc.Key) string {
				return "---"
			},
		},
	}
}
