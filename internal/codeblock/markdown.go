package codeblock

import (
	"strings"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/markdown"
)

// MarkdownExtension maps fenced and indented code to code blocks. Code
// blocks are always written fenced.
func MarkdownExtension() markdown.Extension {
	return markdown.Extension{
		TokenParsers: markdown.ParserMap{
			"fence": {Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
				var lang string
				if fields := strings.Fields(tok.Info); len(fields) > 0 {
					lang = fields[0]
				}
				return CreateCodeBlock(tx, lang, strings.TrimSuffix(tok.Content, "\n"))
			}},
			"code_block": {Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
				return CreateCodeBlock(tx, "", strings.TrimSuffix(tok.Content, "\n"))
			}},
		},
		Serializers: map[string]markdown.Serializer{
			TypeCodeBlock: func(e *markdown.Exporter, k doc.Key) string {
				code := Code(e.Txn(), k)
				fence := Fence(code)
				var b strings.Builder
				b.WriteString(fence)
				b.WriteString(Language(e.Txn(), k))
				b.WriteString("\n")
				if code != "" {
					b.WriteString(code)
					b.WriteString("\n")
				}
				b.WriteString(fence)
				return b.String()
			},
		},
	}
}

// Fence returns a backtick fence longer than any backtick run in code.
func Fence(code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(3, longest+1))
}
