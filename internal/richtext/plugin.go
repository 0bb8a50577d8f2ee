package richtext

import "github.com/dshills/richdoc/internal/editor"

// Plugin returns the rich text editor plugin.
func Plugin() editor.Plugin {
	return editor.Plugin{
		Name:     "rich-text",
		Classes:  Classes(),
		Markdown: MarkdownExtension(),
		HTML:     HTMLExtension(),
		Register: func(e *editor.Editor) func() {
			return Register(e.Document())
		},
	}
}
