package list

import "github.com/dshills/richdoc/internal/editor"

// Plugin returns the list editor plugin.
func Plugin() editor.Plugin {
	return editor.Plugin{
		Name:     "list",
		Classes:  Classes(),
		Markdown: MarkdownExtension(),
		HTML:     HTMLExtension(),
		Register: func(e *editor.Editor) func() {
			return Register(e.Document())
		},
	}
}
