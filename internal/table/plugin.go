package table

import "github.com/dshills/richdoc/internal/editor"

// Plugin returns the table editor plugin. Inserted tables use the table
// section of the editor configuration.
func Plugin() editor.Plugin {
	return editor.Plugin{
		Name:     "table",
		Classes:  Classes(),
		Markdown: MarkdownExtension(),
		HTML:     HTMLExtension(),
		Register: func(e *editor.Editor) func() {
			return Register(e.Document(), e.Clipboard(), e.Config().Table)
		},
	}
}
