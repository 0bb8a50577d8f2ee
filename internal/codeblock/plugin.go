package codeblock

import (
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
)

// Plugin returns the code block plugin.
func Plugin() editor.Plugin {
	return editor.Plugin{
		Name:     "code-block",
		Classes:  []doc.Class{Class()},
		Markdown: MarkdownExtension(),
		HTML:     HTMLExtension(),
		Register: func(e *editor.Editor) func() {
			return Register(e.Document())
		},
	}
}
