package image

import (
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
)

// Plugin returns the image plugin.
func Plugin() editor.Plugin {
	return editor.Plugin{
		Name:     "image",
		Classes:  []doc.Class{Class()},
		Markdown: MarkdownExtension(),
		HTML:     HTMLExtension(),
		Register: func(e *editor.Editor) func() {
			return Register(e.Document())
		},
	}
}
