package editor

import (
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
	"github.com/dshills/richdoc/internal/markdown"
)

// Plugin is a unit of editor functionality.
type Plugin struct {
	Name     string
	Classes  []doc.Class
	Markdown markdown.Extension
	HTML     dom.Extension
	// Register installs commands and transforms and returns a function
	// removing them. It may be nil.
	Register func(e *Editor) func()
}
