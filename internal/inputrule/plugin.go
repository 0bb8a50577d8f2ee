package inputrule

import "github.com/dshills/richdoc/internal/editor"

// Plugin returns an editor plugin applying rules while typing.
func Plugin(rules ...Rule) editor.Plugin {
	s := New(rules...)
	return editor.Plugin{
		Name: "input-rule",
		Register: func(e *editor.Editor) func() {
			return s.Register(e.Document())
		},
	}
}
