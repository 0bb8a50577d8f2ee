// Package builtin assembles the default plugin set: rich text, lists,
// tables, links, code blocks, images and the markdown input rules of all of
// them.
package builtin

import (
	"github.com/dshills/richdoc/internal/codeblock"
	"github.com/dshills/richdoc/internal/editor"
	"github.com/dshills/richdoc/internal/image"
	"github.com/dshills/richdoc/internal/inputrule"
	"github.com/dshills/richdoc/internal/link"
	"github.com/dshills/richdoc/internal/list"
	"github.com/dshills/richdoc/internal/richtext"
	"github.com/dshills/richdoc/internal/table"
)

// InputRules returns the input rules of every built-in plugin.
func InputRules() []inputrule.Rule {
	var rules []inputrule.Rule
	rules = append(rules, richtext.InputRules()...)
	rules = append(rules, list.InputRules()...)
	rules = append(rules, codeblock.InputRules()...)
	return rules
}

// Plugins returns the built-in plugins in registration order.
func Plugins() []editor.Plugin {
	return []editor.Plugin{
		richtext.Plugin(),
		list.Plugin(),
		table.Plugin(),
		link.Plugin(),
		codeblock.Plugin(),
		image.Plugin(),
		inputrule.Plugin(InputRules()...),
	}
}

// New creates an editor with the built-in plugins followed by the plugins
// given in opts.
func New(opts ...editor.Option) (*editor.Editor, error) {
	return editor.New(append([]editor.Option{editor.WithPlugins(Plugins()...)}, opts...)...)
}
