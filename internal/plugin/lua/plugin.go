package lua

import (
	"time"

	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/editor"
)

// Plugin returns the plugin that loads the scripts listed in the editor
// configuration. A pattern whose scripts fail is logged and the remaining
// patterns still load.
func Plugin() editor.Plugin {
	return editor.Plugin{
		Name: "lua",
		Register: func(e *editor.Editor) func() {
			cfg := e.Config().Plugins
			h := NewHost(e, WithBudget(time.Duration(cfg.LuaBudgetMS)*time.Millisecond))
			for _, pattern := range cfg.Lua {
				if err := h.LoadGlobs([]string{pattern}); err != nil {
					h.logger.Error("lua script failed", zap.String("pattern", pattern), zap.Error(err))
				}
			}
			return h.Close
		},
	}
}
