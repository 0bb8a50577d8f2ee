// Package lua runs sandboxed Lua scripts against an editor.
//
// Scripts see a restricted standard library (base, table, string, math) and
// a richdoc module, available as a global and through require("richdoc"):
//
//	richdoc.text()                   -- plain text of the document
//	richdoc.markdown()               -- document as markdown
//	richdoc.set_markdown(s)          -- replace the document
//	richdoc.html()                   -- document as HTML
//	richdoc.node([key])              -- serialized node as a table, root by default
//	richdoc.insert_text(s)           -- INSERT_TEXT at the selection
//	richdoc.format_text(name)        -- FORMAT_TEXT: bold, italic, strikethrough, code
//	richdoc.register_command(n, fn)  -- fn(payload) handles command n
//	richdoc.dispatch(n, payload)     -- dispatch a script command
//	richdoc.log(msg)                 -- log through the editor logger
//
// Every entry into Lua runs under a time budget and a bounded call stack.
// Commands registered by scripts take a string payload and run inside the
// dispatching update, so the richdoc functions they call edit that update
// directly.
//
// # Basic Usage
//
//	h := lua.NewHost(ed, lua.WithBudget(time.Second))
//	defer h.Close()
//	if err := h.LoadFile("scripts/shout.lua"); err != nil {
//		return err
//	}
//	handled, err := h.Dispatch("shout", "hello")
package lua
