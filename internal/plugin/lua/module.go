package lua

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
)

const moduleName = "richdoc"

func (h *Host) installModule() {
	L := h.state.L
	loader := func(L *lua.LState) int {
		L.Push(h.module(L))
		return 1
	}
	L.PreloadModule(moduleName, loader)
	L.SetGlobal(moduleName, h.module(L))
}

func (h *Host) module(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"text":             h.luaText,
		"markdown":         h.luaMarkdown,
		"set_markdown":     h.luaSetMarkdown,
		"html":             h.luaHTML,
		"node":             h.luaNode,
		"insert_text":      h.luaInsertText,
		"format_text":      h.luaFormatText,
		"register_command": h.luaRegisterCommand,
		"dispatch":         h.luaDispatch,
		"log":              h.luaLog,
	})
}

// read runs fn in the update of the running command, or against the
// committed document.
func (h *Host) read(fn func(tx *doc.Txn) error) (err error) {
	if h.tx != nil {
		defer h.catchInvariant(&err)
		return fn(h.tx)
	}
	return h.e.Read(fn)
}

// update runs fn in the update of the running command, or in a new one.
func (h *Host) update(fn func(tx *doc.Txn) error) (err error) {
	if h.tx != nil {
		defer h.catchInvariant(&err)
		return fn(h.tx)
	}
	if h.e.ReadOnly() {
		return editor.ErrReadOnly
	}
	return h.e.Update(fn)
}

// dispatch dispatches cmd inside the running command or in its own update.
func dispatch[P any](h *Host, cmd doc.Command[P], payload P) (handled bool, err error) {
	if h.tx != nil {
		defer h.catchInvariant(&err)
		return doc.Dispatch(h.tx, cmd, payload), nil
	}
	return editor.Dispatch(h.e, cmd, payload)
}

// catchInvariant stops an invariant failure at the Lua boundary and records
// it, so the command handler can abort the update once Lua has unwound.
// Inside Lua it surfaces as an ordinary error.
func (h *Host) catchInvariant(err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*doc.InvariantError)
	if !ok {
		panic(r)
	}
	h.fatal = ie
	*err = ie
}

// raise turns err into a Lua error. Errors are raised only after the Go
// side has finished its update.
func raise(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

func (h *Host) luaText(L *lua.LState) int {
	var out string
	_ = h.read(func(tx *doc.Txn) error {
		out = tx.TextContent(doc.RootKey)
		return nil
	})
	L.Push(lua.LString(out))
	return 1
}

func (h *Host) luaMarkdown(L *lua.LState) int {
	var out string
	_ = h.read(func(tx *doc.Txn) error {
		out = strings.TrimRight(h.e.Markdown().Export(tx, doc.RootKey), "\n")
		return nil
	})
	L.Push(lua.LString(out))
	return 1
}

func (h *Host) luaSetMarkdown(L *lua.LState) int {
	src := L.CheckString(1)
	err := h.update(func(tx *doc.Txn) error {
		tx.Clear(doc.RootKey)
		return h.e.Markdown().Import(tx, doc.RootKey, src)
	})
	if err != nil {
		return raise(L, err)
	}
	return 0
}

func (h *Host) luaHTML(L *lua.LState) int {
	var out string
	err := h.read(func(tx *doc.Txn) error {
		var err error
		out, err = h.e.HTML().Export(tx, doc.RootKey)
		return err
	})
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(out))
	return 1
}

func (h *Host) luaNode(L *lua.LState) int {
	key := doc.Key(L.OptString(1, string(doc.RootKey)))
	var node map[string]any
	_ = h.read(func(tx *doc.Txn) error {
		if tx.Exists(key) {
			node = tx.ExportNode(key)
		}
		return nil
	})
	if node == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(ToLuaValue(L, node))
	return 1
}

func (h *Host) luaInsertText(L *lua.LState) int {
	handled, err := dispatch(h, doc.InsertText, L.CheckString(1))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LBool(handled))
	return 1
}

func (h *Host) luaFormatText(L *lua.LState) int {
	name := L.CheckString(1)
	f, ok := doc.ParseTextFormat(name)
	if !ok {
		L.ArgError(1, fmt.Sprintf("unknown text format %q", name))
		return 0
	}
	handled, err := dispatch(h, doc.FormatText, f)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LBool(handled))
	return 1
}

func (h *Host) luaRegisterCommand(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if name == "" {
		L.ArgError(1, "empty command name")
		return 0
	}
	h.register(name, fn)
	return 0
}

func (h *Host) luaDispatch(L *lua.LState) int {
	name := L.CheckString(1)
	payload := L.OptString(2, "")
	cmd, ok := h.commands[name]
	if !ok {
		return raise(L, fmt.Errorf("%w: %s", ErrUnknownCommand, name))
	}
	handled, err := dispatch(h, cmd, payload)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LBool(handled))
	return 1
}

func (h *Host) luaLog(L *lua.LState) int {
	h.logger.Info(L.CheckString(1), zap.String("script", h.script))
	return 0
}
