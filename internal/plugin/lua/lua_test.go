package lua

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richdoc/internal/config"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
	"github.com/dshills/richdoc/internal/richtext"
)

func newEditor(t *testing.T, md string, opts ...editor.Option) *editor.Editor {
	t.Helper()
	opts = append([]editor.Option{editor.WithPlugins(richtext.Plugin())}, opts...)
	e, err := editor.New(opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	if md != "" {
		require.NoError(t, e.FromMarkdown(md))
	}
	return e
}

func newHost(t *testing.T, e *editor.Editor, opts ...Option) *Host {
	t.Helper()
	h := NewHost(e, opts...)
	t.Cleanup(h.Close)
	return h
}

// caretAtEnd puts the caret at the end of the first block.
func caretAtEnd(t *testing.T, e *editor.Editor) {
	t.Helper()
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		tx.SelectEnd(tx.FirstChild(doc.RootKey))
		return nil
	}))
}

func global(h *Host, name string) lua.LValue {
	return h.state.L.GetGlobal(name)
}

func TestModuleReadsDocument(t *testing.T) {
	e := newEditor(t, "# Title\n\nsome **bold** text")
	h := newHost(t, e)

	require.NoError(t, h.LoadString("read.lua", `
		text = richdoc.text()
		md = richdoc.markdown()
		html = richdoc.html()
		local root = richdoc.node()
		first = root.children[1].type
		missing = richdoc.node("no-such-key")
	`))

	assert.Equal(t, "Title\n\nsome bold text", global(h, "text").String())
	assert.Equal(t, "# Title\n\nsome **bold** text", global(h, "md").String())
	assert.Contains(t, global(h, "html").String(), "<h1")
	assert.Equal(t, "heading", global(h, "first").String())
	assert.Equal(t, lua.LNil, global(h, "missing"))
}

func TestRequireModule(t *testing.T) {
	e := newEditor(t, "hello")
	h := newHost(t, e)

	require.NoError(t, h.LoadString("require.lua", `
		local rd = require("richdoc")
		text = rd.text()
		upper = string.upper(text)
	`))
	assert.Equal(t, "HELLO", global(h, "upper").String())
}

func TestSetMarkdown(t *testing.T) {
	e := newEditor(t, "old")
	h := newHost(t, e)

	require.NoError(t, h.LoadString("set.lua", `richdoc.set_markdown("*new* content")`))

	md, err := e.ToMarkdown()
	require.NoError(t, err)
	assert.Equal(t, "*new* content", md)
}

func TestEditFunctionsOutsideCommands(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	h := newHost(t, e)

	require.NoError(t, h.LoadString("edit.lua", `inserted = richdoc.insert_text("def")`))

	assert.Equal(t, lua.LTrue, global(h, "inserted"))
	assert.Equal(t, "abcdef", e.TextContent())
}

func TestScriptCommand(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	h := newHost(t, e)

	require.NoError(t, h.LoadString("shout.lua", `
		richdoc.register_command("shout", function(payload)
			richdoc.insert_text(string.upper(payload))
		end)
		richdoc.register_command("ignore", function(payload)
			return false
		end)
	`))
	assert.Equal(t, []string{"ignore", "shout"}, h.Commands())

	handled, err := h.Dispatch("shout", "hi")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "abcHI", e.TextContent())

	handled, err = h.Dispatch("ignore", "x")
	require.NoError(t, err)
	assert.False(t, handled)

	_, err = h.Dispatch("missing", "")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestScriptCommandDispatchedFromGo(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	h := newHost(t, e)

	require.NoError(t, h.LoadString("bold.lua", `
		richdoc.register_command("bold-word", function(payload)
			richdoc.insert_text(payload)
			return richdoc.text() ~= ""
		end)
	`))
	cmd, ok := h.Command("bold-word")
	require.True(t, ok)

	handled, err := editor.Dispatch(e, cmd, "!")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "abc!", e.TextContent())
}

func TestCommandsCallEachOther(t *testing.T) {
	e := newEditor(t, "x")
	caretAtEnd(t, e)
	h := newHost(t, e)

	require.NoError(t, h.LoadString("nested.lua", `
		richdoc.register_command("inner", function(payload)
			richdoc.insert_text(payload)
		end)
		richdoc.register_command("outer", function(payload)
			return richdoc.dispatch("inner", payload .. payload)
		end)
		richdoc.dispatch("outer", "y")
	`))
	assert.Equal(t, "xyy", e.TextContent())
}

func TestRegisterCommandTwiceReplacesHandler(t *testing.T) {
	e := newEditor(t, "x")
	caretAtEnd(t, e)
	h := newHost(t, e)

	require.NoError(t, h.LoadString("a.lua", `
		richdoc.register_command("say", function() richdoc.insert_text("a") end)
		richdoc.register_command("say", function() richdoc.insert_text("b") end)
	`))
	_, err := h.Dispatch("say", "")
	require.NoError(t, err)
	assert.Equal(t, "xb", e.TextContent())
}

func TestFormatText(t *testing.T) {
	e := newEditor(t, "word")
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		text := tx.FirstChild(tx.FirstChild(doc.RootKey))
		tx.Select(text, 0, 4)
		return nil
	}))
	h := newHost(t, e)

	require.NoError(t, h.LoadString("format.lua", `richdoc.format_text("italic")`))
	md, err := e.ToMarkdown()
	require.NoError(t, err)
	assert.Equal(t, "*word*", md)

	err = h.LoadString("bad.lua", `richdoc.format_text("blink")`)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "bad.lua", scriptErr.Script)
	assert.Contains(t, err.Error(), "blink")
}

func TestFailingCommandIsNotHandled(t *testing.T) {
	e := newEditor(t, "abc")
	h := newHost(t, e)

	require.NoError(t, h.LoadString("fail.lua", `
		richdoc.register_command("boom", function() error("boom") end)
	`))
	handled, err := h.Dispatch("boom", "")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "abc", e.TextContent())
}

func TestReadOnlyEditorRejectsEdits(t *testing.T) {
	e := newEditor(t, "abc", editor.WithReadOnly(true))
	h := newHost(t, e)

	err := h.LoadString("edit.lua", `richdoc.set_markdown("changed")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), editor.ErrReadOnly.Error())
	assert.Equal(t, "abc", e.TextContent())
}

func TestSandbox(t *testing.T) {
	e := newEditor(t, "")
	h := newHost(t, e)

	require.NoError(t, h.LoadString("globals.lua", `
		has_os = os ~= nil
		has_io = io ~= nil
		has_dofile = dofile ~= nil
		has_load = load ~= nil
		print("printing is allowed")
	`))
	for _, name := range []string{"has_os", "has_io", "has_dofile", "has_load"} {
		assert.Equal(t, lua.LFalse, global(h, name), name)
	}

	for _, src := range []string{`require("os")`, `require("io")`, `dofile("x.lua")`} {
		assert.Error(t, h.LoadString("escape.lua", src), src)
	}
}

func TestBudget(t *testing.T) {
	e := newEditor(t, "")
	h := newHost(t, e, WithBudget(50*time.Millisecond))

	err := h.LoadString("spin.lua", `while true do end`)
	require.ErrorIs(t, err, ErrBudgetExceeded)

	require.NoError(t, h.LoadString("after.lua", `ok = true`))
	assert.Equal(t, lua.LTrue, global(h, "ok"))
}

func TestCallStackBound(t *testing.T) {
	e := newEditor(t, "")
	h := newHost(t, e, WithMaxCallStack(64))

	err := h.LoadString("recurse.lua", `
		local function f(n) return 1 + f(n + 1) end
		f(0)
	`)
	assert.Error(t, err)
}

func TestSyntaxError(t *testing.T) {
	e := newEditor(t, "")
	h := newHost(t, e)

	err := h.LoadString("broken.lua", `this is not lua`)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "broken.lua", scriptErr.Script)
}

func TestCloseUnregistersCommands(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	h := NewHost(e)

	require.NoError(t, h.LoadString("cmd.lua", `
		richdoc.register_command("add", function(p) richdoc.insert_text(p) end)
	`))
	cmd, ok := h.Command("add")
	require.True(t, ok)
	h.Close()
	h.Close()

	handled, err := editor.Dispatch(e, cmd, "x")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.ErrorIs(t, h.LoadString("late.lua", `x = 1`), ErrStateClosed)
}

func TestLoadGlobs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`order = "a"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`order = order .. "b"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`not lua`), 0o644))

	e := newEditor(t, "")
	h := newHost(t, e)
	require.NoError(t, h.LoadGlobs([]string{filepath.Join(dir, "*.lua")}))
	assert.Equal(t, "ab", global(h, "order").String())

	err := h.LoadFile(filepath.Join(dir, "missing.lua"))
	var scriptErr *ScriptError
	assert.ErrorAs(t, err, &scriptErr)
}

func TestPluginLoadsConfiguredScripts(t *testing.T) {
	dir := t.TempDir()
	script := `richdoc.register_command("stamp", function(p) richdoc.insert_text("[" .. p .. "]") end)`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stamp.lua"), []byte(script), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.lua"), []byte(`nope nope`), 0o644))

	cfg := config.Default()
	cfg.Plugins.Lua = []string{filepath.Join(dir, "stamp.lua"), filepath.Join(dir, "broken.lua")}
	e := newEditor(t, "x", editor.WithConfig(cfg), editor.WithPlugins(Plugin()))
	caretAtEnd(t, e)

	handled, err := editor.Dispatch(e, doc.NewCommand[string]("stamp"), "ok")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "x[ok]", e.TextContent())
}

func TestBridge(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	in := map[string]any{
		"name":     "cell",
		"children": []any{"a", int64(2), true},
		"nested":   map[string]any{"x": int64(1)},
	}
	lv := ToLuaValue(L, in)
	assert.Equal(t, in, ToGoValue(lv))

	cyclic := L.NewTable()
	cyclic.RawSetString("self", cyclic)
	assert.Equal(t, map[string]any{"self": nil}, ToGoValue(cyclic))
}
