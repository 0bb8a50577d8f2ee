package lua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richdoc/internal/doc"
)

// corruptOnInsert registers an INSERT_TEXT handler that clears the document
// and then fails an invariant when the inserted text is "corrupt".
func corruptOnInsert(t *testing.T, d *doc.Document) {
	t.Helper()
	remove := doc.RegisterCommand(d, doc.InsertText, func(tx *doc.Txn, text string) bool {
		if text != "corrupt" {
			return false
		}
		tx.Clear(doc.RootKey)
		doc.Assert(false, "corrupt")
		return true
	}, doc.PriorityCritical)
	t.Cleanup(remove)
}

func TestInvariantFailureInScriptCommandAbortsUpdate(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	corruptOnInsert(t, e.Document())
	h := newHost(t, e)

	require.NoError(t, h.LoadString("corrupt.lua", `
		richdoc.register_command("corrupt", function()
			richdoc.insert_text("corrupt")
		end)
	`))
	before := e.Document().Revision()

	handled, err := h.Dispatch("corrupt", "")
	require.ErrorIs(t, err, doc.ErrUpdateAborted)
	assert.False(t, handled)
	assert.Equal(t, "abc", e.TextContent())
	assert.Equal(t, before, e.Document().Revision())

	// The host stays usable after the aborted update.
	require.NoError(t, h.LoadString("after.lua", `richdoc.insert_text("d")`))
	assert.Equal(t, "abcd", e.TextContent())
}

func TestInvariantFailureInNestedScriptCommand(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	corruptOnInsert(t, e.Document())
	h := newHost(t, e)

	require.NoError(t, h.LoadString("nested.lua", `
		richdoc.register_command("inner", function()
			richdoc.insert_text("corrupt")
		end)
		richdoc.register_command("outer", function()
			richdoc.insert_text("x")
			richdoc.dispatch("inner", "")
		end)
	`))

	_, err := h.Dispatch("outer", "")
	require.ErrorIs(t, err, doc.ErrUpdateAborted)
	assert.Equal(t, "abc", e.TextContent())
}

func TestInvariantFailureWhileLoadingIsScriptError(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	corruptOnInsert(t, e.Document())
	h := newHost(t, e)

	err := h.LoadString("load.lua", `richdoc.insert_text("corrupt")`)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Contains(t, err.Error(), "corrupt")
	assert.Equal(t, "abc", e.TextContent())
}

func TestFailingCommandDiscardsItsEdits(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	h := newHost(t, e)

	require.NoError(t, h.LoadString("edit-then-fail.lua", `
		richdoc.register_command("edit-then-fail", function()
			richdoc.set_markdown("changed")
			error("boom")
		end)
	`))

	handled, err := h.Dispatch("edit-then-fail", "")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "abc", e.TextContent())
}

func TestUnhandledCommandDiscardsItsEdits(t *testing.T) {
	e := newEditor(t, "abc")
	caretAtEnd(t, e)
	h := newHost(t, e)

	require.NoError(t, h.LoadString("decline.lua", `
		richdoc.register_command("decline", function(p)
			richdoc.insert_text(p)
			return false
		end)
	`))

	handled, err := h.Dispatch("decline", "zzz")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "abc", e.TextContent())

	// The caret is restored as well: a later insert lands at the end.
	require.NoError(t, h.LoadString("insert.lua", `richdoc.insert_text("d")`))
	assert.Equal(t, "abcd", e.TextContent())
}
