package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richdoc/internal/doc"
)

type recordingWriter struct {
	selected []doc.Key
}

func (w *recordingWriter) WriteSelection(tx *doc.Txn, sel doc.Selection, dt *doc.DataTransfer) {
	w.selected = sel.Nodes(tx)
	dt.Set("text/plain", sel.TextContent(tx))
}

func newTestDoc(t *testing.T, clip ClipboardWriter, texts ...string) (*doc.Document, []doc.Key) {
	t.Helper()
	d := doc.New()
	require.NoError(t, d.RegisterClass(DecoratorBlockClass(doc.Class{Type: "rule"})))
	Register(d, clip)
	var keys []doc.Key
	require.NoError(t, d.Update(func(tx *doc.Txn) error {
		for _, s := range texts {
			p := tx.CreateParagraph()
			if s != "" {
				tx.Append(p, tx.CreateText(s))
			}
			tx.Append(doc.RootKey, p)
			keys = append(keys, p)
		}
		return nil
	}))
	return d, keys
}

func update(t *testing.T, d *doc.Document, fn func(tx *doc.Txn)) {
	t.Helper()
	require.NoError(t, d.Update(func(tx *doc.Txn) error {
		fn(tx)
		return nil
	}))
}

func TestSelectionAddDelete(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a", "b")
	sel := NewSelection()
	sel.Add(keys[0]).Delete(keys[0])
	assert.True(t, sel.Dirty())
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		assert.Empty(t, sel.Nodes(tx))
		return nil
	}))
}

func TestSelectionSetEquality(t *testing.T) {
	a := NewSelection("1", "2")
	b := NewSelection("2", "1")
	assert.True(t, a.Is(b))
	assert.False(t, a.Is(NewSelection("1")))
	assert.False(t, a.Is(doc.NewNodeSelection("1", "2")))

	a.Replace("1", "3")
	assert.True(t, a.Has("3"))
	assert.False(t, a.Has("1"))
	assert.Equal(t, doc.Key("3"), a.Last())
	a.Clear()
	assert.Equal(t, 0, a.Len())
}

func TestSelectionSkipsRemovedBlocks(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a", "b")
	sel := NewSelection(keys...)
	update(t, d, func(tx *doc.Txn) { tx.Remove(keys[0]) })
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		assert.Equal(t, []doc.Key{keys[1]}, sel.Nodes(tx))
		assert.Equal(t, "b", sel.TextContent(tx))
		return nil
	}))
}

func TestIsBlock(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a")
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		assert.True(t, IsBlock(tx, keys[0]))
		assert.True(t, IsElementBlock(tx, keys[0]))
		assert.False(t, IsDecoratorBlock(tx, keys[0]))
		assert.False(t, IsBlock(tx, tx.FirstChild(keys[0])))
		assert.False(t, IsBlock(tx, doc.RootKey))
		return nil
	}))
}

func TestSelectBlockFlags(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a", "b")
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: keys[0]}))
	})
	sel, ok := d.Selection().(*Selection)
	require.True(t, ok)
	assert.Equal(t, []doc.Key{keys[0]}, sel.Keys())

	update(t, d, func(tx *doc.Txn) {
		assert.True(t, tx.Node(keys[0]).BlockSelected())
		tx.Select(tx.FirstChild(keys[1]), 0, 0)
	})
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		assert.False(t, tx.Node(keys[0]).BlockSelected())
		return nil
	}))
}

func TestSelectBlockRejectsInline(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a")
	update(t, d, func(tx *doc.Txn) {
		assert.False(t, doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: tx.FirstChild(keys[0])}))
	})
}

func TestSingleNodeSelectionBecomesBlockSelection(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a")
	update(t, d, func(tx *doc.Txn) {
		tx.SetSelection(doc.NewNodeSelection(keys[0]))
	})
	sel, ok := d.Selection().(*Selection)
	require.True(t, ok)
	assert.True(t, sel.Has(keys[0]))
}

func TestSelectAllEscalates(t *testing.T) {
	d, keys := newTestDoc(t, nil, "abc", "def")
	update(t, d, func(tx *doc.Txn) { tx.Select(tx.FirstChild(keys[0]), 1, 1) })

	update(t, d, func(tx *doc.Txn) { doc.Dispatch(tx, doc.SelectAll, struct{}{}) })
	rs, ok := d.Selection().(*doc.RangeSelection)
	require.True(t, ok)
	assert.Equal(t, doc.ElementPoint(keys[0], 0), rs.Anchor)
	assert.Equal(t, doc.ElementPoint(keys[0], 1), rs.Focus)

	update(t, d, func(tx *doc.Txn) { doc.Dispatch(tx, doc.SelectAll, struct{}{}) })
	bs, ok := d.Selection().(*Selection)
	require.True(t, ok)
	assert.Equal(t, []doc.Key{keys[0]}, bs.Keys())

	update(t, d, func(tx *doc.Txn) { doc.Dispatch(tx, doc.SelectAll, struct{}{}) })
	bs, ok = d.Selection().(*Selection)
	require.True(t, ok)
	assert.ElementsMatch(t, keys, bs.Keys())
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		for _, k := range keys {
			assert.True(t, tx.Node(k).BlockSelected())
		}
		return nil
	}))
}

func TestSelectAllAcrossBlocksSelectsEverything(t *testing.T) {
	d, keys := newTestDoc(t, nil, "abc", "def")
	update(t, d, func(tx *doc.Txn) {
		tx.SetSelection(doc.NewRangeSelection(
			doc.TextPoint(tx.FirstChild(keys[0]), 1),
			doc.TextPoint(tx.FirstChild(keys[1]), 1),
		))
		doc.Dispatch(tx, doc.SelectAll, struct{}{})
	})
	bs, ok := d.Selection().(*Selection)
	require.True(t, ok)
	assert.Equal(t, 2, bs.Len())
}

func TestBackspaceRemovesBlocks(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a", "b")
	update(t, d, func(tx *doc.Txn) {
		all := NewSelection()
		for _, k := range keys {
			doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: k, Selection: all})
		}
		tx.SetSelection(all)
	})
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.KeyBackspace, doc.KeyEvent{Key: "Backspace"}))
	})
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		children := tx.Children(doc.RootKey)
		require.Len(t, children, 1)
		assert.True(t, tx.Is(children[0], doc.TypeParagraph))
		assert.True(t, tx.IsEmpty(children[0]))
		return nil
	}))
}

func TestDeleteMovesCaretToNextBlock(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a", "b")
	update(t, d, func(tx *doc.Txn) {
		doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: keys[0]})
	})
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.KeyDelete, doc.KeyEvent{Key: "Delete"}))
	})
	rs, ok := d.Selection().(*doc.RangeSelection)
	require.True(t, ok)
	assert.Equal(t, doc.ElementPoint(keys[1], 0), rs.Anchor)
}

func TestEnterInsertsParagraphAfterBlocks(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a", "b")
	update(t, d, func(tx *doc.Txn) {
		doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: keys[0]})
	})
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.KeyEnter, doc.KeyEvent{Key: "Enter"}))
	})
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		children := tx.Children(doc.RootKey)
		require.Len(t, children, 3)
		assert.Equal(t, keys[0], children[0])
		assert.True(t, tx.IsEmpty(children[1]))
		rs, ok := tx.RangeSelection()
		require.True(t, ok)
		assert.Equal(t, children[1], rs.Anchor.Key)
		return nil
	}))
}

func TestArrowNavigation(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a", "b")
	update(t, d, func(tx *doc.Txn) {
		doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: keys[1]})
	})
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.KeyArrowUp, doc.KeyEvent{Key: "ArrowUp"}))
	})
	rs, ok := d.Selection().(*doc.RangeSelection)
	require.True(t, ok)
	assert.Equal(t, doc.ElementPoint(keys[0], 1), rs.Anchor)

	update(t, d, func(tx *doc.Txn) {
		doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: keys[1]})
	})
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.KeyArrowDown, doc.KeyEvent{Key: "ArrowDown"}))
	})
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		children := tx.Children(doc.RootKey)
		require.Len(t, children, 3)
		rs, ok := tx.RangeSelection()
		require.True(t, ok)
		assert.Equal(t, doc.ElementPoint(children[2], 0), rs.Anchor)
		return nil
	}))
}

func TestArrowIntoDecoratorBlockSelectsIt(t *testing.T) {
	d, keys := newTestDoc(t, nil, "a")
	var rule doc.Key
	update(t, d, func(tx *doc.Txn) {
		rule = tx.CreateNode("rule")
		tx.InsertAfter(keys[0], rule)
		tx.Select(doc.RootKey, 1, 1)
	})
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.KeyArrowDown, doc.KeyEvent{Key: "ArrowDown"}))
	})
	bs, ok := d.Selection().(*Selection)
	require.True(t, ok)
	assert.Equal(t, []doc.Key{rule}, bs.Keys())

	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.KeyArrowUp, doc.KeyEvent{Key: "ArrowUp"}))
	})
	rs, ok := d.Selection().(*doc.RangeSelection)
	require.True(t, ok)
	assert.Equal(t, doc.ElementPoint(keys[0], 1), rs.Anchor)
}

func TestCopyIncludesDescendants(t *testing.T) {
	w := &recordingWriter{}
	d, keys := newTestDoc(t, w, "ab")
	update(t, d, func(tx *doc.Txn) {
		doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: keys[0]})
	})
	dt := doc.NewDataTransfer()
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.Copy, dt))
		assert.Equal(t, []doc.Key{keys[0], tx.FirstChild(keys[0])}, w.selected)
	})
	text, ok := dt.Get("text/plain")
	require.True(t, ok)
	assert.Equal(t, "abab", text)
}

func TestCutRemovesBlocks(t *testing.T) {
	w := &recordingWriter{}
	d, keys := newTestDoc(t, w, "a", "b")
	update(t, d, func(tx *doc.Txn) {
		doc.Dispatch(tx, SelectBlock, SelectBlockPayload{Node: keys[1]})
	})
	update(t, d, func(tx *doc.Txn) {
		assert.True(t, doc.Dispatch(tx, doc.Cut, doc.NewDataTransfer()))
	})
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		assert.Equal(t, []doc.Key{keys[0]}, tx.Children(doc.RootKey))
		return nil
	}))
}
