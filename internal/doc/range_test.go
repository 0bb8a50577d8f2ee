package doc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSplitTextUsesGraphemes(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "héllo👍🏽x")
	require.NoError(t, d.Update(func(tx *Txn) error {
		text := tx.FirstChild(keys[0])
		assert.Equal(t, 7, tx.TextSize(text))
		parts := tx.SplitText(text, 2, 6)
		require.Len(t, parts, 3)
		assert.Equal(t, "hé", tx.Node(parts[0]).Text())
		assert.Equal(t, "llo👍🏽", tx.Node(parts[1]).Text())
		assert.Equal(t, "x", tx.Node(parts[2]).Text())
		tx.SetTextFormat(parts[1], FormatBold)
		return nil
	}))
}

func TestInsertTextAtCaret(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "helo")
	require.NoError(t, d.Update(func(tx *Txn) error {
		text := tx.FirstChild(keys[0])
		sel := tx.Select(text, 3, 3)
		sel.InsertText(tx, "l")
		assert.Equal(t, TextPoint(text, 4), sel.Anchor)
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		assert.Equal(t, "hello", tx.TextContent(RootKey))
		return nil
	}))
}

func TestRemoveTextAcrossBlocks(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "first line", "middle", "last line")
	require.NoError(t, d.Update(func(tx *Txn) error {
		a := tx.FirstChild(keys[0])
		b := tx.FirstChild(keys[2])
		sel := NewRangeSelection(TextPoint(a, 5), TextPoint(b, 4))
		tx.SetSelection(sel)
		sel.RemoveText(tx)
		assert.True(t, sel.IsCollapsed())
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		assert.Equal(t, []Key{keys[0]}, tx.Children(RootKey))
		assert.Equal(t, "first line", tx.TextContent(RootKey))
		rs, ok := d.Selection().(*RangeSelection)
		require.True(t, ok)
		assert.Equal(t, 5, rs.Anchor.Offset)
		return nil
	}))
}

func TestRemoveTextWithinNode(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "abcdef")
	require.NoError(t, d.Update(func(tx *Txn) error {
		text := tx.FirstChild(keys[0])
		sel := tx.Select(text, 4, 1)
		assert.True(t, sel.IsBackward(tx))
		assert.Equal(t, "bcd", sel.TextContent(tx))
		sel.RemoveText(tx)
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		assert.Equal(t, "aef", tx.TextContent(RootKey))
		return nil
	}))
}

func TestFormatTextTogglesRange(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "plain bold plain")
	require.NoError(t, d.Update(func(tx *Txn) error {
		text := tx.FirstChild(keys[0])
		sel := tx.Select(text, 6, 10)
		sel.FormatText(tx, FormatBold)
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		children := tx.Children(keys[0])
		require.Len(t, children, 3)
		assert.Equal(t, "bold", tx.Node(children[1]).Text())
		assert.True(t, tx.Node(children[1]).TextFormat().Has(FormatBold))
		assert.False(t, tx.Node(children[0]).TextFormat().Has(FormatBold))
		return nil
	}))

	require.NoError(t, d.Update(func(tx *Txn) error {
		rs, _ := tx.RangeSelection()
		rs.FormatText(tx, FormatBold)
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		children := tx.Children(keys[0])
		require.Len(t, children, 1, "same-format runs merge back together")
		assert.Equal(t, "plain bold plain", tx.TextContent(keys[0]))
		return nil
	}))
}

func TestInsertParagraphSplitsBlock(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "hello world")
	var next Key
	require.NoError(t, d.Update(func(tx *Txn) error {
		sel := tx.Select(tx.FirstChild(keys[0]), 5, 5)
		next = sel.InsertParagraph(tx)
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		assert.Equal(t, []Key{keys[0], next}, tx.Children(RootKey))
		assert.Equal(t, "hello", tx.TextContent(keys[0]))
		assert.Equal(t, " world", tx.TextContent(next))
		rs := d.Selection().(*RangeSelection)
		assert.Equal(t, 0, rs.Anchor.Offset)
		assert.Equal(t, next, tx.BlockAt(rs.Anchor))
		return nil
	}))
}

func TestDeleteCharacterMergesBlocks(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "one", "two")
	require.NoError(t, d.Update(func(tx *Txn) error {
		sel := tx.Select(tx.FirstChild(keys[1]), 0, 0)
		sel.DeleteCharacter(tx, true)
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		assert.Equal(t, []Key{keys[0]}, tx.Children(RootKey))
		assert.Equal(t, "onetwo", tx.TextContent(RootKey))
		return nil
	}))
}

func TestInsertNodesSplitsBlock(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "abcd")
	require.NoError(t, d.Update(func(tx *Txn) error {
		sel := tx.Select(tx.FirstChild(keys[0]), 2, 2)
		p := tx.CreateParagraph()
		tx.Append(p, tx.CreateText("new"))
		sel.InsertNodes(tx, []Key{p})
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		children := tx.Children(RootKey)
		require.Len(t, children, 3)
		assert.Equal(t, "ab", tx.TextContent(children[0]))
		assert.Equal(t, "new", tx.TextContent(children[1]))
		assert.Equal(t, "cd", tx.TextContent(children[2]))
		return nil
	}))
}

func TestInsertNodesReplacesEmptyParagraph(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "")
	require.NoError(t, d.Update(func(tx *Txn) error {
		sel := tx.Select(keys[0], 0, 0)
		p := tx.CreateParagraph()
		tx.Append(p, tx.CreateText("pasted"))
		sel.InsertNodes(tx, []Key{p})
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		require.Equal(t, 1, tx.ChildrenSize(RootKey))
		assert.Equal(t, "pasted", tx.TextContent(RootKey))
		return nil
	}))
}

func TestNodeSelectionReplace(t *testing.T) {
	d := New()
	keys := paragraphs(t, d, "a", "b")
	require.NoError(t, d.Update(func(tx *Txn) error {
		sel := NewNodeSelection(keys[0])
		tx.SetSelection(sel)
		p := tx.CreateParagraph()
		tx.Append(p, tx.CreateText("c"))
		sel.InsertNodes(tx, []Key{p})
		return nil
	}))
	require.NoError(t, d.Read(func(tx *Txn) error {
		assert.Equal(t, "c\n\nb", tx.TextContent(RootKey))
		return nil
	}))
}

func TestJSONRoundTrip(t *testing.T) {
	d := New()
	require.NoError(t, d.Update(func(tx *Txn) error {
		p := tx.CreateParagraph()
		tx.SetFormat(p, AlignCenter)
		tx.SetIndentBase(p, 2)
		tx.SetDirection(p, "ltr")
		bold := tx.CreateText("bold")
		tx.SetTextFormat(bold, FormatBold|FormatItalic)
		tx.Append(p, bold, tx.CreateLineBreak(), tx.CreateText("plain"))
		tx.Append(RootKey, p, tx.CreateParagraph())
		return nil
	}))
	first, err := d.ExportJSON(false)
	require.NoError(t, err)

	other := New()
	require.NoError(t, other.Update(func(tx *Txn) error {
		return tx.ImportJSON(first)
	}))
	second, err := other.ExportJSON(false)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first, &decoded))
	assert.Equal(t, "center", gjson.GetBytes(first, "root.children.0.format").String())
	assert.Equal(t, int64(3), gjson.GetBytes(first, "root.children.0.children.0.format").Int())
	assert.Equal(t, "linebreak", gjson.GetBytes(first, "root.children.0.children.1.type").String())
}

func TestImportJSONRejectsUnknownType(t *testing.T) {
	d := New()
	err := d.Update(func(tx *Txn) error {
		return tx.ImportJSON([]byte(`{"root":{"type":"root","children":[{"type":"nope","version":1}]}}`))
	})
	assert.ErrorIs(t, err, ErrUnknownType)
	var je *JSONError
	assert.ErrorAs(t, err, &je)
	assert.Equal(t, "root.children[0]", je.Path)
}
