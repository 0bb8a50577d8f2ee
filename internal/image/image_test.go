package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
	"github.com/dshills/richdoc/internal/richtext"
)

func newEditor(t *testing.T) *editor.Editor {
	t.Helper()
	e, err := editor.New(editor.WithPlugins(richtext.Plugin(), Plugin()))
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func markdownOf(t *testing.T, e *editor.Editor) string {
	t.Helper()
	md, err := e.ToMarkdown()
	require.NoError(t, err)
	return md
}

func images(t *testing.T, e *editor.Editor) []Image {
	t.Helper()
	var out []Image
	require.NoError(t, e.Read(func(tx *doc.Txn) error {
		for _, k := range tx.Children(doc.RootKey) {
			if IsImage(tx, k) {
				out = append(out, *Of(tx, k))
			}
		}
		return nil
	}))
	return out
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name, in, out string
	}{
		{"alone", "![a cat](cat.png)", "![a cat](cat.png)"},
		{"between blocks", "# T\n\n![](x.png)\n\nend", "# T\n\n![](x.png)\n\nend"},
		{"escaped alt", `![a \[b\]](c.png)`, `![a \[b\]](c.png)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t)
			require.NoError(t, e.FromMarkdown(tt.in))
			assert.Equal(t, tt.out, markdownOf(t, e))
		})
	}
}

func TestInlineImageIsLifted(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.FromMarkdown("see ![x](y.png) here"))
	var types []string
	require.NoError(t, e.Read(func(tx *doc.Txn) error {
		for _, k := range tx.Children(doc.RootKey) {
			types = append(types, tx.Type(k))
		}
		return nil
	}))
	assert.Equal(t, []string{doc.TypeParagraph, TypeImage, doc.TypeParagraph}, types)
	assert.Equal(t, []Image{{Src: "y.png", Alt: "x"}}, images(t, e))
}

func TestHTMLImport(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.FromHTML(`<p>x<img src="a.png" alt="A" width="120"></p><img src="b.png" style="width: 40px"><img alt="no source">`))
	assert.Equal(t, []Image{
		{Src: "a.png", Alt: "A", Width: 120},
		{Src: "b.png", Width: 40},
	}, images(t, e))
}

func TestHTMLExport(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		tx.Append(doc.RootKey, CreateImage(tx, "a.png", "A", 0), CreateImage(tx, "b.png", "", 64))
		return nil
	}))
	out, err := e.ToHTML()
	require.NoError(t, err)
	assert.Equal(t, `<img src="a.png" alt="A"/><img src="b.png" alt="" width="64"/>`, out)
}

func TestJSON(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		tx.Append(doc.RootKey, CreateImage(tx, "a.png", "A", 300))
		return nil
	}))
	data, err := e.ToJSON(false)
	require.NoError(t, err)

	other := newEditor(t)
	require.NoError(t, other.FromJSON(data))
	assert.Equal(t, []Image{{Src: "a.png", Alt: "A", Width: 300}}, images(t, other))

	tests := []struct {
		node string
		err  error
	}{
		{`{"type":"image","version":1,"altText":"x"}`, ErrMissingSource},
		{`{"type":"image","version":1,"src":"a.png","width":-3}`, ErrInvalidWidth},
	}
	for _, tt := range tests {
		err := other.FromJSON([]byte(`{"root":{"type":"root","version":1,"children":[` + tt.node + `]}}`))
		assert.ErrorIs(t, err, tt.err)
	}
}

func TestCommands(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.FromMarkdown("text"))
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		tx.Select(tx.FirstDescendant(doc.RootKey), 4, 4)
		return nil
	}))

	handled, err := editor.Dispatch(e, InsertImage, InsertPayload{})
	require.NoError(t, err)
	assert.False(t, handled, "an image needs a source")

	handled, err = editor.Dispatch(e, InsertImage, InsertPayload{Src: "p.png", Alt: "P"})
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, "text\n\n![P](p.png)", markdownOf(t, e))

	var k doc.Key
	require.NoError(t, e.Read(func(tx *doc.Txn) error {
		k = tx.LastChild(doc.RootKey)
		return nil
	}))
	before, ok := e.Document().Decorators().Get(k)
	require.True(t, ok)

	handled, err = editor.Dispatch(e, ResizeImage, ResizePayload{Node: k, Width: 200})
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, 200, images(t, e)[0].Width)

	after, _ := e.Document().Decorators().Get(k)
	assert.Equal(t, before.Created, after.Created)
	assert.Equal(t, 200, after.Props["width"])

	handled, err = editor.Dispatch(e, ResizeImage, ResizePayload{Node: k, Width: -1})
	require.NoError(t, err)
	assert.False(t, handled)
}
