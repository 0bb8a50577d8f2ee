package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
	"github.com/dshills/richdoc/internal/richtext"
)

func newEditor(t *testing.T, md string) *editor.Editor {
	t.Helper()
	e, err := editor.New(editor.WithPlugins(richtext.Plugin(), Plugin()))
	require.NoError(t, err)
	t.Cleanup(e.Close)
	if md != "" {
		require.NoError(t, e.FromMarkdown(md))
	}
	return e
}

func markdownOf(t *testing.T, e *editor.Editor) string {
	t.Helper()
	md, err := e.ToMarkdown()
	require.NoError(t, err)
	return md
}

func toggle(t *testing.T, e *editor.Editor, url string) {
	t.Helper()
	handled, err := editor.Dispatch(e, ToggleLink, Payload{URL: url})
	require.NoError(t, err)
	require.True(t, handled)
}

func TestMarkdownRoundTrip(t *testing.T) {
	tests := []string{
		"see [the site](https://example.com) now",
		`[docs](https://example.com/a "Title")`,
		"[a *b*](https://example.com/x)",
		"[**bold link**](https://example.com)",
	}
	for _, md := range tests {
		t.Run(md, func(t *testing.T) {
			e := newEditor(t, md)
			assert.Equal(t, md, markdownOf(t, e))
		})
	}
}

func TestFormatAroundLinkStaysOutside(t *testing.T) {
	e := newEditor(t, "**a [b](https://example.com) c**")
	require.NoError(t, e.Read(func(tx *doc.Txn) error {
		children := tx.Children(tx.FirstChild(doc.RootKey))
		require.Len(t, children, 3)
		assert.Equal(t, doc.FormatBold, tx.Node(children[0]).TextFormat())
		require.True(t, IsLink(tx, children[1]))
		inner := tx.Children(children[1])
		require.Len(t, inner, 1)
		assert.Equal(t, "b", tx.TextContent(inner[0]))
		assert.Equal(t, doc.TextFormat(0), tx.Node(inner[0]).TextFormat())
		assert.Equal(t, doc.FormatBold, tx.Node(children[2]).TextFormat())
		return nil
	}))
}

func TestMarkdownImport(t *testing.T) {
	e := newEditor(t, "go to <https://example.com> or [home](/ \"Home\")")
	var urls, titles []string
	require.NoError(t, e.Read(func(tx *doc.Txn) error {
		for _, k := range tx.Children(tx.FirstChild(doc.RootKey)) {
			if IsLink(tx, k) {
				urls = append(urls, URL(tx, k))
				titles = append(titles, Title(tx, k))
			}
		}
		return nil
	}))
	assert.Equal(t, []string{"https://example.com", "/"}, urls)
	assert.Equal(t, []string{"", "Home"}, titles)
}

func TestHTML(t *testing.T) {
	e := newEditor(t, "")
	require.NoError(t, e.FromHTML(`<p>see <a href="https://example.com" title="Ex">site</a><a href="https://empty.dev"></a></p>`))
	out, err := e.ToHTML()
	require.NoError(t, err)
	assert.Equal(t, `<p>see <a href="https://example.com" title="Ex">site</a></p>`, out)
}

func TestJSON(t *testing.T) {
	e := newEditor(t, "[a](https://example.com)")
	data, err := e.ToJSON(false)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"url":"https://example.com"`)

	other := newEditor(t, "")
	require.NoError(t, other.FromJSON(data))
	assert.Equal(t, "[a](https://example.com)", markdownOf(t, other))

	bad := `{"root":{"type":"root","version":1,"children":[{"type":"paragraph","version":1,"children":[{"type":"link","version":1,"children":[]}]}]}}`
	err = other.FromJSON([]byte(bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingURL)
}

func TestToggleWrapsSelection(t *testing.T) {
	e := newEditor(t, "one two three")
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		tx.Select(tx.FirstDescendant(doc.RootKey), 4, 7)
		return nil
	}))
	toggle(t, e, "https://example.com")
	assert.Equal(t, "one [two](https://example.com) three", markdownOf(t, e))

	// A collapsed caret inside the link updates it.
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		l := tx.ChildAt(tx.FirstChild(doc.RootKey), 1)
		tx.Select(tx.FirstChild(l), 1, 1)
		return nil
	}))
	toggle(t, e, "https://other.dev")
	assert.Equal(t, "one [two](https://other.dev) three", markdownOf(t, e))

	toggle(t, e, "")
	assert.Equal(t, "one two three", markdownOf(t, e))
}

func TestToggleAcrossFormats(t *testing.T) {
	e := newEditor(t, "a **b** c")
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		p := tx.FirstChild(doc.RootKey)
		sel := tx.Select(tx.ChildAt(p, 0), 0, 0)
		last := tx.ChildAt(p, 2)
		sel.SetPoints(sel.Anchor, doc.TextPoint(last, tx.TextSize(last)))
		return nil
	}))
	toggle(t, e, "https://example.com")
	assert.Equal(t, "[a **b** c](https://example.com)", markdownOf(t, e))

	require.NoError(t, e.Read(func(tx *doc.Txn) error {
		p := tx.FirstChild(doc.RootKey)
		require.Equal(t, 1, len(tx.Children(p)))
		assert.True(t, IsLink(tx, tx.FirstChild(p)))
		return nil
	}))
}

func TestLinkRemovedWhenEmpty(t *testing.T) {
	e := newEditor(t, "x [y](https://example.com)")
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		l := tx.LastChild(tx.FirstChild(doc.RootKey))
		require.True(t, IsLink(tx, l))
		tx.Remove(tx.FirstChild(l))
		assert.False(t, tx.Exists(l))
		return nil
	}))
}

func TestNestedLinksFlatten(t *testing.T) {
	e := newEditor(t, "")
	require.NoError(t, e.Update(func(tx *doc.Txn) error {
		p := tx.CreateParagraph()
		outer := CreateLink(tx, "https://outer.dev", "")
		inner := CreateLink(tx, "https://inner.dev", "")
		tx.Append(inner, tx.CreateText("in"))
		tx.Append(outer, tx.CreateText("out "), inner)
		tx.Append(p, outer)
		tx.Append(doc.RootKey, p)
		return nil
	}))
	assert.Equal(t, "[out in](https://outer.dev)", markdownOf(t, e))
}
