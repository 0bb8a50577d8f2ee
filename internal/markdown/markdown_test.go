package markdown

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richdoc/internal/doc"
)

func formatParser(f doc.TextFormat) TokenParser {
	return TokenParser{Format: func(*Token) doc.TextFormat { return f }}
}

func testExtension() Extension {
	return Extension{
		FormatTags: FormatTags{
			doc.FormatBold:          "**",
			doc.FormatItalic:        "*",
			doc.FormatStrikethrough: "~~",
			doc.FormatCode:          "`",
		},
		TokenParsers: ParserMap{
			"strong":      formatParser(doc.FormatBold),
			"em":          formatParser(doc.FormatItalic),
			"s":           formatParser(doc.FormatStrikethrough),
			"code_inline": formatParser(doc.FormatCode),
		},
	}
}

func types(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func importDoc(t *testing.T, c *Converter, src string) *doc.Document {
	t.Helper()
	d := doc.New()
	require.NoError(t, d.Update(func(tx *doc.Txn) error {
		return c.Import(tx, doc.RootKey, src)
	}))
	return d
}

func export(t *testing.T, c *Converter, d *doc.Document) string {
	t.Helper()
	var out string
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		out = c.Export(tx, doc.RootKey)
		return nil
	}))
	return out
}

func TestTokenizeInline(t *testing.T) {
	tokens := NewTokenizer().Tokenize("**a** b")
	require.Equal(t, []string{"paragraph_open", "inline", "paragraph_close"}, types(tokens))
	inline := tokens[1].Children
	assert.Equal(t, []string{"strong_open", "text", "strong_close", "text"}, types(inline))
	assert.Equal(t, "a", inline[1].Content)
	assert.Equal(t, " b", inline[3].Content)
}

func TestTokenizeTaskList(t *testing.T) {
	tokens := NewTokenizer().Tokenize("- [x] done\n- todo\n")
	assert.Equal(t, []string{
		"bullet_list_open",
		"list_item_open", "paragraph_open", "inline", "paragraph_close", "list_item_close",
		"list_item_open", "paragraph_open", "inline", "paragraph_close", "list_item_close",
		"bullet_list_close",
	}, types(tokens))
	assert.Equal(t, "true", tokens[0].Attr("task"))
	assert.Equal(t, "true", tokens[1].Attr("checked"))
	assert.True(t, tokens[2].Hidden)
	assert.Equal(t, "done", tokens[3].Children[0].Content)
	assert.Equal(t, "", tokens[6].Attr("checked"))
}

func TestTokenizeOrderedList(t *testing.T) {
	tokens := NewTokenizer().Tokenize("3. a\n4. b\n")
	require.NotEmpty(t, tokens)
	assert.Equal(t, "ordered_list_open", tokens[0].Type)
	assert.Equal(t, "3", tokens[0].Attr("start"))
}

func TestTokenizeTable(t *testing.T) {
	tokens := NewTokenizer().Tokenize("| a | b |\n|---|:-:|\n| 1 | 2 |\n")
	assert.Equal(t, []string{
		"table_open",
		"thead_open", "tr_open",
		"th_open", "inline", "th_close", "th_open", "inline", "th_close",
		"tr_close", "thead_close",
		"tbody_open", "tr_open",
		"td_open", "inline", "td_close", "td_open", "inline", "td_close",
		"tr_close", "tbody_close",
		"table_close",
	}, types(tokens))
	assert.Equal(t, "text-align:center", tokens[6].Attr("style"))
}

func TestTokenizeTablesDisabled(t *testing.T) {
	tokens := NewTokenizer(WithTables(false)).Tokenize("| a |\n|---|\n")
	assert.Equal(t, "paragraph_open", tokens[0].Type)
}

func TestTokenizeCode(t *testing.T) {
	tokens := NewTokenizer().Tokenize("```go\nx := 1\n```\n\n    indented\n")
	require.Len(t, tokens, 2)
	assert.Equal(t, "fence", tokens[0].Type)
	assert.Equal(t, "go", tokens[0].Info)
	assert.Equal(t, "x := 1\n", tokens[0].Content)
	assert.Equal(t, "code_block", tokens[1].Type)
	assert.Equal(t, "indented\n", tokens[1].Content)
}

func TestSeparateRunsStaySeparate(t *testing.T) {
	c := NewConverter(WithExtensions(testExtension()))
	d := importDoc(t, c, "**bold** and **bold again**")
	assert.Equal(t, "**bold** and **bold again**\n\n", export(t, c, d))

	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		p := tx.FirstChild(doc.RootKey)
		assert.Equal(t, "**bold** and **bold again**", c.Export(tx, p))
		texts := tx.Children(p)
		require.Len(t, texts, 3)
		assert.Equal(t, doc.FormatBold, tx.Node(texts[0]).TextFormat())
		assert.Equal(t, doc.TextFormat(0), tx.Node(texts[1]).TextFormat())
		return nil
	}))
}

func TestExportJoinsAdjacentRuns(t *testing.T) {
	c := NewConverter(WithExtensions(testExtension()))
	d := doc.New()
	require.NoError(t, d.Update(func(tx *doc.Txn) error {
		p := tx.CreateParagraph()
		a := tx.CreateText("a ")
		tx.SetTextFormat(a, doc.FormatBold)
		b := tx.CreateText("b")
		tx.SetTextFormat(b, doc.FormatBold|doc.FormatItalic)
		tx.Append(p, a, b)
		tx.Append(doc.RootKey, p)
		return nil
	}))
	assert.Equal(t, "**a *b***\n\n", export(t, c, d))
}

func TestExportKeepsWhitespaceOutsideTags(t *testing.T) {
	c := NewConverter(WithExtensions(testExtension()))
	d := doc.New()
	require.NoError(t, d.Update(func(tx *doc.Txn) error {
		p := tx.CreateParagraph()
		a := tx.CreateText("x")
		b := tx.CreateText(" foo ")
		tx.SetTextFormat(b, doc.FormatBold)
		tx.Append(p, a, b, tx.CreateText("y"))
		tx.Append(doc.RootKey, p)
		return nil
	}))
	assert.Equal(t, "x **foo** y\n\n", export(t, c, d))
}

func TestExportTagBalance(t *testing.T) {
	bits := []doc.TextFormat{doc.FormatBold, doc.FormatItalic, doc.FormatStrikethrough, doc.FormatCode, doc.FormatUnderline}
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		d := doc.New()
		require.NoError(t, d.Update(func(tx *doc.Txn) error {
			for b := 0; b < 3; b++ {
				p := tx.CreateParagraph()
				for i := 0; i < 1+rng.Intn(6); i++ {
					var f doc.TextFormat
					for _, bit := range bits {
						if rng.Intn(2) == 0 {
							f |= bit
						}
					}
					words := []string{"a", " b", "c ", " ", "dd"}
					k := tx.CreateText(words[rng.Intn(len(words))])
					tx.SetTextFormat(k, f)
					tx.AppendBase(p, k)
				}
				tx.Append(doc.RootKey, p)
			}
			return nil
		}))
		require.NoError(t, d.Read(func(tx *doc.Txn) error {
			e := NewExporter(tx, testExtension().FormatTags, nil)
			for _, p := range tx.Children(doc.RootKey) {
				e.Node(p)
				assert.Empty(t, e.unclosed, "round %d", round)
			}
			return nil
		}))
	}
}

func TestImportDropsContainerOfNilParser(t *testing.T) {
	ext := testExtension()
	ext.TokenParsers["blockquote"] = TokenParser{Node: func(*doc.Txn, *Token) doc.Key { return "" }}
	c := NewConverter(WithExtensions(ext))
	d := importDoc(t, c, "> quoted\n\nafter")
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		children := tx.Children(doc.RootKey)
		require.Len(t, children, 2)
		assert.Equal(t, "quoted", tx.TextContent(children[0]))
		assert.Equal(t, "after", tx.TextContent(children[1]))
		return nil
	}))
}

func TestImportSkipsUnknownBlocks(t *testing.T) {
	c := NewConverter(WithExtensions(testExtension()))
	d := importDoc(t, c, "- one\n- two\n\nkept")
	require.NoError(t, d.Read(func(tx *doc.Txn) error {
		assert.Equal(t, "kept", tx.TextContent(doc.RootKey))
		return nil
	}))
}

func TestImportSoftBreak(t *testing.T) {
	c := NewConverter(WithExtensions(testExtension()))
	d := importDoc(t, c, "one\ntwo")
	assert.Equal(t, "one\ntwo\n\n", export(t, c, d))
}

func TestImportRejectsLeafForOpenToken(t *testing.T) {
	ext := testExtension()
	ext.TokenParsers["blockquote"] = TokenParser{Node: func(tx *doc.Txn, _ *Token) doc.Key {
		return tx.CreateText("x")
	}}
	c := NewConverter(WithExtensions(ext))
	d := doc.New()
	err := d.Update(func(tx *doc.Txn) error {
		return c.Import(tx, doc.RootKey, "> q")
	})
	assert.True(t, errors.Is(err, ErrNotElement))
}

func TestSerializerLinePrefix(t *testing.T) {
	ext := testExtension()
	ext.Serializers = map[string]Serializer{
		doc.TypeParagraph: func(e *Exporter, k doc.Key) string {
			return e.Children(k, WithLinePrefix("> "))
		},
	}
	c := NewConverter(WithExtensions(ext))
	d := importDoc(t, c, "one\ntwo")
	assert.Equal(t, "> one\n> two\n\n", export(t, c, d))
}
