package table

import (
	"strings"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/markdown"
)

// MarkdownExtension maps GFM tables. Markdown has no spans, so a spanning
// cell is written once for every slot it covers.
func MarkdownExtension() markdown.Extension {
	cell := markdown.TokenParser{Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
		c := CreateCell(tx)
		if align, ok := strings.CutPrefix(tok.Attr("style"), "text-align:"); ok {
			tx.SetFormat(c, doc.ParseElementFormat(align))
		}
		return c
	}}
	transparent := markdown.TokenParser{Node: func(*doc.Txn, *markdown.Token) doc.Key { return "" }}
	return markdown.Extension{
		TokenParsers: markdown.ParserMap{
			"table": {Node: func(tx *doc.Txn, _ *markdown.Token) doc.Key {
				t := CreateTable(tx)
				SetHeaderRow(tx, t, true)
				return t
			}},
			"thead": transparent,
			"tbody": transparent,
			"tr": {Node: func(tx *doc.Txn, _ *markdown.Token) doc.Key {
				return CreateRow(tx)
			}},
			"th": cell,
			"td": cell,
		},
		Serializers: map[string]markdown.Serializer{
			TypeTable: exportTable,
		},
	}
}

var cellEscaper = strings.NewReplacer("\n", " ", "|", `\|`)

func exportTable(e *markdown.Exporter, t doc.Key) string {
	tx := e.Txn()
	m := MapOf(tx, t)
	if m.Rows() == 0 {
		return ""
	}
	text := make(map[doc.Key]string)
	var lines []string
	for r := range m.Rows() {
		cells := make([]string, m.Columns())
		for c := range cells {
			k := m.At(r, c).Cell
			s, ok := text[k]
			if !ok {
				s = strings.TrimSpace(cellEscaper.Replace(e.Children(k)))
				text[k] = s
			}
			cells[c] = s
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if r == 0 {
			lines = append(lines, delimiterRow(tx, m))
		}
	}
	return strings.Join(lines, "\n")
}

// delimiterRow writes the alignment of each column, read from the first row.
func delimiterRow(tx *doc.Txn, m *Map) string {
	cols := make([]string, m.Columns())
	for c := range cols {
		switch tx.Node(m.At(0, c).Cell).Format() {
		case doc.AlignLeft, doc.AlignStart:
			cols[c] = ":---"
		case doc.AlignCenter:
			cols[c] = ":---:"
		case doc.AlignRight, doc.AlignEnd:
			cols[c] = "---:"
		default:
			cols[c] = "---"
		}
	}
	return "| " + strings.Join(cols, " | ") + " |"
}
