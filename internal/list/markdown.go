package list

import (
	"strconv"
	"strings"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/markdown"
)

const indentUnit = "    "

// MarkdownExtension maps bullet, ordered and task lists.
func MarkdownExtension() markdown.Extension {
	return markdown.Extension{
		TokenParsers: markdown.ParserMap{
			"bullet_list": {Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
				if tok.Attr("task") == "true" {
					return CreateList(tx, Check, 1)
				}
				return CreateList(tx, Bullet, 1)
			}},
			"ordered_list": {Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
				start, err := strconv.Atoi(tok.Attr("start"))
				if err != nil {
					start = 1
				}
				return CreateList(tx, Number, start)
			}},
			"list_item": {Node: func(tx *doc.Txn, tok *markdown.Token) doc.Key {
				var checked *bool
				if c := tok.Attr("checked"); c != "" {
					checked = boolPtr(c == "true")
				}
				return CreateItem(tx, checked)
			}},
		},
		Serializers: map[string]markdown.Serializer{
			TypeList: func(e *markdown.Exporter, k doc.Key) string {
				return strings.TrimSuffix(e.Children(k, markdown.WithBlockSuffix("")), "\n")
			},
			TypeListItem: exportItem,
		},
	}
}

func marker(it *Item) string {
	switch {
	case it.Value != nil:
		return strconv.Itoa(*it.Value) + "."
	case it.Checked != nil && *it.Checked:
		return "- [x]"
	case it.Checked != nil:
		return "- [ ]"
	}
	return "-"
}

// exportItem writes one item line indented by its depth, followed by its
// nested lists and other blocks indented one level deeper.
func exportItem(e *markdown.Exporter, k doc.Key) string {
	tx := e.Txn()
	depth := tx.Indent(k)
	indent := strings.Repeat(indentUnit, depth)
	childIndent := indent + indentUnit
	prefix := indent + marker(ItemOf(tx, k))

	children := tx.Children(k)
	if len(children) == 0 {
		return prefix + " \n"
	}
	content := strings.ReplaceAll(e.Node(children[0]), "\n", "\n"+childIndent)
	var b strings.Builder
	b.WriteString(prefix + " " + content + "\n")
	for _, c := range children[1:] {
		if IsList(tx, c) {
			b.WriteString(e.Node(c) + "\n")
			continue
		}
		lines := strings.Split(e.Node(c), "\n")
		b.WriteString("\n")
		for _, line := range lines {
			if line != "" {
				line = childIndent + line
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
