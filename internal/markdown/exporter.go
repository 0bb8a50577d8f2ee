package markdown

import (
	"math"
	"regexp"
	"strings"

	"github.com/dshills/richdoc/internal/doc"
)

// Serializer exports one node. It may call back into the exporter for the
// children, other nodes or formatted text.
type Serializer func(e *Exporter, k doc.Key) string

// FormatTags maps a single format bit to its delimiter, e.g. bold to "**".
type FormatTags map[doc.TextFormat]string

// Exporter writes a subtree as markdown. An Exporter is used for one export.
type Exporter struct {
	tx          *doc.Txn
	tags        FormatTags
	serializers map[string]Serializer
	// unclosed holds the open delimiters, outermost first.
	unclosed []string
}

// NewExporter returns an exporter reading from tx.
func NewExporter(tx *doc.Txn, tags FormatTags, serializers map[string]Serializer) *Exporter {
	return &Exporter{tx: tx, tags: tags, serializers: serializers}
}

// Txn returns the transaction the exporter reads from.
func (e *Exporter) Txn() *doc.Txn { return e.tx }

// Export writes the children of root.
func (e *Exporter) Export(root doc.Key) string {
	return e.Children(root)
}

// ChildrenOption configures Children.
type ChildrenOption func(*childrenOptions)

type childrenOptions struct {
	linePrefix  string
	blockSuffix string
}

// WithLinePrefix prefixes every line of the output.
func WithLinePrefix(prefix string) ChildrenOption {
	return func(o *childrenOptions) { o.linePrefix = prefix }
}

// WithBlockSuffix replaces the "\n\n" written after each block child.
func WithBlockSuffix(suffix string) ChildrenOption {
	return func(o *childrenOptions) { o.blockSuffix = suffix }
}

var lineStart = regexp.MustCompile(`(?m)^`)

// Children writes the children of k. Non-inline children are followed by the
// block suffix.
func (e *Exporter) Children(k doc.Key, opts ...ChildrenOption) string {
	o := childrenOptions{blockSuffix: "\n\n"}
	for _, opt := range opts {
		opt(&o)
	}
	var b strings.Builder
	for _, c := range e.tx.Children(k) {
		b.WriteString(e.Node(c))
		if e.tx.IsNonInline(c) {
			b.WriteString(o.blockSuffix)
		}
	}
	out := b.String()
	if o.linePrefix != "" {
		out = lineStart.ReplaceAllLiteralString(out, o.linePrefix)
	}
	return out
}

// Node writes one node.
func (e *Exporter) Node(k doc.Key) string {
	if s, ok := e.serializers[e.tx.Type(k)]; ok {
		return s(e, k)
	}
	switch e.tx.Kind(k) {
	case doc.KindLineBreak:
		return "\n"
	case doc.KindElement, doc.KindRoot:
		return e.Children(k)
	case doc.KindDecorator:
		return e.tx.TextContent(k)
	case doc.KindText:
		return e.Text(k)
	}
	return ""
}

// Text writes a text node with its format delimiters.
func (e *Exporter) Text(k doc.Key) string {
	return e.FormattedText(k, e.tx.Node(k).Text())
}

// FormattedText writes content with the format delimiters of text node k.
// Delimiters wrap the content without its surrounding whitespace. A delimiter
// stays open when the next text run carries the same format; when one must
// close, every delimiter opened after it closes too.
func (e *Exporter) FormattedText(k doc.Key, content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return content
	}

	var open, closing strings.Builder
	next := e.textSibling(k, false)
	boundary := math.MaxInt
	format := e.tx.Node(k).TextFormat()

	for flag := doc.TextFormat(1); format != 0; flag <<= 1 {
		if format&flag == 0 {
			continue
		}
		format &^= flag
		tag, ok := e.tags[flag]
		if !ok {
			continue
		}
		idx := indexOf(e.unclosed, tag)
		if idx < 0 {
			e.unclosed = append(e.unclosed, tag)
			idx = len(e.unclosed) - 1
			open.WriteString(tag)
		}
		joinNext := next != "" &&
			strings.TrimSpace(e.tx.Node(next).Text()) != "" &&
			e.tx.Node(next).TextFormat().Has(flag)
		if !joinNext && idx < boundary {
			boundary = idx
		}
	}
	for len(e.unclosed) > boundary {
		last := len(e.unclosed) - 1
		closing.WriteString(e.unclosed[last])
		e.unclosed = e.unclosed[:last]
	}

	lead := content[:strings.Index(content, trimmed)]
	trail := content[len(lead)+len(trimmed):]
	return lead + open.String() + trimmed + closing.String() + trail
}

// textSibling finds the text run next to k, stepping out of an inline parent
// and into inline elements. It stops at anything else.
func (e *Exporter) textSibling(k doc.Key, backward bool) doc.Key {
	tx := e.tx
	step := tx.NextSibling
	if backward {
		step = tx.PrevSibling
	}
	sibling := step(k)
	if sibling == "" {
		if parent := tx.Parent(k); parent != "" && tx.IsInline(parent) {
			sibling = step(parent)
		}
	}
	for sibling != "" {
		switch {
		case tx.IsText(sibling):
			return sibling
		case tx.IsElement(sibling):
			if !tx.IsInline(sibling) {
				return ""
			}
			d := tx.FirstDescendant(sibling)
			if backward {
				d = tx.LastDescendant(sibling)
			}
			if tx.IsText(d) {
				return d
			}
			sibling = step(sibling)
		default:
			return ""
		}
	}
	return ""
}

func indexOf(tags []string, tag string) int {
	for i, t := range tags {
		if t == tag {
			return i
		}
	}
	return -1
}
