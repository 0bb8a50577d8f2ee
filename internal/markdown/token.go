package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/unicode/norm"
)

// Token is one entry of the flattened token stream.
type Token struct {
	// Type is the token type, e.g. "paragraph_open", "inline", "text".
	Type string
	// Tag is the HTML tag the token corresponds to, e.g. "h2".
	Tag string
	// Content holds the text of text, code and fence tokens.
	Content string
	// Info is the info string of fence tokens.
	Info string
	// Hidden marks paragraphs of tight lists.
	Hidden bool
	// Attrs holds token attributes such as href, src or start.
	Attrs map[string]string
	// Children holds the inline tokens of an inline token.
	Children []Token
}

// Attr returns an attribute or "".
func (t *Token) Attr(name string) string {
	return t.Attrs[name]
}

// Tokenizer turns markdown text into a token stream.
type Tokenizer struct {
	md goldmark.Markdown
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*tokenizerConfig)

type tokenizerConfig struct {
	table, strikethrough, taskList bool
}

// WithTables enables GFM tables.
func WithTables(enabled bool) TokenizerOption {
	return func(c *tokenizerConfig) { c.table = enabled }
}

// WithStrikethrough enables ~~strikethrough~~.
func WithStrikethrough(enabled bool) TokenizerOption {
	return func(c *tokenizerConfig) { c.strikethrough = enabled }
}

// WithTaskList enables [ ] and [x] markers in list items.
func WithTaskList(enabled bool) TokenizerOption {
	return func(c *tokenizerConfig) { c.taskList = enabled }
}

// NewTokenizer creates a CommonMark tokenizer. Tables, strikethrough and task
// lists are enabled unless turned off.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	cfg := tokenizerConfig{table: true, strikethrough: true, taskList: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	var exts []goldmark.Extender
	if cfg.table {
		exts = append(exts, extension.Table)
	}
	if cfg.strikethrough {
		exts = append(exts, extension.Strikethrough)
	}
	if cfg.taskList {
		exts = append(exts, extension.TaskList)
	}
	return &Tokenizer{md: goldmark.New(goldmark.WithExtensions(exts...))}
}

// Tokenize parses src into a token stream.
func (t *Tokenizer) Tokenize(src string) []Token {
	source := []byte(src)
	root := t.md.Parser().Parse(text.NewReader(source))
	w := &tokenWriter{source: source}
	w.blocks(root)
	return w.out
}

type tokenWriter struct {
	source []byte
	out    []Token
}

func (w *tokenWriter) emit(tok Token) {
	w.out = append(w.out, tok)
}

func (w *tokenWriter) blocks(parent gast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n)
	}
}

func (w *tokenWriter) block(n gast.Node) {
	switch n := n.(type) {
	case *gast.Paragraph:
		w.inlineBlock("paragraph", "p", false, n)
	case *gast.TextBlock:
		w.inlineBlock("paragraph", "p", true, n)
	case *gast.Heading:
		w.inlineBlock("heading", "h"+strconv.Itoa(n.Level), false, n)
	case *gast.ThematicBreak:
		w.emit(Token{Type: "hr", Tag: "hr"})
	case *gast.CodeBlock:
		w.emit(Token{Type: "code_block", Tag: "code", Content: w.lines(n)})
	case *gast.FencedCodeBlock:
		tok := Token{Type: "fence", Tag: "code", Content: w.lines(n)}
		if n.Info != nil {
			tok.Info = string(n.Info.Segment.Value(w.source))
		}
		w.emit(tok)
	case *gast.Blockquote:
		w.emit(Token{Type: "blockquote_open", Tag: "blockquote"})
		w.blocks(n)
		w.emit(Token{Type: "blockquote_close", Tag: "blockquote"})
	case *gast.List:
		w.list(n)
	case *gast.HTMLBlock:
		// Raw HTML is not interpreted; it is kept as paragraph text.
		content := w.lines(n)
		if n.HasClosure() {
			content += string(n.ClosureLine.Value(w.source))
		}
		w.emit(Token{Type: "paragraph_open", Tag: "p"})
		w.emit(Token{Type: "inline", Children: []Token{textToken(strings.TrimRight(content, "\n"))}})
		w.emit(Token{Type: "paragraph_close", Tag: "p"})
	case *extast.Table:
		w.table(n)
	default:
		w.blocks(n)
	}
}

func (w *tokenWriter) inlineBlock(typ, tag string, hidden bool, n gast.Node) {
	w.emit(Token{Type: typ + "_open", Tag: tag, Hidden: hidden})
	w.emit(Token{Type: "inline", Children: w.inlines(n)})
	w.emit(Token{Type: typ + "_close", Tag: tag, Hidden: hidden})
}

func (w *tokenWriter) lines(n gast.Node) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return b.String()
}

func (w *tokenWriter) list(n *gast.List) {
	open := Token{Type: "bullet_list_open", Tag: "ul", Attrs: map[string]string{}}
	closeTok := Token{Type: "bullet_list_close", Tag: "ul"}
	if n.IsOrdered() {
		open = Token{Type: "ordered_list_open", Tag: "ol", Attrs: map[string]string{"start": strconv.Itoa(n.Start)}}
		closeTok = Token{Type: "ordered_list_close", Tag: "ol"}
	}
	type item struct {
		node    gast.Node
		checked string
	}
	var items []item
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		it := item{node: c}
		if box := taskCheckBox(c); box != nil {
			it.checked = strconv.FormatBool(box.IsChecked)
			open.Attrs["task"] = "true"
		}
		items = append(items, it)
	}
	w.emit(open)
	for _, it := range items {
		tok := Token{Type: "list_item_open", Tag: "li"}
		if it.checked != "" {
			tok.Attrs = map[string]string{"checked": it.checked}
		}
		w.emit(tok)
		w.blocks(it.node)
		w.emit(Token{Type: "list_item_close", Tag: "li"})
	}
	w.emit(closeTok)
}

// taskCheckBox returns the checkbox leading a list item, or nil.
func taskCheckBox(item gast.Node) *extast.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*extast.TaskCheckBox)
	return box
}

func (w *tokenWriter) table(n *extast.Table) {
	w.emit(Token{Type: "table_open", Tag: "table"})
	inBody := false
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		cellType := "td"
		switch r.(type) {
		case *extast.TableHeader:
			cellType = "th"
			w.emit(Token{Type: "thead_open", Tag: "thead"})
		default:
			if !inBody {
				inBody = true
				w.emit(Token{Type: "tbody_open", Tag: "tbody"})
			}
		}
		w.emit(Token{Type: "tr_open", Tag: "tr"})
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			open := Token{Type: cellType + "_open", Tag: cellType}
			if cell, ok := c.(*extast.TableCell); ok && cell.Alignment != extast.AlignNone {
				open.Attrs = map[string]string{"style": "text-align:" + cell.Alignment.String()}
			}
			w.emit(open)
			w.emit(Token{Type: "inline", Children: w.inlines(c)})
			w.emit(Token{Type: cellType + "_close", Tag: cellType})
		}
		w.emit(Token{Type: "tr_close", Tag: "tr"})
		if cellType == "th" {
			w.emit(Token{Type: "thead_close", Tag: "thead"})
		}
	}
	if inBody {
		w.emit(Token{Type: "tbody_close", Tag: "tbody"})
	}
	w.emit(Token{Type: "table_close", Tag: "table"})
}

func textToken(s string) Token {
	return Token{Type: "text", Content: norm.NFC.String(s)}
}

func (w *tokenWriter) inlines(parent gast.Node) []Token {
	var out []Token
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, w.inline(n)...)
	}
	return out
}

func (w *tokenWriter) inline(n gast.Node) []Token {
	switch n := n.(type) {
	case *gast.Text:
		value := n.Value(w.source)
		if !n.IsRaw() {
			value = util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(value)))
		}
		var out []Token
		if len(value) > 0 {
			out = append(out, textToken(string(value)))
		}
		switch {
		case n.HardLineBreak():
			out = append(out, Token{Type: "hardbreak", Tag: "br"})
		case n.SoftLineBreak():
			out = append(out, Token{Type: "softbreak", Tag: "br"})
		}
		return out
	case *gast.String:
		return []Token{textToken(string(n.Value))}
	case *gast.CodeSpan:
		var b bytes.Buffer
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *gast.Text:
				b.Write(c.Value(w.source))
			case *gast.String:
				b.Write(c.Value)
			}
		}
		return []Token{{Type: "code_inline", Tag: "code", Content: norm.NFC.String(b.String())}}
	case *gast.Emphasis:
		typ, tag := "em", "em"
		if n.Level >= 2 {
			typ, tag = "strong", "strong"
		}
		return w.wrap(typ, tag, nil, n)
	case *extast.Strikethrough:
		return w.wrap("s", "s", nil, n)
	case *gast.Link:
		attrs := map[string]string{"href": string(n.Destination)}
		if len(n.Title) > 0 {
			attrs["title"] = string(n.Title)
		}
		return w.wrap("link", "a", attrs, n)
	case *gast.AutoLink:
		url := string(n.URL(w.source))
		return []Token{
			{Type: "link_open", Tag: "a", Attrs: map[string]string{"href": url}},
			textToken(string(n.Label(w.source))),
			{Type: "link_close", Tag: "a"},
		}
	case *gast.Image:
		children := w.inlines(n)
		var alt strings.Builder
		for _, c := range children {
			alt.WriteString(c.Content)
		}
		attrs := map[string]string{"src": string(n.Destination), "alt": alt.String()}
		if len(n.Title) > 0 {
			attrs["title"] = string(n.Title)
		}
		return []Token{{Type: "image", Tag: "img", Content: alt.String(), Attrs: attrs, Children: children}}
	case *gast.RawHTML:
		return []Token{textToken(string(n.Segments.Value(w.source)))}
	case *extast.TaskCheckBox:
		// Reported on the list item token.
		return nil
	default:
		return w.inlines(n)
	}
}

func (w *tokenWriter) wrap(typ, tag string, attrs map[string]string, n gast.Node) []Token {
	out := []Token{{Type: typ + "_open", Tag: tag, Attrs: attrs}}
	out = append(out, w.inlines(n)...)
	return append(out, Token{Type: typ + "_close", Tag: tag})
}
