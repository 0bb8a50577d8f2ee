package clipboard

import (
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
)

// MIME types written and read by the clipboard.
const (
	MIMENodes = "application/x-richdoc-nodes"
	MIMEHTML  = "text/html"
	MIMEPlain = "text/plain"
	MIMEURI   = "text/uri-list"
)

// Clipboard serializes selections and inserts pasted content.
type Clipboard struct {
	html   *dom.Converter
	mime   string
	logger *zap.Logger
}

// Option configures a Clipboard.
type Option func(*Clipboard)

// WithLogger sets the logger for rejected payloads.
func WithLogger(l *zap.Logger) Option {
	return func(c *Clipboard) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTML sets the converter used for the HTML representation.
func WithHTML(conv *dom.Converter) Option {
	return func(c *Clipboard) {
		if conv != nil {
			c.html = conv
		}
	}
}

// WithMIME replaces the MIME type of the native payload.
func WithMIME(mime string) Option {
	return func(c *Clipboard) {
		if mime != "" {
			c.mime = mime
		}
	}
}

// New creates a clipboard.
func New(opts ...Option) *Clipboard {
	c := &Clipboard{mime: MIMENodes, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.html == nil {
		c.html = dom.NewConverter(dom.WithLogger(c.logger))
	}
	return c
}

// MIME returns the MIME type of the native payload.
func (c *Clipboard) MIME() string { return c.mime }

// Register installs copy, cut and paste handlers for range selections.
func (c *Clipboard) Register(d *doc.Document) func() {
	return doc.MergeRegister(
		doc.RegisterCommand(d, doc.Copy, func(tx *doc.Txn, dt *doc.DataTransfer) bool {
			sel, ok := tx.RangeSelection()
			if !ok || sel.IsCollapsed() {
				return false
			}
			c.WriteSelection(tx, sel, dt)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.Cut, func(tx *doc.Txn, dt *doc.DataTransfer) bool {
			sel, ok := tx.RangeSelection()
			if !ok || sel.IsCollapsed() {
				return false
			}
			c.WriteSelection(tx, sel, dt)
			sel.RemoveText(tx)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, doc.Paste, func(tx *doc.Txn, dt *doc.DataTransfer) bool {
			sel := tx.Selection()
			if sel == nil {
				return false
			}
			tx.AddTag(doc.TagPaste)
			return c.Insert(tx, dt, sel)
		}, doc.PriorityEditor),
	)
}

// WriteSelection stores the selected content in dt.
func (c *Clipboard) WriteSelection(tx *doc.Txn, sel doc.Selection, dt *doc.DataTransfer) {
	if payload, err := c.Payload(tx, sel); err != nil {
		c.logger.Warn("clipboard payload not written", zap.Error(err))
	} else {
		dt.Set(c.mime, payload)
	}
	if out, err := c.html.ExportSelection(tx, sel); err != nil {
		c.logger.Warn("clipboard html not written", zap.Error(err))
	} else {
		dt.Set(MIMEHTML, out)
	}
	dt.Set(MIMEPlain, sel.TextContent(tx))
}

// Payload returns the native JSON payload for sel.
func (c *Clipboard) Payload(tx *doc.Txn, sel doc.Selection) (string, error) {
	payload, err := sjson.Set("", "namespace", tx.Document().Namespace())
	if err != nil {
		return "", err
	}
	return sjson.Set(payload, "nodes", SelectedNodes(tx, sel))
}

// Insert pastes the content of dt at sel. It reports whether anything was
// inserted.
func (c *Clipboard) Insert(tx *doc.Txn, dt *doc.DataTransfer, sel doc.Selection) bool {
	if s, ok := dt.Get(c.mime); ok && s != "" {
		nodes, err := c.nativeNodes(tx, s)
		if err == nil {
			InsertGenerated(tx, nodes, sel)
			return true
		}
		c.logger.Warn("native clipboard payload rejected", zap.String("mime", c.mime), zap.Error(err))
	}

	if s, ok := dt.Get(MIMEHTML); ok && s != "" {
		nodes, err := c.html.ImportHTML(tx, s)
		if err == nil {
			InsertGenerated(tx, nodes, sel)
			return true
		}
		c.logger.Warn("html clipboard payload rejected", zap.Error(err))
	}

	text, ok := dt.Get(MIMEPlain)
	if !ok || text == "" {
		text, ok = dt.Get(MIMEURI)
	}
	if !ok || text == "" {
		return false
	}
	InsertGenerated(tx, PlainTextNodes(tx, text), sel)
	return true
}

func (c *Clipboard) nativeNodes(tx *doc.Txn, s string) ([]doc.Key, error) {
	if !gjson.Valid(s) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidPayload)
	}
	v := gjson.Parse(s)
	if ns := v.Get("namespace").String(); ns != tx.Document().Namespace() {
		return nil, fmt.Errorf("%w: %q", ErrNamespaceMismatch, ns)
	}
	nodes := v.Get("nodes")
	if !nodes.IsArray() {
		return nil, fmt.Errorf("%w: nodes is not an array", ErrInvalidPayload)
	}
	return tx.ImportNodes(nodes)
}

var lineSplit = regexp.MustCompile(`\r?\n|\t`)

// PlainTextNodes builds text, line break and tab nodes from text.
func PlainTextNodes(tx *doc.Txn, text string) []doc.Key {
	text = norm.NFC.String(text)
	var nodes []doc.Key
	last := 0
	for _, m := range lineSplit.FindAllStringIndex(text, -1) {
		if m[0] > last {
			nodes = append(nodes, tx.CreateText(text[last:m[0]]))
		}
		if text[m[0]:m[1]] == "\t" {
			nodes = append(nodes, tx.CreateText("\t"))
		} else {
			nodes = append(nodes, tx.CreateLineBreak())
		}
		last = m[1]
	}
	if last < len(text) {
		nodes = append(nodes, tx.CreateText(text[last:]))
	}
	return nodes
}

// InsertGenerated offers the nodes to SelectionInsertClipboardNodes handlers
// and inserts them at sel otherwise. A single paragraph is inserted as its
// inline content.
func InsertGenerated(tx *doc.Txn, nodes []doc.Key, sel doc.Selection) {
	if len(nodes) == 0 {
		return
	}
	if doc.Dispatch(tx, doc.SelectionInsertClipboardNodes, doc.InsertNodesPayload{Nodes: nodes, Selection: sel}) {
		return
	}
	if _, ok := sel.(*doc.RangeSelection); ok && len(nodes) == 1 &&
		tx.BlockKind(nodes[0]) == doc.BlockParagraph && !tx.IsEmpty(nodes[0]) {
		nodes = tx.Children(nodes[0])
	}
	sel.InsertNodes(tx, nodes)
}
