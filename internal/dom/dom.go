package dom

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
)

// Converter imports and exports HTML with a merged set of extensions.
type Converter struct {
	reg    *registry
	policy *bluemonday.Policy
	logger *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithExtensions registers extensions in order. For equal priorities the
// conversions of later extensions win.
func WithExtensions(exts ...Extension) Option {
	return func(c *Converter) {
		for _, ext := range exts {
			c.reg.add(ext)
		}
	}
}

// WithSanitizer enables sanitizing HTML before import. A nil policy uses
// DefaultPolicy.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(c *Converter) {
		if p == nil {
			p = DefaultPolicy()
		}
		c.policy = p
	}
}

var languageClass = regexp.MustCompile(`^language-[\w+#.-]+$`)

// DefaultPolicy allows user content plus the attributes the built-in
// conversions read.
func DefaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("dir").Globally()
	p.AllowStyles("text-align", "font-weight", "font-style", "text-decoration", "vertical-align", "width").Globally()
	p.AllowAttrs("data-list-type", "aria-checked", "value").OnElements("ol", "ul", "li")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("data-language").OnElements("pre", "code")
	p.AllowAttrs("class").Matching(languageClass).OnElements("code")
	p.AllowAttrs("data-scrollable").OnElements("table")
	p.AllowElements("mark", "colgroup", "col")
	return p
}

// NewConverter creates a converter. The core extension is always included.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{reg: newRegistry(), logger: zap.NewNop()}
	c.reg.add(CoreExtension())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse parses src as an HTML document and returns its body, sanitizing it
// first when a policy is set.
func (c *Converter) Parse(src string) (*html.Node, error) {
	if c.policy != nil {
		src = c.policy.Sanitize(src)
	}
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	if body := findBody(root); body != nil {
		return body, nil
	}
	return nil, ErrNoBody
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// Import converts n into detached nodes.
func (c *Converter) Import(tx *doc.Txn, n *html.Node) []doc.Key {
	im := &importer{tx: tx, reg: c.reg, logger: c.logger}
	return im.convert(n, "", nil)
}

// ImportHTML parses src and converts its body into detached nodes.
func (c *Converter) ImportHTML(tx *doc.Txn, src string) ([]doc.Key, error) {
	body, err := c.Parse(src)
	if err != nil {
		return nil, err
	}
	return c.Import(tx, body), nil
}

// Export renders the children of root.
func (c *Converter) Export(tx *doc.Txn, root doc.Key) (string, error) {
	e := &exporter{tx: tx, reg: c.reg}
	frag := &html.Node{Type: html.DocumentNode}
	for _, k := range tx.Children(root) {
		e.node(frag, k, false)
	}
	return render(frag)
}

// ExportSelection renders the part of the document covered by sel.
func (c *Converter) ExportSelection(tx *doc.Txn, sel doc.Selection) (string, error) {
	e := &exporter{tx: tx, reg: c.reg}
	e.withSelection(sel)
	frag := &html.Node{Type: html.DocumentNode}
	for _, k := range tx.Children(doc.RootKey) {
		e.node(frag, k, false)
	}
	return render(frag)
}
