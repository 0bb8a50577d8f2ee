package markdown

import (
	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/doc"
)

// Extension is the markdown vocabulary contributed by one plugin.
type Extension struct {
	FormatTags   FormatTags
	TokenParsers ParserMap
	Serializers  map[string]Serializer
}

// CoreExtension maps paragraphs and line breaks, which every document has.
func CoreExtension() Extension {
	lineBreak := TokenParser{Node: func(tx *doc.Txn, _ *Token) doc.Key {
		return tx.CreateLineBreak()
	}}
	return Extension{
		TokenParsers: ParserMap{
			"paragraph": {Node: func(tx *doc.Txn, _ *Token) doc.Key {
				return tx.CreateParagraph()
			}},
			"softbreak": lineBreak,
			"hardbreak": lineBreak,
		},
	}
}

// Converter imports and exports markdown with a merged set of extensions.
type Converter struct {
	tokenizer   *Tokenizer
	tags        FormatTags
	parsers     ParserMap
	serializers map[string]Serializer
	logger      *zap.Logger
	tokOpts     []TokenizerOption
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger for dropped tokens.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithExtensions merges extensions in order; later entries win.
func WithExtensions(exts ...Extension) Option {
	return func(c *Converter) {
		for _, ext := range exts {
			c.add(ext)
		}
	}
}

// WithTokenizerOptions configures the goldmark extensions of the tokenizer.
func WithTokenizerOptions(opts ...TokenizerOption) Option {
	return func(c *Converter) {
		c.tokOpts = append(c.tokOpts, opts...)
	}
}

// NewConverter creates a converter. The core extension is always included.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		tags:        FormatTags{},
		parsers:     ParserMap{},
		serializers: map[string]Serializer{},
		logger:      zap.NewNop(),
	}
	c.add(CoreExtension())
	for _, opt := range opts {
		opt(c)
	}
	c.tokenizer = NewTokenizer(c.tokOpts...)
	return c
}

func (c *Converter) add(ext Extension) {
	for f, tag := range ext.FormatTags {
		c.tags[f] = tag
	}
	for typ, p := range ext.TokenParsers {
		c.parsers[typ] = p
	}
	for typ, s := range ext.Serializers {
		c.serializers[typ] = s
	}
}

// Tokenize returns the token stream of src.
func (c *Converter) Tokenize(src string) []Token {
	return c.tokenizer.Tokenize(src)
}

// Import parses src and appends the resulting nodes to parent.
func (c *Converter) Import(tx *doc.Txn, parent doc.Key, src string) error {
	return Import(tx, parent, c.Tokenize(src), c.parsers, c.logger)
}

// Export writes the children of root as markdown.
func (c *Converter) Export(tx *doc.Txn, root doc.Key) string {
	return NewExporter(tx, c.tags, c.serializers).Export(root)
}
