package editor

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/clipboard"
	"github.com/dshills/richdoc/internal/config"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
	"github.com/dshills/richdoc/internal/markdown"
)

// Editor owns a document and the plugins operating on it.
type Editor struct {
	doc     *doc.Document
	cfg     *config.Config
	logger  *zap.Logger
	plugins []Plugin

	md   *markdown.Converter
	html *dom.Converter
	clip *clipboard.Clipboard

	readOnly atomic.Bool

	mu      sync.Mutex
	cleanup []func()
	closed  bool
}

// Option configures an Editor.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	cfg       *config.Config
	plugins   []Plugin
	namespace string
	readOnly  *bool
}

// WithLogger sets the logger shared by the document and converters.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConfig sets the configuration. The default configuration is used
// otherwise.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithPlugins appends plugins. Registration follows the given order.
func WithPlugins(plugins ...Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, plugins...) }
}

// WithNamespace overrides the configured clipboard namespace.
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithReadOnly overrides the configured read-only mode.
func WithReadOnly(readOnly bool) Option {
	return func(o *options) { o.readOnly = &readOnly }
}

// New creates an editor.
func New(opts ...Option) (*Editor, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	ns := o.namespace
	if ns == "" {
		ns = o.cfg.Editor.Namespace
	}

	e := &Editor{
		doc:    doc.New(doc.WithLogger(o.logger), doc.WithNamespace(ns)),
		cfg:    o.cfg,
		logger: o.logger,
	}
	readOnly := o.cfg.Editor.ReadOnly
	if o.readOnly != nil {
		readOnly = *o.readOnly
	}
	e.readOnly.Store(readOnly)

	seen := make(map[string]bool)
	var mdExts []markdown.Extension
	var htmlExts []dom.Extension
	for _, p := range o.plugins {
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.Name)
		}
		seen[p.Name] = true
		for _, c := range p.Classes {
			if err := e.doc.RegisterClass(c); err != nil {
				return nil, fmt.Errorf("editor: plugin %s: %w", p.Name, err)
			}
		}
		mdExts = append(mdExts, p.Markdown)
		htmlExts = append(htmlExts, p.HTML)
		e.plugins = append(e.plugins, p)
	}

	e.md = markdown.NewConverter(
		markdown.WithLogger(o.logger),
		markdown.WithExtensions(mdExts...),
		markdown.WithTokenizerOptions(
			markdown.WithTables(o.cfg.Markdown.Table),
			markdown.WithStrikethrough(o.cfg.Markdown.Strikethrough),
			markdown.WithTaskList(o.cfg.Markdown.TaskList),
		),
	)
	htmlOpts := []dom.Option{dom.WithLogger(o.logger), dom.WithExtensions(htmlExts...)}
	if o.cfg.HTML.Sanitize {
		htmlOpts = append(htmlOpts, dom.WithSanitizer(nil))
	}
	e.html = dom.NewConverter(htmlOpts...)
	e.clip = clipboard.New(
		clipboard.WithLogger(o.logger),
		clipboard.WithHTML(e.html),
		clipboard.WithMIME(o.cfg.Clipboard.MIME),
	)

	e.cleanup = append(e.cleanup, e.clip.Register(e.doc), block.Register(e.doc, e.clip))
	for _, p := range e.plugins {
		if p.Register != nil {
			if undo := p.Register(e); undo != nil {
				e.cleanup = append(e.cleanup, undo)
			}
		}
	}
	e.logger.Debug("editor created", zap.Int("plugins", len(e.plugins)), zap.String("namespace", e.doc.Namespace()))
	return e, nil
}

// Document returns the edited document.
func (e *Editor) Document() *doc.Document { return e.doc }

// Config returns the configuration the editor was built with.
func (e *Editor) Config() *config.Config { return e.cfg }

// Logger returns the editor logger.
func (e *Editor) Logger() *zap.Logger { return e.logger }

// Markdown returns the markdown converter.
func (e *Editor) Markdown() *markdown.Converter { return e.md }

// HTML returns the HTML converter.
func (e *Editor) HTML() *dom.Converter { return e.html }

// Clipboard returns the clipboard.
func (e *Editor) Clipboard() *clipboard.Clipboard { return e.clip }

// HasPlugin reports whether a plugin with the given name is registered.
func (e *Editor) HasPlugin(name string) bool {
	for _, p := range e.plugins {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ReadOnly reports whether commands are blocked.
func (e *Editor) ReadOnly() bool { return e.readOnly.Load() }

// SetReadOnly blocks or unblocks command dispatch.
func (e *Editor) SetReadOnly(readOnly bool) { e.readOnly.Store(readOnly) }

// Update runs fn in a document update.
func (e *Editor) Update(fn func(tx *doc.Txn) error, opts ...doc.UpdateOption) error {
	return e.doc.Update(fn, opts...)
}

// Read runs fn against the committed document.
func (e *Editor) Read(fn func(tx *doc.Txn) error) error {
	return e.doc.Read(fn)
}

// Dispatch runs cmd in its own update. Read-only editors reject commands.
func Dispatch[P any](e *Editor, cmd doc.Command[P], payload P) (bool, error) {
	if e.ReadOnly() {
		return false, ErrReadOnly
	}
	return doc.DispatchCommand(e.doc, cmd, payload)
}

// Close unregisters the commands installed by the editor and its plugins.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
	e.cleanup = nil
}

// FromMarkdown replaces the document content with src.
func (e *Editor) FromMarkdown(src string) error {
	return e.doc.Update(func(tx *doc.Txn) error {
		tx.Clear(doc.RootKey)
		return e.md.Import(tx, doc.RootKey, src)
	}, doc.WithTag(doc.TagHistoric))
}

// ToMarkdown exports the document as markdown without trailing newlines.
func (e *Editor) ToMarkdown() (string, error) {
	return e.MarkdownOf(doc.RootKey)
}

// MarkdownOf exports the children of k as markdown without trailing
// newlines.
func (e *Editor) MarkdownOf(k doc.Key) (string, error) {
	var out string
	err := e.doc.Read(func(tx *doc.Txn) error {
		out = strings.TrimRight(e.md.Export(tx, k), "\n")
		return nil
	})
	return out, err
}

// FromHTML replaces the document content with the body of src.
func (e *Editor) FromHTML(src string) error {
	return e.doc.Update(func(tx *doc.Txn) error {
		nodes, err := e.html.ImportHTML(tx, src)
		if err != nil {
			return err
		}
		tx.Clear(doc.RootKey)
		sel := tx.Select(doc.RootKey, 0, 0)
		clipboard.InsertGenerated(tx, nodes, sel)
		return nil
	}, doc.WithTag(doc.TagHistoric))
}

// ToHTML renders the document as HTML.
func (e *Editor) ToHTML() (string, error) {
	var out string
	err := e.doc.Read(func(tx *doc.Txn) error {
		var err error
		out, err = e.html.Export(tx, doc.RootKey)
		return err
	})
	return out, err
}

// SelectionHTML renders the current selection as HTML. It returns "" when
// nothing is selected.
func (e *Editor) SelectionHTML() (string, error) {
	var out string
	err := e.doc.Read(func(tx *doc.Txn) error {
		sel := tx.Selection()
		if sel == nil {
			return nil
		}
		var err error
		out, err = e.html.ExportSelection(tx, sel)
		return err
	})
	return out, err
}

// FromJSON replaces the document with a serialized document.
func (e *Editor) FromJSON(data []byte) error {
	return e.doc.Update(func(tx *doc.Txn) error {
		return tx.ImportJSON(data)
	}, doc.WithTag(doc.TagHistoric))
}

// ToJSON serializes the document, optionally indented.
func (e *Editor) ToJSON(indent bool) ([]byte, error) {
	return e.doc.ExportJSON(indent)
}

// TextContent returns the plain text of the document.
func (e *Editor) TextContent() string {
	var out string
	_ = e.doc.Read(func(tx *doc.Txn) error {
		out = tx.TextContent(doc.RootKey)
		return nil
	})
	return out
}
