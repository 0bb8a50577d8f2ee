package doc

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Update tags.
const (
	TagHistoric      = "historic"
	TagHistoryMerge  = "history-merge"
	TagPaste         = "paste"
	TagCollaboration = "collaboration"
	TagSkipSelection = "skip-dom-selection"
)

const (
	maxTransformPasses = 100
	maxSelectionPasses = 10
)

// UpdateEvent describes a committed update.
type UpdateEvent struct {
	Revision uint64
	Dirty    []Key
	Removed  []Key
	Tags     map[string]bool
}

// HasTag reports whether the update carried a tag.
func (e UpdateEvent) HasTag(tag string) bool { return e.Tags[tag] }

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithNamespace sets the namespace used to recognize native clipboard data.
func WithNamespace(ns string) Option {
	return func(d *Document) {
		if ns != "" {
			d.namespace = ns
		}
	}
}

// WithRegistry shares a class registry between documents.
func WithRegistry(r *Registry) Option {
	return func(d *Document) {
		if r != nil {
			d.registry = r
		}
	}
}

// UpdateOption configures a single update.
type UpdateOption func(*Txn)

// WithTag tags an update.
func WithTag(tags ...string) UpdateOption {
	return func(tx *Txn) {
		for _, t := range tags {
			tx.tags[t] = true
		}
	}
}

type transformEntry struct {
	id uint64
	fn func(tx *Txn, key Key)
}

type listenerEntry struct {
	id uint64
	fn func(UpdateEvent)
}

// Document is the root of a node tree plus its selection, commands and
// transforms. Updates are serialized; reads may run concurrently.
type Document struct {
	mu        sync.RWMutex
	nodes     map[Key]*Node
	selection Selection
	revision  uint64

	registry   *Registry
	commands   *commandRegistry
	decorators *DecoratorTable
	namespace  string
	logger     *zap.Logger
	keySeq     atomic.Uint64

	hookMu     sync.RWMutex
	hookSeq    uint64
	transforms map[string][]transformEntry
	listeners  []listenerEntry
}

// New creates a document containing an empty root and the core classes.
func New(opts ...Option) *Document {
	d := &Document{
		nodes:      make(map[Key]*Node),
		commands:   newCommandRegistry(),
		decorators: newDecoratorTable(),
		namespace:  uuid.NewString(),
		logger:     zap.NewNop(),
		transforms: make(map[string][]transformEntry),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = NewRegistry()
	}
	registerCoreClasses(d.registry)
	d.nodes[RootKey] = &Node{key: RootKey, typ: TypeRoot, kind: KindRoot}
	return d
}

// Registry returns the class registry.
func (d *Document) Registry() *Registry { return d.registry }

// RegisterClass registers a node class on the document registry.
func (d *Document) RegisterClass(c Class) error { return d.registry.Register(c) }

// Namespace returns the clipboard namespace.
func (d *Document) Namespace() string { return d.namespace }

// Logger returns the document logger.
func (d *Document) Logger() *zap.Logger { return d.logger }

// Decorators returns the decorator view-state table.
func (d *Document) Decorators() *DecoratorTable { return d.decorators }

// Revision returns the number of committed updates.
func (d *Document) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

func (d *Document) newKey() Key {
	return Key(strconv.FormatUint(d.keySeq.Add(1), 10))
}

// RegisterTransform runs fn on every node of type typ that changed during an
// update. It returns a function removing the transform.
func (d *Document) RegisterTransform(typ string, fn func(tx *Txn, key Key)) func() {
	d.hookMu.Lock()
	defer d.hookMu.Unlock()
	d.hookSeq++
	id := d.hookSeq
	d.transforms[typ] = append(d.transforms[typ], transformEntry{id: id, fn: fn})
	return func() {
		d.hookMu.Lock()
		defer d.hookMu.Unlock()
		entries := d.transforms[typ]
		for i, e := range entries {
			if e.id == id {
				d.transforms[typ] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// OnUpdate registers a listener called after every commit.
func (d *Document) OnUpdate(fn func(UpdateEvent)) func() {
	d.hookMu.Lock()
	defer d.hookMu.Unlock()
	d.hookSeq++
	id := d.hookSeq
	d.listeners = append(d.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		d.hookMu.Lock()
		defer d.hookMu.Unlock()
		for i, l := range d.listeners {
			if l.id == id {
				d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) transformsFor(typ string) []transformEntry {
	d.hookMu.RLock()
	defer d.hookMu.RUnlock()
	return d.transforms[typ]
}

// Read runs fn against the committed state. Mutations inside fn raise an
// invariant error and derived caches are not retained.
func (d *Document) Read(fn func(tx *Txn) error) (err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tx := d.newTxn(true)
	defer recoverInvariant(&err)
	return fn(tx)
}

// Update runs fn in a write transaction and commits its changes. If fn
// returns an error or an invariant fails, nothing is committed. Update must
// not be called from inside another Update or Read callback.
func (d *Document) Update(fn func(tx *Txn) error, opts ...UpdateOption) error {
	d.mu.Lock()
	event, err := d.update(fn, opts)
	d.mu.Unlock()
	if err != nil {
		return err
	}

	d.decorators.sync(d, event)

	d.hookMu.RLock()
	listeners := make([]listenerEntry, len(d.listeners))
	copy(listeners, d.listeners)
	d.hookMu.RUnlock()
	for _, l := range listeners {
		l.fn(event)
	}
	return nil
}

func (d *Document) update(fn func(tx *Txn) error, opts []UpdateOption) (event UpdateEvent, err error) {
	tx := d.newTxn(false)
	for _, opt := range opts {
		opt(tx)
	}

	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InvariantError)
			if !ok {
				panic(r)
			}
			d.logger.Error("update aborted", zap.String("reason", ie.Message))
			err = fmt.Errorf("%w: %w", ErrUpdateAborted, ie)
		}
	}()

	if err := fn(tx); err != nil {
		return UpdateEvent{}, err
	}
	tx.finish()
	return d.commit(tx), nil
}

func (d *Document) newTxn(readOnly bool) *Txn {
	tx := &Txn{
		doc:      d,
		base:     d.nodes,
		readOnly: readOnly,
		tags:     make(map[string]bool),
	}
	if !readOnly {
		tx.pending = make(map[Key]*Node)
		tx.removed = make(map[Key]bool)
		tx.dirty = make(map[Key]bool)
		tx.changed = make(map[Key]bool)
		tx.memo = make(map[memoKey]memoEntry)
	}
	if d.selection != nil {
		tx.selection = d.selection.Clone()
		tx.notified = d.selection.Clone()
	}
	return tx
}

func (d *Document) commit(tx *Txn) UpdateEvent {
	tx.collectGarbage()

	// Readers hold the read lock for the whole callback, so the committed map
	// can be patched in place under the write lock.
	for k, n := range tx.pending {
		if !tx.removed[k] {
			d.nodes[k] = n
		}
	}
	for k := range tx.removed {
		delete(d.nodes, k)
	}
	d.selection = tx.validSelection()
	d.revision++

	event := UpdateEvent{Revision: d.revision, Tags: tx.tags}
	for k := range tx.changed {
		if !tx.removed[k] {
			event.Dirty = append(event.Dirty, k)
		}
	}
	for k := range tx.removed {
		event.Removed = append(event.Removed, k)
	}
	d.logger.Debug("update committed",
		zap.Uint64("revision", d.revision),
		zap.Int("dirty", len(event.Dirty)),
		zap.Int("removed", len(event.Removed)),
	)
	return event
}

func recoverInvariant(err *error) {
	if r := recover(); r != nil {
		ie, ok := r.(*InvariantError)
		if !ok {
			panic(r)
		}
		*err = fmt.Errorf("%w: %w", ErrUpdateAborted, ie)
	}
}
