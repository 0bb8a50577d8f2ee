package doc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
)

// Class is the capability table of a node type. Nil hooks fall back to the
// base behavior of the node kind.
type Class struct {
	// Type is the unique type name, also used in serialized JSON.
	Type string
	// Kind is the structural kind of nodes of this type.
	Kind Kind
	// Version is written to serialized JSON. Zero means 1.
	Version int

	// Inline marks nodes that flow inside text.
	Inline bool
	// Block is the block variant; BlockNone for inline nodes.
	Block BlockKind
	// CanIndent allows the indent commands to change the stored indent.
	CanIndent bool
	// RemoveWhenEmpty removes the element once its last child is removed.
	RemoveWhenEmpty bool
	// ParentRequired marks nodes that may only live inside a specific parent;
	// CreateParent builds that parent for child.
	ParentRequired bool
	CreateParent   func(tx *Txn, child Key) Key

	// NewPayload creates the initial type-specific state.
	NewPayload func() Payload

	Append          func(tx *Txn, parent Key, children []Key)
	InsertAfter     func(tx *Txn, target, node Key) Key
	InsertBefore    func(tx *Txn, target, node Key) Key
	Replace         func(tx *Txn, target, with Key, includeChildren bool) Key
	InsertNewAfter  func(tx *Txn, key Key, sel *RangeSelection) Key
	CollapseAtStart func(tx *Txn, key Key, sel *RangeSelection) bool
	Indent          func(tx *Txn, key Key) int
	SetIndent       func(tx *Txn, key Key, level int)
	TextContent     func(tx *Txn, key Key) string
	SelectStart     func(tx *Txn, key Key) Selection
	SelectEnd       func(tx *Txn, key Key) Selection

	// ExportJSON adds type-specific fields to the serialized node.
	ExportJSON func(n *Node, out map[string]any)
	// ImportJSON restores type-specific fields on a freshly created node.
	ImportJSON func(tx *Txn, key Key, v gjson.Result) error

	// Transform normalizes a node that changed during an update.
	Transform func(tx *Txn, key Key)

	// CreateDecorator builds the view properties of a decorator node.
	CreateDecorator func(n *Node) map[string]any
	// UpdateDecorator refreshes props and reports whether the view must be recreated.
	UpdateDecorator func(n *Node, props map[string]any) bool
}

func (c *Class) version() int {
	if c.Version == 0 {
		return 1
	}
	return c.Version
}

// Registry maps type names to classes.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewRegistry creates an empty class registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Register adds a class. Registering the same type twice is an error.
func (r *Registry) Register(c Class) error {
	if c.Type == "" {
		return fmt.Errorf("%w: empty type name", ErrUnknownType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[c.Type]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, c.Type)
	}
	cc := c
	r.classes[c.Type] = &cc
	return nil
}

// Lookup returns the class for a type.
func (r *Registry) Lookup(typ string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[typ]
	return c, ok
}

// Has reports whether a type is registered.
func (r *Registry) Has(typ string) bool {
	_, ok := r.Lookup(typ)
	return ok
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
