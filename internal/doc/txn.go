package doc

// Txn is a read or write transaction over a document. A Txn must only be used
// inside the callback it was passed to.
type Txn struct {
	doc      *Document
	base     map[Key]*Node
	pending  map[Key]*Node
	removed  map[Key]bool
	dirty    map[Key]bool
	changed  map[Key]bool
	memo     map[memoKey]memoEntry
	readOnly bool
	tags     map[string]bool
	seq      uint64
	// frozen holds staged nodes captured by a savepoint. Writable copies
	// them again instead of changing them in place.
	frozen map[Key]bool

	selection Selection
	notified  Selection
}

type memoKey struct {
	owner Key
	name  string
}

type memoEntry struct {
	seq   uint64
	value any
}

// Document returns the document the transaction belongs to.
func (tx *Txn) Document() *Document { return tx.doc }

// ReadOnly reports whether the transaction is a read. Derived caches must not
// be retained in read-only transactions.
func (tx *Txn) ReadOnly() bool { return tx.readOnly }

// HasTag reports whether the update carries a tag.
func (tx *Txn) HasTag(tag string) bool { return tx.tags[tag] }

// AddTag tags the running update.
func (tx *Txn) AddTag(tag string) {
	if !tx.readOnly {
		tx.tags[tag] = true
	}
}

// Seq returns the mutation counter of the transaction. It changes whenever a
// node is created, written or removed.
func (tx *Txn) Seq() uint64 { return tx.seq }

// Memo returns a value derived from the current tree, computing it on first
// use. The value is reused until the next mutation; read-only transactions
// always recompute.
func (tx *Txn) Memo(owner Key, name string, compute func() any) any {
	if tx.readOnly {
		return compute()
	}
	mk := memoKey{owner: owner, name: name}
	if e, ok := tx.memo[mk]; ok && e.seq == tx.seq {
		return e.value
	}
	v := compute()
	tx.memo[mk] = memoEntry{seq: tx.seq, value: v}
	return v
}

// Node returns the latest version of a node, or nil if it does not exist.
func (tx *Txn) Node(k Key) *Node {
	if k == "" {
		return nil
	}
	if tx.removed[k] {
		return nil
	}
	if n, ok := tx.pending[k]; ok {
		return n
	}
	return tx.base[k]
}

// MustNode returns the node or raises an invariant error.
func (tx *Txn) MustNode(k Key) *Node {
	n := tx.Node(k)
	Assert(n != nil, "node %q does not exist", k)
	return n
}

// Exists reports whether a node exists.
func (tx *Txn) Exists(k Key) bool { return tx.Node(k) != nil }

// Class returns the class of a node, or nil.
func (tx *Txn) Class(k Key) *Class {
	n := tx.Node(k)
	if n == nil {
		return nil
	}
	c, _ := tx.doc.registry.Lookup(n.typ)
	return c
}

// Type returns the node type or "".
func (tx *Txn) Type(k Key) string {
	if n := tx.Node(k); n != nil {
		return n.typ
	}
	return ""
}

// Is reports whether the node has the given type.
func (tx *Txn) Is(k Key, typ string) bool {
	n := tx.Node(k)
	return n != nil && n.typ == typ
}

// Kind returns the node kind.
func (tx *Txn) Kind(k Key) Kind {
	return tx.MustNode(k).kind
}

// IsRoot reports whether k is the root.
func (tx *Txn) IsRoot(k Key) bool { return k == RootKey }

// IsElement reports whether the node can hold children.
func (tx *Txn) IsElement(k Key) bool {
	n := tx.Node(k)
	return n != nil && n.kind.IsElement()
}

// IsText reports whether the node is a text node.
func (tx *Txn) IsText(k Key) bool {
	n := tx.Node(k)
	return n != nil && n.kind == KindText
}

// IsLineBreak reports whether the node is a line break.
func (tx *Txn) IsLineBreak(k Key) bool {
	n := tx.Node(k)
	return n != nil && n.kind == KindLineBreak
}

// IsDecorator reports whether the node is a decorator.
func (tx *Txn) IsDecorator(k Key) bool {
	n := tx.Node(k)
	return n != nil && n.kind == KindDecorator
}

// IsInline reports whether the node flows inside text. Text and line breaks
// are always inline; the root never is.
func (tx *Txn) IsInline(k Key) bool {
	n := tx.Node(k)
	if n == nil {
		return false
	}
	switch n.kind {
	case KindText, KindLineBreak:
		return true
	case KindRoot:
		return false
	}
	c := tx.Class(k)
	return c != nil && c.Inline
}

// IsNonInline reports whether the node is an element or decorator occupying
// its own line.
func (tx *Txn) IsNonInline(k Key) bool {
	n := tx.Node(k)
	if n == nil {
		return false
	}
	return (n.kind.IsElement() || n.kind == KindDecorator) && !tx.IsInline(k)
}

// BlockKind returns the block variant of a node's class.
func (tx *Txn) BlockKind(k Key) BlockKind {
	c := tx.Class(k)
	if c == nil || c.Inline {
		return BlockNone
	}
	return c.Block
}

// Parent returns the parent key.
func (tx *Txn) Parent(k Key) Key {
	if n := tx.Node(k); n != nil {
		return n.parent
	}
	return ""
}

// Children returns the child keys.
func (tx *Txn) Children(k Key) []Key {
	if n := tx.Node(k); n != nil {
		return n.Children()
	}
	return nil
}

// ChildrenSize returns the number of children.
func (tx *Txn) ChildrenSize(k Key) int {
	if n := tx.Node(k); n != nil {
		return len(n.children)
	}
	return 0
}

// IsEmpty reports whether an element has no children.
func (tx *Txn) IsEmpty(k Key) bool { return tx.ChildrenSize(k) == 0 }

// ChildAt returns the child at index i, or "".
func (tx *Txn) ChildAt(k Key, i int) Key {
	n := tx.Node(k)
	if n == nil || i < 0 || i >= len(n.children) {
		return ""
	}
	return n.children[i]
}

// FirstChild returns the first child or "".
func (tx *Txn) FirstChild(k Key) Key { return tx.ChildAt(k, 0) }

// LastChild returns the last child or "".
func (tx *Txn) LastChild(k Key) Key { return tx.ChildAt(k, tx.ChildrenSize(k)-1) }

// IndexWithinParent returns the position of k among its siblings, or -1.
func (tx *Txn) IndexWithinParent(k Key) int {
	p := tx.Node(tx.Parent(k))
	if p == nil {
		return -1
	}
	return indexOfKey(p.children, k)
}

// PrevSibling returns the previous sibling or "".
func (tx *Txn) PrevSibling(k Key) Key {
	i := tx.IndexWithinParent(k)
	if i <= 0 {
		return ""
	}
	return tx.ChildAt(tx.Parent(k), i-1)
}

// NextSibling returns the next sibling or "".
func (tx *Txn) NextSibling(k Key) Key {
	i := tx.IndexWithinParent(k)
	if i < 0 {
		return ""
	}
	return tx.ChildAt(tx.Parent(k), i+1)
}

// NextSiblings returns all following siblings.
func (tx *Txn) NextSiblings(k Key) []Key {
	i := tx.IndexWithinParent(k)
	if i < 0 {
		return nil
	}
	return tx.Children(tx.Parent(k))[i+1:]
}

// PrevSiblings returns all preceding siblings.
func (tx *Txn) PrevSiblings(k Key) []Key {
	i := tx.IndexWithinParent(k)
	if i < 0 {
		return nil
	}
	return tx.Children(tx.Parent(k))[:i]
}

// Parents returns the ancestors of k from the nearest outwards.
func (tx *Txn) Parents(k Key) []Key {
	var out []Key
	for p := tx.Parent(k); p != ""; p = tx.Parent(p) {
		out = append(out, p)
	}
	return out
}

// IsAttached reports whether k is reachable from the root.
func (tx *Txn) IsAttached(k Key) bool {
	for cur := k; cur != ""; cur = tx.Parent(cur) {
		if cur == RootKey {
			return true
		}
		if tx.Node(cur) == nil {
			return false
		}
	}
	return false
}

// IsAncestorOf reports whether a is a strict ancestor of k.
func (tx *Txn) IsAncestorOf(a, k Key) bool {
	for p := tx.Parent(k); p != ""; p = tx.Parent(p) {
		if p == a {
			return true
		}
	}
	return false
}

// TopLevel returns the ancestor of k that is a direct child of the root.
func (tx *Txn) TopLevel(k Key) Key {
	cur := k
	for cur != "" {
		p := tx.Parent(cur)
		if p == RootKey {
			return cur
		}
		cur = p
	}
	return ""
}

// FindParent returns the nearest node, starting at k itself, matching pred.
func (tx *Txn) FindParent(k Key, pred func(Key) bool) Key {
	for cur := k; cur != ""; cur = tx.Parent(cur) {
		if pred(cur) {
			return cur
		}
	}
	return ""
}

// FirstDescendant returns the deepest first descendant, or k if it has no children.
func (tx *Txn) FirstDescendant(k Key) Key {
	cur := k
	for tx.IsElement(cur) && !tx.IsEmpty(cur) {
		cur = tx.FirstChild(cur)
	}
	return cur
}

// LastDescendant returns the deepest last descendant, or k if it has no children.
func (tx *Txn) LastDescendant(k Key) Key {
	cur := k
	for tx.IsElement(cur) && !tx.IsEmpty(cur) {
		cur = tx.LastChild(cur)
	}
	return cur
}

// Descendants returns every descendant of k in document order.
func (tx *Txn) Descendants(k Key) []Key {
	var out []Key
	var walk func(Key)
	walk = func(n Key) {
		for _, c := range tx.Children(n) {
			out = append(out, c)
			walk(c)
		}
	}
	walk(k)
	return out
}

// NextInOrder returns the node following k in a pre-order walk, or "".
func (tx *Txn) NextInOrder(k Key) Key {
	if tx.IsElement(k) && !tx.IsEmpty(k) {
		return tx.FirstChild(k)
	}
	for cur := k; cur != "" && cur != RootKey; cur = tx.Parent(cur) {
		if next := tx.NextSibling(cur); next != "" {
			return next
		}
	}
	return ""
}

// Path returns the child indexes leading from the root to k.
func (tx *Txn) Path(k Key) []int {
	var path []int
	for cur := k; cur != RootKey && cur != ""; cur = tx.Parent(cur) {
		path = append(path, tx.IndexWithinParent(cur))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IsBefore reports whether a precedes b in document order. An ancestor
// precedes its descendants.
func (tx *Txn) IsBefore(a, b Key) bool {
	return comparePaths(tx.Path(a), tx.Path(b)) < 0
}

// CommonAncestor returns the lowest node that contains both a and b
// (a node counts as containing itself).
func (tx *Txn) CommonAncestor(a, b Key) Key {
	seen := map[Key]bool{}
	for cur := a; cur != ""; cur = tx.Parent(cur) {
		seen[cur] = true
	}
	for cur := b; cur != ""; cur = tx.Parent(cur) {
		if seen[cur] {
			return cur
		}
	}
	return ""
}

// TextContent returns the plain text of a node. Block children of an element
// are separated by a blank line.
func (tx *Txn) TextContent(k Key) string {
	n := tx.Node(k)
	if n == nil {
		return ""
	}
	if c := tx.Class(k); c != nil && c.TextContent != nil {
		return c.TextContent(tx, k)
	}
	return tx.TextContentBase(k)
}

// TextContentBase is the default text content of a node.
func (tx *Txn) TextContentBase(k Key) string {
	n := tx.Node(k)
	if n == nil {
		return ""
	}
	switch n.kind {
	case KindText:
		return n.text
	case KindLineBreak:
		return "\n"
	case KindDecorator:
		return ""
	}
	var out []byte
	for i, c := range n.children {
		out = append(out, tx.TextContent(c)...)
		if tx.IsElement(c) && !tx.IsInline(c) && i != len(n.children)-1 {
			out = append(out, "\n\n"...)
		}
	}
	return string(out)
}

// TextContentSize returns the length of the text content in grapheme clusters.
func (tx *Txn) TextContentSize(k Key) int {
	return graphemeLen(tx.TextContent(k))
}

// Selection returns the active selection of the transaction, or nil.
func (tx *Txn) Selection() Selection { return tx.selection }

// SetSelection replaces the active selection.
func (tx *Txn) SetSelection(s Selection) {
	if s != nil {
		s.SetDirty(true)
	}
	tx.selection = s
}

// RangeSelection returns the active selection if it is a range selection.
func (tx *Txn) RangeSelection() (*RangeSelection, bool) {
	rs, ok := tx.selection.(*RangeSelection)
	return rs, ok && rs != nil
}

// Selection returns a copy of the committed selection, or nil.
func (d *Document) Selection() Selection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.selection == nil {
		return nil
	}
	return d.selection.Clone()
}

func comparePaths(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
