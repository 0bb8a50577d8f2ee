package doc

// Payload holds type-specific node state. Implementations must return a deep
// copy from ClonePayload so writable copies never share mutable state with
// committed nodes.
type Payload interface {
	ClonePayload() Payload
}

// Node is one revision of a document node. Nodes are never mutated after
// commit; use the Txn setters to change them.
type Node struct {
	key      Key
	typ      string
	kind     Kind
	parent   Key
	children []Key

	text       string
	textFormat TextFormat
	style      string

	format        ElementFormat
	indent        int
	direction     string
	blockSelected bool

	payload Payload
}

// Key returns the node key.
func (n *Node) Key() Key { return n.key }

// Type returns the class type name.
func (n *Node) Type() string { return n.typ }

// Kind returns the structural kind.
func (n *Node) Kind() Kind { return n.kind }

// Parent returns the parent key, or "" for detached nodes and the root.
func (n *Node) Parent() Key { return n.parent }

// Children returns a copy of the child keys.
func (n *Node) Children() []Key {
	out := make([]Key, len(n.children))
	copy(out, n.children)
	return out
}

// ChildrenSize returns the number of children.
func (n *Node) ChildrenSize() int { return len(n.children) }

// Text returns the text of a text node.
func (n *Node) Text() string { return n.text }

// TextFormat returns the format bitmask of a text node.
func (n *Node) TextFormat() TextFormat { return n.textFormat }

// Style returns the inline CSS style of a text node.
func (n *Node) Style() string { return n.style }

// Format returns the element alignment.
func (n *Node) Format() ElementFormat { return n.format }

// Indent returns the stored indent level.
func (n *Node) Indent() int { return n.indent }

// Direction returns the text direction ("ltr", "rtl" or "").
func (n *Node) Direction() string { return n.direction }

// BlockSelected reports whether the node is part of the active block selection.
func (n *Node) BlockSelected() bool { return n.blockSelected }

// Payload returns the type-specific state. Callers must not mutate it.
func (n *Node) Payload() Payload { return n.payload }

// IsElement reports whether the node can hold children.
func (n *Node) IsElement() bool { return n.kind.IsElement() }

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool { return n.kind == KindText }

func (n *Node) clone() *Node {
	c := *n
	if n.children != nil {
		c.children = make([]Key, len(n.children))
		copy(c.children, n.children)
	}
	if n.payload != nil {
		c.payload = n.payload.ClonePayload()
	}
	return &c
}

func indexOfKey(keys []Key, k Key) int {
	for i, c := range keys {
		if c == k {
			return i
		}
	}
	return -1
}
