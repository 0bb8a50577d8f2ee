package doc

import (
	"sort"
	"strings"
)

// Selection is the common interface of all selection variants.
type Selection interface {
	// Clone returns an independent copy.
	Clone() Selection
	// Is reports whether two selections select the same thing.
	Is(other Selection) bool
	// IsCollapsed reports whether the selection is an empty caret.
	IsCollapsed() bool
	// Nodes returns the selected nodes that still exist.
	Nodes(tx *Txn) []Key
	// TextContent returns the plain text of the selection.
	TextContent(tx *Txn) string
	// InsertNodes replaces the selection with nodes.
	InsertNodes(tx *Txn, nodes []Key)
	// Dirty reports whether the selection changed since the last commit.
	Dirty() bool
	SetDirty(dirty bool)
}

// PointType tells whether a point offset counts characters or children.
type PointType uint8

const (
	PointText PointType = iota
	PointElement
)

// Point is one end of a range selection.
type Point struct {
	Key    Key
	Offset int
	Type   PointType
}

// TextPoint returns a point inside a text node.
func TextPoint(k Key, offset int) Point { return Point{Key: k, Offset: offset, Type: PointText} }

// ElementPoint returns a point between the children of an element.
func ElementPoint(k Key, offset int) Point { return Point{Key: k, Offset: offset, Type: PointElement} }

// ComparePoints orders two points by document position.
func (tx *Txn) ComparePoints(a, b Point) int {
	return comparePaths(tx.pointPath(a), tx.pointPath(b))
}

func (tx *Txn) pointPath(p Point) []int {
	return append(tx.Path(p.Key), p.Offset)
}

// PointNode returns the node a point refers to: the text node for text points,
// otherwise the child at the offset or the element itself past its last child.
func (tx *Txn) PointNode(p Point) Key {
	if p.Type == PointText {
		return p.Key
	}
	if c := tx.ChildAt(p.Key, p.Offset); c != "" {
		return c
	}
	return p.Key
}

func (tx *Txn) eachPoint(fn func(p *Point)) {
	rs, ok := tx.selection.(*RangeSelection)
	if !ok || rs == nil {
		return
	}
	before := *rs
	fn(&rs.Anchor)
	fn(&rs.Focus)
	if before.Anchor != rs.Anchor || before.Focus != rs.Focus {
		rs.dirty = true
		rs.cached = nil
	}
}

func (tx *Txn) fixSelectionForRemoval(k Key) {
	parent := tx.Parent(k)
	idx := tx.IndexWithinParent(k)
	tx.eachPoint(func(p *Point) {
		if p.Key == k || tx.IsAncestorOf(k, p.Key) {
			*p = ElementPoint(parent, idx)
		}
	})
	if ns, ok := tx.selection.(*NodeSelection); ok {
		ns.Delete(k)
	}
}

func (tx *Txn) moveSelectionPoints(from, to Key, keepOffset bool) {
	tx.eachPoint(func(p *Point) {
		if p.Key != from {
			return
		}
		if keepOffset && tx.IsElement(to) {
			p.Key = to
			return
		}
		*p = ElementPoint(to, 0)
		if !tx.IsElement(to) {
			*p = ElementPoint(tx.Parent(to), tx.IndexWithinParent(to))
		}
	})
}

func (tx *Txn) shiftElementPoints(parent Key, from, delta int) {
	tx.eachPoint(func(p *Point) {
		if p.Key == parent && p.Type == PointElement && p.Offset >= from {
			p.Offset += delta
			if p.Offset < 0 {
				p.Offset = 0
			}
		}
	})
}

// NodeSelection selects a set of nodes.
type NodeSelection struct {
	keys   map[Key]bool
	order  []Key
	dirty  bool
	cached []Key
}

// NewNodeSelection creates a node selection of keys.
func NewNodeSelection(keys ...Key) *NodeSelection {
	s := &NodeSelection{keys: make(map[Key]bool)}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add selects a node.
func (s *NodeSelection) Add(k Key) {
	if !s.keys[k] {
		s.keys[k] = true
		s.order = append(s.order, k)
	}
	s.dirty = true
	s.cached = nil
}

// Delete deselects a node.
func (s *NodeSelection) Delete(k Key) {
	if s.keys[k] {
		delete(s.keys, k)
		s.order = removeKey(s.order, k)
	}
	s.dirty = true
	s.cached = nil
}

// Has reports whether a node is selected.
func (s *NodeSelection) Has(k Key) bool { return s.keys[k] }

// Keys returns the selected keys in insertion order.
func (s *NodeSelection) Keys() []Key {
	out := make([]Key, len(s.order))
	copy(out, s.order)
	return out
}

// Clone implements Selection.
func (s *NodeSelection) Clone() Selection {
	c := NewNodeSelection(s.order...)
	c.dirty = s.dirty
	return c
}

// Is implements Selection.
func (s *NodeSelection) Is(other Selection) bool {
	o, ok := other.(*NodeSelection)
	if !ok || len(o.keys) != len(s.keys) {
		return false
	}
	for k := range s.keys {
		if !o.keys[k] {
			return false
		}
	}
	return true
}

// IsCollapsed implements Selection.
func (s *NodeSelection) IsCollapsed() bool { return false }

// Nodes implements Selection.
func (s *NodeSelection) Nodes(tx *Txn) []Key {
	if s.cached != nil {
		return s.cached
	}
	out := make([]Key, 0, len(s.order))
	for _, k := range s.order {
		if tx.Exists(k) {
			out = append(out, k)
		}
	}
	if !tx.ReadOnly() {
		s.cached = out
	}
	return out
}

// TextContent implements Selection.
func (s *NodeSelection) TextContent(tx *Txn) string {
	var b strings.Builder
	for _, k := range s.Nodes(tx) {
		b.WriteString(tx.TextContent(k))
	}
	return b.String()
}

// InsertNodes implements Selection.
func (s *NodeSelection) InsertNodes(tx *Txn, nodes []Key) {
	ReplaceSelectedNodes(tx, s.Nodes(tx), nodes)
}

// Dirty implements Selection.
func (s *NodeSelection) Dirty() bool { return s.dirty }

// SetDirty implements Selection.
func (s *NodeSelection) SetDirty(dirty bool) {
	s.dirty = dirty
	if dirty {
		s.cached = nil
	}
}

// ReplaceSelectedNodes inserts nodes after the last of selected and removes
// the selected nodes. When the last selected node is text the insertion point
// is its end; otherwise it is the position right after it in its parent.
func ReplaceSelectedNodes(tx *Txn, selected, nodes []Key) {
	if len(selected) == 0 {
		return
	}
	last := selected[len(selected)-1]
	var rs *RangeSelection
	if tx.IsText(last) {
		size := tx.TextSize(last)
		rs = NewRangeSelection(TextPoint(last, size), TextPoint(last, size))
	} else {
		parent := tx.Parent(last)
		idx := tx.IndexWithinParent(last) + 1
		rs = NewRangeSelection(ElementPoint(parent, idx), ElementPoint(parent, idx))
	}
	tx.SetSelection(rs)
	rs.InsertNodes(tx, nodes)
	for _, k := range selected {
		if tx.Exists(k) && tx.IsAttached(k) {
			tx.Remove(k)
		}
	}
}

// SortKeys orders keys by document position.
func (tx *Txn) SortKeys(keys []Key) {
	paths := make(map[Key][]int, len(keys))
	for _, k := range keys {
		paths[k] = tx.Path(k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return comparePaths(paths[keys[i]], paths[keys[j]]) < 0
	})
}

func removeKey(keys []Key, k Key) []Key {
	if i := indexOfKey(keys, k); i >= 0 {
		return append(keys[:i:i], keys[i+1:]...)
	}
	return keys
}
