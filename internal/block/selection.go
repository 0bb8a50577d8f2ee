package block

import (
	"strings"

	"github.com/dshills/richdoc/internal/doc"
)

// Selection selects whole blocks. Two selections are equal when they hold the
// same set of keys; the insertion order only decides which block is first
// and last for navigation.
type Selection struct {
	keys   map[doc.Key]bool
	order  []doc.Key
	dirty  bool
	cached []doc.Key
}

var _ doc.Selection = (*Selection)(nil)

// NewSelection returns a block selection holding keys.
func NewSelection(keys ...doc.Key) *Selection {
	s := &Selection{keys: make(map[doc.Key]bool)}
	for _, k := range keys {
		s.add(k)
	}
	s.dirty = false
	return s
}

func (s *Selection) add(k doc.Key) {
	if !s.keys[k] {
		s.keys[k] = true
		s.order = append(s.order, k)
	}
}

func (s *Selection) remove(k doc.Key) {
	if !s.keys[k] {
		return
	}
	delete(s.keys, k)
	for i, o := range s.order {
		if o == k {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Selection) invalidate() {
	s.dirty = true
	s.cached = nil
}

// Add selects blocks.
func (s *Selection) Add(keys ...doc.Key) *Selection {
	for _, k := range keys {
		s.add(k)
	}
	s.invalidate()
	return s
}

// Delete deselects blocks.
func (s *Selection) Delete(keys ...doc.Key) *Selection {
	for _, k := range keys {
		s.remove(k)
	}
	s.invalidate()
	return s
}

// Replace swaps block for replacement.
func (s *Selection) Replace(block, replacement doc.Key) {
	s.remove(block)
	s.add(replacement)
	s.invalidate()
}

// Clear deselects every block.
func (s *Selection) Clear() {
	s.keys = make(map[doc.Key]bool)
	s.order = nil
	s.invalidate()
}

// Has reports whether the block is selected.
func (s *Selection) Has(k doc.Key) bool { return s.keys[k] }

// Len returns the number of selected keys.
func (s *Selection) Len() int { return len(s.order) }

// Keys returns the selected keys in insertion order.
func (s *Selection) Keys() []doc.Key {
	out := make([]doc.Key, len(s.order))
	copy(out, s.order)
	return out
}

// First returns the first selected key, or "".
func (s *Selection) First() doc.Key {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

// Last returns the last selected key, or "".
func (s *Selection) Last() doc.Key {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[len(s.order)-1]
}

// Clone implements doc.Selection.
func (s *Selection) Clone() doc.Selection {
	c := NewSelection(s.order...)
	c.dirty = s.dirty
	return c
}

// Is implements doc.Selection.
func (s *Selection) Is(other doc.Selection) bool {
	o, ok := other.(*Selection)
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

// IsCollapsed implements doc.Selection.
func (s *Selection) IsCollapsed() bool { return false }

// Nodes implements doc.Selection. Keys of removed blocks are skipped. The
// result is cached outside read-only transactions.
func (s *Selection) Nodes(tx *doc.Txn) []doc.Key {
	if s.cached != nil {
		return s.cached
	}
	out := make([]doc.Key, 0, len(s.order))
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

// TextContent implements doc.Selection.
func (s *Selection) TextContent(tx *doc.Txn) string {
	var b strings.Builder
	for _, k := range s.Nodes(tx) {
		b.WriteString(tx.TextContent(k))
	}
	return b.String()
}

// InsertNodes implements doc.Selection: nodes go after the last selected
// block and the selected blocks are removed.
func (s *Selection) InsertNodes(tx *doc.Txn, nodes []doc.Key) {
	doc.ReplaceSelectedNodes(tx, s.Nodes(tx), nodes)
}

// Dirty implements doc.Selection.
func (s *Selection) Dirty() bool { return s.dirty }

// SetDirty implements doc.Selection.
func (s *Selection) SetDirty(dirty bool) {
	s.dirty = dirty
	if dirty {
		s.cached = nil
	}
}

// ToNodeSelection returns a node selection holding every selected block and
// all of its descendants, so that serializers treat the whole subtree as
// selected.
func ToNodeSelection(tx *doc.Txn, s *Selection) *doc.NodeSelection {
	ns := doc.NewNodeSelection()
	var add func(k doc.Key)
	add = func(k doc.Key) {
		ns.Add(k)
		for _, c := range tx.Children(k) {
			add(c)
		}
	}
	for _, k := range s.Nodes(tx) {
		add(k)
	}
	return ns
}
