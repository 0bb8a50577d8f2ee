package doc

import "go.uber.org/zap"

func (tx *Txn) assertWritable() {
	if tx.readOnly {
		panic(&InvariantError{Message: ErrReadOnlyTxn.Error()})
	}
}

func (tx *Txn) touch(k Key) {
	tx.seq++
	tx.dirty[k] = true
	tx.changed[k] = true
}

// Writable returns a staged copy of the node that may be changed for the rest
// of the transaction.
func (tx *Txn) Writable(k Key) *Node {
	tx.assertWritable()
	if n, ok := tx.pending[k]; ok && !tx.removed[k] && !tx.frozen[k] {
		tx.touch(k)
		return n
	}
	n := tx.MustNode(k)
	c := n.clone()
	tx.pending[k] = c
	delete(tx.frozen, k)
	tx.touch(k)
	return c
}

// MarkDirty schedules the transforms of k without changing it.
func (tx *Txn) MarkDirty(k Key) {
	tx.Writable(k)
}

// CreateNode creates a detached node of a registered type.
func (tx *Txn) CreateNode(typ string) Key {
	tx.assertWritable()
	c, ok := tx.doc.registry.Lookup(typ)
	Assert(ok, "node type %q is not registered", typ)
	Assert(c.Kind != KindRoot, "cannot create another root")
	n := &Node{key: tx.doc.newKey(), typ: typ, kind: c.Kind}
	if c.NewPayload != nil {
		n.payload = c.NewPayload()
	}
	tx.pending[n.key] = n
	tx.touch(n.key)
	return n.key
}

// CreateText creates a detached text node.
func (tx *Txn) CreateText(text string) Key {
	k := tx.CreateNode(TypeText)
	tx.pending[k].text = text
	return k
}

// CreateParagraph creates a detached empty paragraph.
func (tx *Txn) CreateParagraph() Key { return tx.CreateNode(TypeParagraph) }

// CreateLineBreak creates a detached line break.
func (tx *Txn) CreateLineBreak() Key { return tx.CreateNode(TypeLineBreak) }

// SetTextFormat sets the format bitmask of a text node.
func (tx *Txn) SetTextFormat(k Key, f TextFormat) {
	Assert(tx.IsText(k), "SetTextFormat: %q is not a text node", k)
	if tx.Node(k).textFormat == f {
		return
	}
	tx.Writable(k).textFormat = f
}

// ToggleTextFormat flips bits of a text node format.
func (tx *Txn) ToggleTextFormat(k Key, f TextFormat) {
	tx.SetTextFormat(k, tx.MustNode(k).textFormat.Toggle(f))
}

// SetStyle sets the inline style of a text node.
func (tx *Txn) SetStyle(k Key, style string) {
	Assert(tx.IsText(k), "SetStyle: %q is not a text node", k)
	tx.Writable(k).style = style
}

// SetFormat sets the alignment of an element.
func (tx *Txn) SetFormat(k Key, f ElementFormat) {
	Assert(tx.IsElement(k), "SetFormat: %q is not an element", k)
	if tx.Node(k).format == f {
		return
	}
	tx.Writable(k).format = f
}

// SetDirection sets the text direction of an element.
func (tx *Txn) SetDirection(k Key, dir string) {
	Assert(tx.IsElement(k), "SetDirection: %q is not an element", k)
	if tx.Node(k).direction == dir {
		return
	}
	tx.Writable(k).direction = dir
}

// SetBlockSelected sets the block selection flag.
func (tx *Txn) SetBlockSelected(k Key, selected bool) {
	if tx.MustNode(k).blockSelected == selected {
		return
	}
	tx.Writable(k).blockSelected = selected
}

// Indent returns the indent level of a node, honoring class overrides.
func (tx *Txn) Indent(k Key) int {
	if c := tx.Class(k); c != nil && c.Indent != nil {
		return c.Indent(tx, k)
	}
	return tx.MustNode(k).indent
}

// SetIndent sets the indent level of a node, honoring class overrides.
func (tx *Txn) SetIndent(k Key, level int) {
	if c := tx.Class(k); c != nil && c.SetIndent != nil {
		c.SetIndent(tx, k, level)
		return
	}
	tx.SetIndentBase(k, level)
}

// SetIndentBase stores the indent level.
func (tx *Txn) SetIndentBase(k Key, level int) {
	if level < 0 {
		level = 0
	}
	if tx.MustNode(k).indent == level {
		return
	}
	tx.Writable(k).indent = level
}

// Append appends children to an element, honoring class overrides.
func (tx *Txn) Append(parent Key, children ...Key) {
	if c := tx.Class(parent); c != nil && c.Append != nil {
		c.Append(tx, parent, children)
		return
	}
	tx.AppendBase(parent, children...)
}

// AppendBase appends children without class overrides.
func (tx *Txn) AppendBase(parent Key, children ...Key) {
	tx.Splice(parent, tx.ChildrenSize(parent), 0, children...)
}

// InsertAfter inserts node after target, honoring class overrides of target.
func (tx *Txn) InsertAfter(target, node Key) Key {
	if c := tx.Class(target); c != nil && c.InsertAfter != nil {
		return c.InsertAfter(tx, target, node)
	}
	return tx.InsertAfterBase(target, node)
}

// InsertAfterBase inserts node after target without class overrides.
func (tx *Txn) InsertAfterBase(target, node Key) Key {
	parent := tx.Parent(target)
	Assert(parent != "", "InsertAfter: %q has no parent", target)
	Assert(tx.Exists(node), "node %q does not exist", node)
	tx.detach(node)
	tx.Splice(parent, tx.IndexWithinParent(target)+1, 0, node)
	return node
}

// InsertBefore inserts node before target, honoring class overrides of target.
func (tx *Txn) InsertBefore(target, node Key) Key {
	if c := tx.Class(target); c != nil && c.InsertBefore != nil {
		return c.InsertBefore(tx, target, node)
	}
	return tx.InsertBeforeBase(target, node)
}

// InsertBeforeBase inserts node before target without class overrides.
func (tx *Txn) InsertBeforeBase(target, node Key) Key {
	parent := tx.Parent(target)
	Assert(parent != "", "InsertBefore: %q has no parent", target)
	Assert(tx.Exists(node), "node %q does not exist", node)
	tx.detach(node)
	tx.Splice(parent, tx.IndexWithinParent(target), 0, node)
	return node
}

// Replace puts with in the place of target and removes target. When
// includeChildren is set the children of target move to with.
func (tx *Txn) Replace(target, with Key, includeChildren bool) Key {
	if c := tx.Class(target); c != nil && c.Replace != nil {
		return c.Replace(tx, target, with, includeChildren)
	}
	return tx.ReplaceBase(target, with, includeChildren)
}

// ReplaceBase replaces target without class overrides.
func (tx *Txn) ReplaceBase(target, with Key, includeChildren bool) Key {
	Assert(target != with, "Replace: cannot replace %q with itself", target)
	Assert(!tx.IsAncestorOf(with, target), "Replace: %q contains %q", with, target)
	if includeChildren {
		Assert(tx.IsElement(with), "Replace: %q cannot take children", with)
		children := tx.Children(target)
		if len(children) > 0 {
			tx.AppendBase(with, children...)
		}
	}
	tx.InsertAfterBase(target, with)
	tx.moveSelectionPoints(target, with, includeChildren)
	tx.removeNode(target, false)
	return with
}

// InsertNewAfter asks the class of k to create the node following it when a
// block is split, returning "" if the class does not support splitting.
func (tx *Txn) InsertNewAfter(k Key, sel *RangeSelection) Key {
	c := tx.Class(k)
	if c == nil || c.InsertNewAfter == nil {
		return ""
	}
	return c.InsertNewAfter(tx, k, sel)
}

// CollapseAtStart lets the class of k react to a deletion at its start.
func (tx *Txn) CollapseAtStart(k Key, sel *RangeSelection) bool {
	c := tx.Class(k)
	if c == nil || c.CollapseAtStart == nil {
		return false
	}
	return c.CollapseAtStart(tx, k, sel)
}

// Remove detaches a node and drops it and its descendants. An element whose
// class sets RemoveWhenEmpty is removed too once it loses its last child.
func (tx *Txn) Remove(k Key) {
	tx.removeNode(k, true)
}

func (tx *Txn) removeNode(k Key, cascade bool) {
	Assert(k != RootKey, "cannot remove the root")
	n := tx.MustNode(k)
	parent := n.parent
	if parent != "" {
		tx.fixSelectionForRemoval(k)
		tx.detach(k)
	}
	tx.dropSubtree(k)

	if cascade && parent != "" && parent != RootKey && tx.IsEmpty(parent) {
		if c := tx.Class(parent); c != nil && c.RemoveWhenEmpty {
			tx.removeNode(parent, true)
		}
	}
}

func (tx *Txn) dropSubtree(k Key) {
	for _, c := range tx.Children(k) {
		tx.dropSubtree(c)
	}
	tx.removed[k] = true
	tx.seq++
	delete(tx.dirty, k)
}

// Clear removes every child of an element.
func (tx *Txn) Clear(k Key) {
	for _, c := range tx.Children(k) {
		tx.removeNode(c, false)
	}
}

// Splice removes deleteCount children of parent starting at start and
// inserts nodes there. Removed children are dropped.
func (tx *Txn) Splice(parent Key, start, deleteCount int, nodes ...Key) {
	tx.assertWritable()
	Assert(tx.IsElement(parent), "Splice: %q is not an element", parent)
	for _, n := range nodes {
		Assert(n != parent && !tx.IsAncestorOf(n, parent), "Splice: %q would contain itself", n)
		if tx.Parent(n) == parent && tx.IndexWithinParent(n) < start {
			start--
		}
		tx.detach(n)
	}
	size := tx.ChildrenSize(parent)
	Assert(start >= 0 && start <= size, "Splice: index %d out of range [0,%d]", start, size)
	if start+deleteCount > size {
		deleteCount = size - start
	}
	for _, c := range tx.Children(parent)[start : start+deleteCount] {
		tx.removeNode(c, false)
	}
	if len(nodes) == 0 {
		return
	}

	p := tx.Writable(parent)
	children := make([]Key, 0, len(p.children)+len(nodes))
	children = append(children, p.children[:start]...)
	children = append(children, nodes...)
	children = append(children, p.children[start:]...)
	p.children = children
	for _, n := range nodes {
		tx.Writable(n).parent = parent
	}
	tx.shiftElementPoints(parent, start, len(nodes))
}

// Detach unlinks k from its parent and keeps its subtree. A node that is not
// attached again before commit is collected.
func (tx *Txn) Detach(k Key) {
	tx.assertWritable()
	if tx.Parent(k) == "" {
		return
	}
	tx.fixSelectionForRemoval(k)
	tx.detach(k)
}

func (tx *Txn) detach(k Key) {
	n := tx.MustNode(k)
	if n.parent == "" {
		return
	}
	parent := n.parent
	idx := tx.IndexWithinParent(k)
	p := tx.Writable(parent)
	if idx >= 0 {
		p.children = append(p.children[:idx:idx], p.children[idx+1:]...)
	}
	tx.Writable(k).parent = ""
	tx.shiftElementPoints(parent, idx+1, -1)
}

// collectGarbage drops staged nodes that were never attached to the tree.
func (tx *Txn) collectGarbage() {
	var orphans []Key
	for k := range tx.pending {
		if !tx.removed[k] && k != RootKey && tx.Parent(k) == "" {
			orphans = append(orphans, k)
		}
	}
	for _, k := range orphans {
		tx.dropSubtree(k)
	}
}

// finish runs transforms and selection-change handlers to a fixed point.
func (tx *Txn) finish() {
	for pass := 0; ; pass++ {
		Assert(pass < maxSelectionPasses, "selection change handlers did not settle")
		tx.runTransforms()
		if selectionsEqual(tx.selection, tx.notified) {
			return
		}
		if tx.selection != nil {
			tx.notified = tx.selection.Clone()
		} else {
			tx.notified = nil
		}
		Dispatch(tx, SelectionChange, struct{}{})
	}
}

func (tx *Txn) runTransforms() {
	for pass := 0; len(tx.dirty) > 0; pass++ {
		if pass >= maxTransformPasses {
			tx.doc.logger.Warn("transforms did not settle", zap.Int("passes", pass))
			Invariant("transforms did not settle after %d passes", pass)
		}
		batch := make([]Key, 0, len(tx.dirty))
		for k := range tx.dirty {
			batch = append(batch, k)
		}
		tx.dirty = make(map[Key]bool)
		for _, k := range batch {
			if !tx.IsAttached(k) {
				continue
			}
			n := tx.Node(k)
			if c := tx.Class(k); c != nil && c.Transform != nil {
				c.Transform(tx, k)
			}
			for _, t := range tx.doc.transformsFor(n.typ) {
				if !tx.IsAttached(k) {
					break
				}
				t.fn(tx, k)
			}
		}
	}
}

func selectionsEqual(a, b Selection) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Is(b)
}

// validSelection drops a selection that refers to removed nodes.
func (tx *Txn) validSelection() Selection {
	if tx.selection == nil {
		return nil
	}
	if rs, ok := tx.selection.(*RangeSelection); ok {
		if !tx.IsAttached(rs.Anchor.Key) || !tx.IsAttached(rs.Focus.Key) {
			return nil
		}
	}
	s := tx.selection.Clone()
	s.SetDirty(false)
	return s
}

// WritablePayload returns the payload of a staged copy of k. Changes to the
// returned value are part of the transaction.
func (tx *Txn) WritablePayload(k Key) Payload {
	return tx.Writable(k).payload
}

// PayloadOf returns the payload of k as T. It panics with an invariant error
// when k has no payload of that type.
func PayloadOf[T Payload](tx *Txn, k Key) T {
	p, ok := tx.MustNode(k).payload.(T)
	Assert(ok, "node %q has no %T payload", k, p)
	return p
}

// WritablePayloadOf is WritablePayload typed as T.
func WritablePayloadOf[T Payload](tx *Txn, k Key) T {
	p, ok := tx.WritablePayload(k).(T)
	Assert(ok, "node %q has no %T payload", k, p)
	return p
}
