package doc

import "maps"

// Savepoint is a restorable state of a write transaction.
type Savepoint struct {
	tx        *Txn
	pending   map[Key]*Node
	removed   map[Key]bool
	dirty     map[Key]bool
	changed   map[Key]bool
	selection Selection
	notified  Selection
}

// Savepoint captures the staged state of the transaction. Changes made
// afterwards can be discarded with Rollback.
func (tx *Txn) Savepoint() *Savepoint {
	tx.assertWritable()
	if tx.frozen == nil {
		tx.frozen = make(map[Key]bool, len(tx.pending))
	}
	for k := range tx.pending {
		tx.frozen[k] = true
	}
	return &Savepoint{
		tx:        tx,
		pending:   maps.Clone(tx.pending),
		removed:   maps.Clone(tx.removed),
		dirty:     maps.Clone(tx.dirty),
		changed:   maps.Clone(tx.changed),
		selection: cloneSelection(tx.selection),
		notified:  cloneSelection(tx.notified),
	}
}

// Rollback restores the transaction to the savepoint. Nodes created after
// the savepoint are dropped and their keys are never reused.
func (s *Savepoint) Rollback() {
	tx := s.tx
	tx.pending = maps.Clone(s.pending)
	tx.removed = maps.Clone(s.removed)
	tx.dirty = maps.Clone(s.dirty)
	tx.changed = maps.Clone(s.changed)
	tx.selection = cloneSelection(s.selection)
	tx.notified = cloneSelection(s.notified)
	tx.seq++
}

func cloneSelection(s Selection) Selection {
	if s == nil {
		return nil
	}
	if rs, ok := s.(*RangeSelection); ok && rs == nil {
		return nil
	}
	return s.Clone()
}
