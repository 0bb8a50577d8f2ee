// Package doc provides the document host for richdoc.
//
// A Document owns an arena of immutable nodes addressed by Key. All mutation
// happens inside Update, which hands the callback a Txn staging writable
// copies of the nodes it touches. When the callback returns, registered
// transforms run to a fixed point, selection-change handlers are notified and
// the staged nodes are swapped into the arena in a single step. Readers that
// started before the commit keep observing the previous revision.
//
// # Node classes
//
// Every node type is described by a Class: its kind (element, text, line
// break, decorator), whether it is inline, which block variant it plays and a
// set of optional behavior overrides. An override such as Class.Append
// replaces the default behavior; it can still call the base behavior through
// the matching Txn method (AppendBase, InsertAfterBase, ...).
//
// # Commands
//
// Commands are typed values created with NewCommand. Handlers are registered
// with a priority; Dispatch walks them from the highest priority down and
// stops at the first handler that reports the command as handled.
//
// # Basic Usage
//
//	d := doc.New()
//	err := d.Update(func(tx *doc.Txn) error {
//		p := tx.CreateParagraph()
//		tx.Append(p, tx.CreateText("Hello"))
//		tx.Append(doc.RootKey, p)
//		return nil
//	})
package doc
