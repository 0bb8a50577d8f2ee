// Package block layers the block capability onto element and decorator
// nodes.
//
// A block is any element or decorator node that is not inline. Blocks can be
// selected as a unit through a Selection, which holds a set of block keys
// and is installed by the SelectBlock command. Register wires the key
// bindings that act on a block selection: arrow navigation, deletion, enter,
// select-all escalation, copy and cut.
//
// Each selected block carries a blockSelected flag on its node. The flag is
// rendering state; a selection-change handler clears it on blocks that leave
// the selection.
package block
