// Package dom converts between HTML and document trees.
//
// Import walks a parsed HTML tree. Each element is looked up by tag name in a
// registry of conversions; the highest priority conversion that matches
// produces the nodes for the element, an optional transform applied to every
// node built from its descendants (ForChild) and an optional post-processor
// for its converted children (After). Elements without a tree equivalent are
// flattened when they are inline, and their inline results are wrapped in
// paragraphs when they are block containers.
//
// Export renders a subtree, or the selected part of it, back to HTML using
// per-type export functions.
package dom
