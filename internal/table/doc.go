// Package table implements tables with spanning cells.
//
// A table holds rows and a row holds cells. Cells hold inline content only;
// block content appended to a cell is flattened with line breaks between the
// blocks. A cell covers ColSpan columns and RowSpan rows of the grid, and
// the grid of a table is kept rectangular: transforms shrink spans that run
// past the last row and fill holes with empty cells.
//
// Map computes the grid. Selection selects the rectangle between two cells,
// grown until no spanning cell is cut by its edges.
package table
