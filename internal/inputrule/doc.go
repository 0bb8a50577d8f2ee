// Package inputrule turns markdown-like typing into formatting and nodes.
//
// A format rule formats text typed between two delimiters, for example
// "**bold** " becomes bold text. A node rule inspects the text node holding
// the caret and may replace its block, for example "# " at the start of a
// paragraph turns it into a heading. Rules run after every INSERT_TEXT in
// priority order; the first rule that applies wins.
package inputrule
