// Package codeblock provides code blocks: decorator blocks holding a
// language name and source text. The text is edited by the block's view, not
// as document text, so the block behaves like any other decorator block for
// selection, deletion and navigation.
package codeblock
