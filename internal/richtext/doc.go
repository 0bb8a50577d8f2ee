// Package richtext provides headings, quotes and horizontal rules together
// with the basic text editing commands: typing, formatting, paragraph and
// line break insertion, deletion and indentation.
package richtext
