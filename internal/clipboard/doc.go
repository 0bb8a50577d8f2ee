// Package clipboard moves document content through a doc.DataTransfer.
//
// Copy writes three representations: the native payload (the namespace of
// the source document and the serialized selected nodes), HTML and plain
// text. Paste reads them in the same order of preference. A native payload
// is only accepted from a document with the same namespace; otherwise, or
// when it cannot be parsed, the HTML and then the plain text are used.
package clipboard
