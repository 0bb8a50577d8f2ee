// Package markdown converts between markdown text and document trees.
//
// Import runs in two stages. Tokenize parses the text with goldmark and
// flattens the syntax tree into a token stream of *_open and *_close pairs,
// self-contained tokens, inline tokens carrying children and text tokens.
// Import then builds nodes from the stream using a map of token parsers, so
// the accepted dialect is exactly what the registered parsers understand.
//
// Export walks a subtree. Node types may register a Serializer; other nodes
// fall back to their kind: elements export their children, decorators their
// text content, text nodes their formatted text. Text formats are written as
// balanced delimiter tags taken from a format tag map.
package markdown
