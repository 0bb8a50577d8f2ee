// Package link provides the inline link element.
//
// A link wraps inline content (text and line breaks) and carries a URL and
// an optional title. Links never nest and disappear when their last child is
// removed. TOGGLE_LINK wraps the selected inline content in a link, updates
// the links it touches, or unwraps them when the URL is empty.
package link
