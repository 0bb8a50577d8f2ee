// Package image provides image blocks: decorator blocks showing an image by
// URL with an optional alt text and display width. Inline markdown images
// and img elements inside paragraphs are lifted out into their own blocks.
package image
