package inputrule

import (
	"regexp"

	"github.com/dshills/richdoc/internal/doc"
)

// MatchParagraphStart matches re against the text before the caret when text
// is the first child of a paragraph. It returns the paragraph and the
// submatches, or "" and nil.
func MatchParagraphStart(tx *doc.Txn, text doc.Key, offset int, re *regexp.Regexp) (doc.Key, []string) {
	p := tx.Parent(text)
	if !tx.Is(p, doc.TypeParagraph) || tx.FirstChild(p) != text {
		return "", nil
	}
	m := re.FindStringSubmatch(doc.GraphemeSlice(tx.Node(text).Text(), 0, offset))
	if m == nil {
		return "", nil
	}
	return p, m
}

// TrimMatch removes the matched prefix from text.
func TrimMatch(tx *doc.Txn, text doc.Key, match string) {
	tx.SpliceText(text, 0, doc.GraphemeLen(match), "")
}
