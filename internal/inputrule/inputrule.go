package inputrule

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/richdoc/internal/doc"
)

// TransformFunc is a node rule. It receives the text node holding the caret
// and the caret offset and reports whether it changed the document.
type TransformFunc func(tx *doc.Txn, text doc.Key, offset int) bool

// Rule is a format rule when Tag is set, a node rule otherwise.
type Rule struct {
	Tag        string
	Format     doc.TextFormat
	SpaceAfter bool

	Transform TransformFunc

	// Priority orders rules; higher runs first.
	Priority int
}

// Set is an ordered collection of rules.
type Set struct {
	rules []Rule
}

// New creates a rule set.
func New(rules ...Rule) *Set {
	s := &Set{}
	s.Add(rules...)
	return s
}

// Add adds rules, keeping the priority order. Rules of equal priority keep
// the order they were added in.
func (s *Set) Add(rules ...Rule) {
	s.rules = append(s.rules, rules...)
	sort.SliceStable(s.rules, func(i, j int) bool {
		return s.rules[i].Priority > s.rules[j].Priority
	})
}

// Len returns the number of rules.
func (s *Set) Len() int { return len(s.rules) }

// Register installs an INSERT_TEXT handler that inserts the text and then
// applies the rules at the caret.
func (s *Set) Register(d *doc.Document) func() {
	return doc.RegisterCommand(d, doc.InsertText, func(tx *doc.Txn, text string) bool {
		sel, ok := tx.RangeSelection()
		if !ok {
			return false
		}
		sel.InsertText(tx, text)
		s.Apply(tx)
		return true
	}, doc.PriorityLow)
}

// Apply runs the rules against a collapsed caret inside a text node and
// reports whether one of them applied.
func (s *Set) Apply(tx *doc.Txn) bool {
	sel, ok := tx.RangeSelection()
	if !ok || !sel.IsCollapsed() || sel.Anchor.Type != doc.PointText {
		return false
	}
	text, offset := sel.Anchor.Key, sel.Anchor.Offset
	for _, r := range s.rules {
		switch {
		case r.Tag != "":
			if applyFormat(tx, r, text, offset) {
				return true
			}
		case r.Transform != nil:
			if r.Transform(tx, text, offset) {
				return true
			}
		}
	}
	return false
}

// applyFormat looks for tag, content and tag right before the caret, drops
// both tags and formats the content.
func applyFormat(tx *doc.Txn, r Rule, text doc.Key, offset int) bool {
	if tx.Node(text).TextFormat().Has(doc.FormatCode) {
		return false
	}
	before := doc.GraphemeSlice(tx.Node(text).Text(), 0, offset)
	if r.SpaceAfter {
		if !strings.HasSuffix(before, " ") {
			return false
		}
		before = strings.TrimSuffix(before, " ")
	}
	if !strings.HasSuffix(before, r.Tag) {
		return false
	}
	rest := strings.TrimSuffix(before, r.Tag)
	idx := strings.LastIndex(rest, r.Tag)
	if idx < 0 {
		return false
	}
	content := rest[idx+len(r.Tag):]
	if content == "" || edgeSpace(content) {
		return false
	}
	// "***x**" must not match the bold rule from the middle of a longer run.
	if idx > 0 && strings.HasSuffix(rest[:idx], r.Tag[:1]) {
		return false
	}

	openAt := doc.GraphemeLen(rest[:idx])
	tagLen := doc.GraphemeLen(r.Tag)
	contentLen := doc.GraphemeLen(content)
	tx.SpliceText(text, openAt+tagLen+contentLen, tagLen, "")
	tx.SpliceText(text, openAt, tagLen, "")

	parts := tx.SplitText(text, openAt, openAt+contentLen)
	target := parts[0]
	if openAt > 0 {
		target = parts[1]
	}
	tx.SetTextFormat(target, tx.Node(target).TextFormat()|r.Format)
	if sel, ok := tx.RangeSelection(); ok {
		sel.Format = tx.Node(sel.Anchor.Key).TextFormat()
	}
	return true
}

func edgeSpace(s string) bool {
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(first) || unicode.IsSpace(last)
}
