package richtext

import (
	"regexp"
	"strconv"

	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/inputrule"
)

var (
	headingRule = regexp.MustCompile(`^(#{1,6}) $`)
	quoteRule   = regexp.MustCompile(`^> $`)
	ruleRule    = regexp.MustCompile(`^--- $`)
)

// InputRules returns the format rules and the heading, quote and
// horizontal rule shortcuts.
func InputRules() []inputrule.Rule {
	return []inputrule.Rule{
		{Tag: "**", Format: doc.FormatBold, SpaceAfter: true, Priority: 1},
		{Tag: "*", Format: doc.FormatItalic, SpaceAfter: true},
		{Tag: "~~", Format: doc.FormatStrikethrough, SpaceAfter: true, Priority: 1},
		{Tag: "`", Format: doc.FormatCode, SpaceAfter: true},
		{Transform: func(tx *doc.Txn, text doc.Key, offset int) bool {
			p, m := inputrule.MatchParagraphStart(tx, text, offset, headingRule)
			if p == "" {
				return false
			}
			inputrule.TrimMatch(tx, text, m[0])
			h := CreateHeading(tx, "h"+strconv.Itoa(len(m[1])))
			tx.Replace(p, h, true)
			tx.Select(h, 0, 0)
			return true
		}},
		{Transform: func(tx *doc.Txn, text doc.Key, offset int) bool {
			p, m := inputrule.MatchParagraphStart(tx, text, offset, quoteRule)
			if p == "" {
				return false
			}
			inputrule.TrimMatch(tx, text, m[0])
			q := CreateQuote(tx)
			tx.Replace(p, q, true)
			tx.Select(q, 0, 0)
			return true
		}},
		{Transform: func(tx *doc.Txn, text doc.Key, offset int) bool {
			if tx.Node(text).Text() != "--- " {
				return false
			}
			p, _ := inputrule.MatchParagraphStart(tx, text, offset, ruleRule)
			if p == "" {
				return false
			}
			hr := CreateHorizontalRule(tx)
			tx.Replace(p, hr, false)
			block.SelectNext(tx, hr)
			return true
		}},
	}
}
