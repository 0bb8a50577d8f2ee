package codeblock

import (
	"regexp"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/inputrule"
)

var fenceRule = regexp.MustCompile("^```([\\w+#.-]*) $")

// InputRules returns the "```lang " shortcut, which turns an otherwise empty
// paragraph into a code block.
func InputRules() []inputrule.Rule {
	return []inputrule.Rule{{
		Priority: 1,
		Transform: func(tx *doc.Txn, text doc.Key, offset int) bool {
			p, m := inputrule.MatchParagraphStart(tx, text, offset, fenceRule)
			if p == "" || tx.Node(text).Text() != m[0] || tx.ChildrenSize(p) != 1 {
				return false
			}
			k := CreateCodeBlock(tx, m[1], "")
			tx.Replace(p, k, false)
			tx.SelectStart(k)
			return true
		},
	}}
}
