package list

import (
	"regexp"
	"strconv"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/inputrule"
)

var (
	bulletRule = regexp.MustCompile(`^ ?[-*+] $`)
	numberRule = regexp.MustCompile(`^ ?(\d+)\. $`)
	checkRule  = regexp.MustCompile(`^ ?\[([ xX]?)\] $`)
)

// InputRules returns the shortcuts turning a paragraph into a list: "- ",
// "1. " and "[ ] ".
func InputRules() []inputrule.Rule {
	return []inputrule.Rule{
		{Transform: func(tx *doc.Txn, text doc.Key, offset int) bool {
			p, m := inputrule.MatchParagraphStart(tx, text, offset, bulletRule)
			if p == "" {
				return false
			}
			inputrule.TrimMatch(tx, text, m[0])
			replaceWithList(tx, p, CreateList(tx, Bullet, 1), nil)
			return true
		}},
		{Transform: func(tx *doc.Txn, text doc.Key, offset int) bool {
			p, m := inputrule.MatchParagraphStart(tx, text, offset, numberRule)
			if p == "" {
				return false
			}
			start, err := strconv.Atoi(m[1])
			if err != nil {
				return false
			}
			inputrule.TrimMatch(tx, text, m[0])
			replaceWithList(tx, p, CreateList(tx, Number, start), nil)
			return true
		}},
		{Transform: func(tx *doc.Txn, text doc.Key, offset int) bool {
			p, m := inputrule.MatchParagraphStart(tx, text, offset, checkRule)
			if p == "" {
				return false
			}
			inputrule.TrimMatch(tx, text, m[0])
			replaceWithList(tx, p, CreateList(tx, Check, 1), boolPtr(m[1] == "x" || m[1] == "X"))
			return true
		}},
	}
}

// replaceWithList moves the content of block into the first item of list,
// puts list in place of block and places the caret at the item start.
func replaceWithList(tx *doc.Txn, block, list doc.Key, checked *bool) {
	item := CreateItem(tx, checked)
	lp := CreateParagraph(tx)
	tx.AppendBase(item, lp)
	tx.AppendBase(list, item)
	if content := tx.Children(block); len(content) > 0 {
		tx.AppendBase(lp, content...)
	}
	tx.Replace(block, list, false)
	tx.Select(lp, 0, 0)
}
