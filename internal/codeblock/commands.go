package codeblock

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/nodeutil"
)

// InsertCodeBlock inserts an empty code block of the given language at the
// selection. A selected text range becomes the code.
var InsertCodeBlock = doc.NewCommand[string]("INSERT_CODE_BLOCK")

// Edit is the payload of SET_CODE.
type Edit struct {
	Node     doc.Key
	Language string
	Code     string
}

// SetCodeCommand replaces the language and code of a code block. It is
// dispatched by the block's view.
var SetCodeCommand = doc.NewCommand[Edit]("SET_CODE")

// Register installs the code block commands on d.
func Register(d *doc.Document) func() {
	logger := d.Logger().Named("codeblock")
	return doc.MergeRegister(
		doc.RegisterCommand(d, InsertCodeBlock, func(tx *doc.Txn, lang string) bool {
			var code string
			sel := tx.Selection()
			if rs, ok := sel.(*doc.RangeSelection); ok && !rs.IsCollapsed() {
				code = rs.TextContent(tx)
			}
			k := CreateCodeBlock(tx, lang, code)
			if nodeutil.TryInsertBlock(tx, k, sel) == "" {
				tx.Append(doc.RootKey, k)
			}
			tx.SelectStart(k)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, SetCodeCommand, func(tx *doc.Txn, e Edit) bool {
			if !IsCodeBlock(tx, e.Node) {
				logger.Warn("code edit dropped", zap.Error(fmt.Errorf("%w: %s", ErrNotCodeBlock, e.Node)))
				return false
			}
			c := doc.WritablePayloadOf[*CodeBlock](tx, e.Node)
			c.Language, c.Code = e.Language, e.Code
			return true
		}, doc.PriorityEditor),
	)
}
