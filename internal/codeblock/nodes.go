package codeblock

import (
	"github.com/tidwall/gjson"

	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
)

// TypeCodeBlock is the node type of code blocks.
const TypeCodeBlock = "code-block"

// CodeBlock is the payload of code block nodes.
type CodeBlock struct {
	Language string
	Code     string
}

// ClonePayload implements doc.Payload.
func (c *CodeBlock) ClonePayload() doc.Payload {
	cp := *c
	return &cp
}

// Class returns the class of code blocks.
func Class() doc.Class {
	return block.DecoratorBlockClass(doc.Class{
		Type:       TypeCodeBlock,
		NewPayload: func() doc.Payload { return &CodeBlock{} },
		TextContent: func(tx *doc.Txn, k doc.Key) string {
			return Code(tx, k)
		},
		ExportJSON: func(n *doc.Node, out map[string]any) {
			c := n.Payload().(*CodeBlock)
			out["language"] = c.Language
			out["code"] = c.Code
		},
		ImportJSON: func(tx *doc.Txn, k doc.Key, v gjson.Result) error {
			c := doc.WritablePayloadOf[*CodeBlock](tx, k)
			c.Language = v.Get("language").String()
			c.Code = v.Get("code").String()
			return nil
		},
		CreateDecorator: func(n *doc.Node) map[string]any {
			c := n.Payload().(*CodeBlock)
			return map[string]any{
				"nodeKey":  string(n.Key()),
				"language": c.Language,
				"code":     c.Code,
			}
		},
		// A new language needs a new highlighter; code edits are patched.
		UpdateDecorator: func(n *doc.Node, props map[string]any) bool {
			c := n.Payload().(*CodeBlock)
			if props["language"] != c.Language {
				return true
			}
			props["code"] = c.Code
			return false
		},
	})
}

// CreateCodeBlock creates a detached code block.
func CreateCodeBlock(tx *doc.Txn, language, code string) doc.Key {
	k := tx.CreateNode(TypeCodeBlock)
	c := doc.WritablePayloadOf[*CodeBlock](tx, k)
	c.Language, c.Code = language, code
	return k
}

// IsCodeBlock reports whether k is a code block.
func IsCodeBlock(tx *doc.Txn, k doc.Key) bool { return tx.Is(k, TypeCodeBlock) }

// Language returns the language of code block k.
func Language(tx *doc.Txn, k doc.Key) string {
	return doc.PayloadOf[*CodeBlock](tx, k).Language
}

// Code returns the source text of code block k.
func Code(tx *doc.Txn, k doc.Key) string {
	return doc.PayloadOf[*CodeBlock](tx, k).Code
}

// SetLanguage changes the language of code block k.
func SetLanguage(tx *doc.Txn, k doc.Key, language string) {
	doc.WritablePayloadOf[*CodeBlock](tx, k).Language = language
}

// SetCode replaces the source text of code block k.
func SetCode(tx *doc.Txn, k doc.Key, code string) {
	doc.WritablePayloadOf[*CodeBlock](tx, k).Code = code
}
