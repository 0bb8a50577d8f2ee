package richtext

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/nodeutil"
)

// Node types.
const (
	TypeHeading        = "heading"
	TypeQuote          = "quote"
	TypeHorizontalRule = "horizontal-rule"
)

// Heading is the payload of heading nodes.
type Heading struct {
	// Tag is h1 through h6.
	Tag string
}

// ClonePayload implements doc.Payload.
func (h *Heading) ClonePayload() doc.Payload {
	c := *h
	return &c
}

// ValidHeadingTag reports whether tag is h1 through h6.
func ValidHeadingTag(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// HeadingLevel returns the level of a heading tag, 1 through 6.
func HeadingLevel(tag string) int {
	if !ValidHeadingTag(tag) {
		return 0
	}
	return int(tag[1] - '0')
}

// Classes returns the node classes of the package.
func Classes() []doc.Class {
	return []doc.Class{HeadingClass(), QuoteClass(), HorizontalRuleClass()}
}

// HeadingClass returns the class of heading nodes.
func HeadingClass() doc.Class {
	return block.ElementBlockClass(doc.Class{
		Type:       TypeHeading,
		NewPayload: func() doc.Payload { return &Heading{Tag: "h1"} },
		InsertNewAfter: func(tx *doc.Txn, k doc.Key, _ *doc.RangeSelection) doc.Key {
			p := tx.CreateParagraph()
			tx.InsertAfter(k, p)
			return p
		},
		CollapseAtStart: collapseToParagraph,
		ExportJSON: func(n *doc.Node, out map[string]any) {
			out["tag"] = n.Payload().(*Heading).Tag
		},
		ImportJSON: func(tx *doc.Txn, k doc.Key, v gjson.Result) error {
			tag := v.Get("tag").String()
			if !ValidHeadingTag(tag) {
				return fmt.Errorf("%w: %q", ErrInvalidHeading, tag)
			}
			doc.WritablePayloadOf[*Heading](tx, k).Tag = tag
			return nil
		},
	})
}

// QuoteClass returns the class of quote nodes. Quotes hold inline content
// only; appended blocks are flattened into lines.
func QuoteClass() doc.Class {
	return block.ElementBlockClass(doc.Class{
		Type: TypeQuote,
		Append: func(tx *doc.Txn, k doc.Key, children []doc.Key) {
			inlines := nodeutil.TransformToInlines(tx, children, true)
			if len(inlines) == 0 {
				return
			}
			if last := tx.LastChild(k); last != "" && !tx.IsLineBreak(last) && !tx.IsInline(children[0]) {
				inlines = append([]doc.Key{tx.CreateLineBreak()}, inlines...)
			}
			tx.AppendBase(k, inlines...)
		},
		InsertNewAfter: func(tx *doc.Txn, k doc.Key, _ *doc.RangeSelection) doc.Key {
			p := tx.CreateParagraph()
			tx.InsertAfter(k, p)
			return p
		},
		CollapseAtStart: collapseToParagraph,
	})
}

// HorizontalRuleClass returns the class of horizontal rules.
func HorizontalRuleClass() doc.Class {
	return block.DecoratorBlockClass(doc.Class{
		Type:        TypeHorizontalRule,
		TextContent: func(*doc.Txn, doc.Key) string { return "\n" },
		CreateDecorator: func(n *doc.Node) map[string]any {
			return map[string]any{"nodeKey": string(n.Key())}
		},
	})
}

// CreateHeading creates a detached heading. Invalid tags fall back to h1.
func CreateHeading(tx *doc.Txn, tag string) doc.Key {
	k := tx.CreateNode(TypeHeading)
	if ValidHeadingTag(tag) {
		doc.WritablePayloadOf[*Heading](tx, k).Tag = tag
	}
	return k
}

// HeadingTag returns the tag of heading k.
func HeadingTag(tx *doc.Txn, k doc.Key) string {
	return doc.PayloadOf[*Heading](tx, k).Tag
}

// CreateQuote creates a detached quote.
func CreateQuote(tx *doc.Txn) doc.Key { return tx.CreateNode(TypeQuote) }

// CreateHorizontalRule creates a detached horizontal rule.
func CreateHorizontalRule(tx *doc.Txn) doc.Key { return tx.CreateNode(TypeHorizontalRule) }

// collapseToParagraph replaces the block with a paragraph holding its
// children.
func collapseToParagraph(tx *doc.Txn, k doc.Key, _ *doc.RangeSelection) bool {
	p := tx.CreateParagraph()
	tx.SetFormat(p, tx.Node(k).Format())
	tx.Replace(k, p, true)
	return true
}
