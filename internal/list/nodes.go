package list

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
)

// Node types.
const (
	TypeList          = "list"
	TypeListItem      = "listitem"
	TypeListParagraph = "list-paragraph"
)

// Type is the kind of a list.
type Type string

// List types.
const (
	Bullet Type = "bullet"
	Number Type = "number"
	Check  Type = "check"
)

// Valid reports whether t is a known list type.
func (t Type) Valid() bool {
	switch t {
	case Bullet, Number, Check:
		return true
	}
	return false
}

// Tag returns the HTML tag of lists of type t.
func (t Type) Tag() string {
	if t == Number {
		return "ol"
	}
	return "ul"
}

// List is the payload of list nodes.
type List struct {
	Type  Type
	Start int
}

// ClonePayload implements doc.Payload.
func (l *List) ClonePayload() doc.Payload {
	c := *l
	return &c
}

// Item is the payload of list items. Value is set in numbered lists, Checked
// in check lists.
type Item struct {
	Value   *int
	Checked *bool
}

// ClonePayload implements doc.Payload.
func (it *Item) ClonePayload() doc.Payload {
	c := Item{}
	if it.Value != nil {
		v := *it.Value
		c.Value = &v
	}
	if it.Checked != nil {
		v := *it.Checked
		c.Checked = &v
	}
	return &c
}

// Classes returns the node classes of the package.
func Classes() []doc.Class {
	return []doc.Class{ListClass(), ItemClass(), ParagraphClass()}
}

// ListClass returns the class of list nodes.
func ListClass() doc.Class {
	return doc.Class{
		Type:            TypeList,
		Kind:            doc.KindElement,
		RemoveWhenEmpty: true,
		NewPayload:      func() doc.Payload { return &List{Type: Bullet, Start: 1} },
		Append:          appendToList,
		Transform:       normalizeList,
		ExportJSON: func(n *doc.Node, out map[string]any) {
			l := n.Payload().(*List)
			out["listType"] = string(l.Type)
			out["start"] = l.Start
			out["tag"] = l.Type.Tag()
		},
		ImportJSON: func(tx *doc.Txn, k doc.Key, v gjson.Result) error {
			t := Type(v.Get("listType").String())
			if !t.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidListType, t)
			}
			l := doc.WritablePayloadOf[*List](tx, k)
			l.Type = t
			if start := v.Get("start"); start.Exists() {
				l.Start = int(start.Int())
			}
			return nil
		},
	}
}

// ItemClass returns the class of list items.
func ItemClass() doc.Class {
	c := block.ElementBlockClass(doc.Class{
		Type:           TypeListItem,
		ParentRequired: true,
		CreateParent: func(tx *doc.Txn, item doc.Key) doc.Key {
			return CreateList(tx, InferType(tx, item), 1)
		},
		NewPayload:      func() doc.Payload { return &Item{} },
		Append:          appendToItem,
		InsertAfter:     insertAfterItem,
		InsertBefore:    insertBeforeItem,
		Replace:         replaceItem,
		InsertNewAfter:  insertNewItem,
		CollapseAtStart: collapseItem,
		Indent:          itemIndent,
		SetIndent:       setItemIndent,
		SelectStart: func(tx *doc.Txn, k doc.Key) doc.Selection {
			if first := tx.FirstChild(k); first != "" {
				return tx.SelectStart(first)
			}
			return tx.SelectStartBase(k)
		},
		SelectEnd: func(tx *doc.Txn, k doc.Key) doc.Selection {
			if last := tx.LastChild(k); last != "" {
				return tx.SelectEnd(last)
			}
			return tx.SelectEndBase(k)
		},
		Transform: normalizeItem,
		ExportJSON: func(n *doc.Node, out map[string]any) {
			it := n.Payload().(*Item)
			if it.Checked != nil {
				out["checked"] = *it.Checked
			}
			if it.Value != nil {
				out["value"] = *it.Value
			}
		},
		ImportJSON: func(tx *doc.Txn, k doc.Key, v gjson.Result) error {
			it := doc.WritablePayloadOf[*Item](tx, k)
			if c := v.Get("checked"); c.IsBool() {
				b := c.Bool()
				it.Checked = &b
			}
			if val := v.Get("value"); val.Type == gjson.Number {
				n := int(val.Int())
				it.Value = &n
			}
			return nil
		},
	})
	// The indent of an item is its nesting depth.
	c.CanIndent = true
	return c
}

// ParagraphClass returns the class of list paragraphs. Indent and splitting
// act on the enclosing item.
func ParagraphClass() doc.Class {
	return doc.Class{
		Type:      TypeListParagraph,
		Kind:      doc.KindElement,
		CanIndent: true,
		Indent: func(tx *doc.Txn, k doc.Key) int {
			return tx.Indent(parentItem(tx, k))
		},
		SetIndent: func(tx *doc.Txn, k doc.Key, level int) {
			tx.SetIndent(parentItem(tx, k), level)
		},
		InsertNewAfter: func(tx *doc.Txn, k doc.Key, sel *doc.RangeSelection) doc.Key {
			return tx.InsertNewAfter(parentItem(tx, k), sel)
		},
		CollapseAtStart: func(tx *doc.Txn, k doc.Key, sel *doc.RangeSelection) bool {
			return tx.CollapseAtStart(parentItem(tx, k), sel)
		},
	}
}

func parentItem(tx *doc.Txn, k doc.Key) doc.Key {
	item := tx.Parent(k)
	doc.Assert(IsItem(tx, item), "list paragraph %q is not inside a list item", k)
	return item
}

// IsList reports whether k is a list.
func IsList(tx *doc.Txn, k doc.Key) bool { return k != "" && tx.Is(k, TypeList) }

// IsItem reports whether k is a list item.
func IsItem(tx *doc.Txn, k doc.Key) bool { return k != "" && tx.Is(k, TypeListItem) }

// IsParagraph reports whether k is a list paragraph.
func IsParagraph(tx *doc.Txn, k doc.Key) bool { return k != "" && tx.Is(k, TypeListParagraph) }

// CreateList creates a detached list.
func CreateList(tx *doc.Txn, t Type, start int) doc.Key {
	k := tx.CreateNode(TypeList)
	l := doc.WritablePayloadOf[*List](tx, k)
	if t.Valid() {
		l.Type = t
	}
	l.Start = start
	return k
}

// CreateItem creates a detached list item. A non-nil checked makes it a
// check list item.
func CreateItem(tx *doc.Txn, checked *bool) doc.Key {
	k := tx.CreateNode(TypeListItem)
	if checked != nil {
		v := *checked
		doc.WritablePayloadOf[*Item](tx, k).Checked = &v
	}
	return k
}

// CreateParagraph creates a detached list paragraph.
func CreateParagraph(tx *doc.Txn) doc.Key { return tx.CreateNode(TypeListParagraph) }

// ListType returns the type of list k.
func ListType(tx *doc.Txn, k doc.Key) Type { return doc.PayloadOf[*List](tx, k).Type }

// Start returns the first number of list k.
func Start(tx *doc.Txn, k doc.Key) int { return doc.PayloadOf[*List](tx, k).Start }

// SetListType changes the type of list k. Item values and checks follow on
// the next normalization.
func SetListType(tx *doc.Txn, k doc.Key, t Type) {
	if ListType(tx, k) == t || !t.Valid() {
		return
	}
	doc.WritablePayloadOf[*List](tx, k).Type = t
}

// ItemOf returns the payload of item k.
func ItemOf(tx *doc.Txn, k doc.Key) *Item { return doc.PayloadOf[*Item](tx, k) }

// SetChecked sets or clears the check mark of item k.
func SetChecked(tx *doc.Txn, k doc.Key, checked *bool) {
	cur := ItemOf(tx, k).Checked
	if (cur == nil && checked == nil) || (cur != nil && checked != nil && *cur == *checked) {
		return
	}
	it := doc.WritablePayloadOf[*Item](tx, k)
	if checked == nil {
		it.Checked = nil
		return
	}
	v := *checked
	it.Checked = &v
}

// SetValue sets or clears the number of item k.
func SetValue(tx *doc.Txn, k doc.Key, value *int) {
	cur := ItemOf(tx, k).Value
	if (cur == nil && value == nil) || (cur != nil && value != nil && *cur == *value) {
		return
	}
	it := doc.WritablePayloadOf[*Item](tx, k)
	if value == nil {
		it.Value = nil
		return
	}
	v := *value
	it.Value = &v
}

// InferType guesses the list type of an item from its payload.
func InferType(tx *doc.Txn, item doc.Key) Type {
	it := ItemOf(tx, item)
	switch {
	case it.Checked != nil:
		return Check
	case it.Value != nil:
		return Number
	}
	return Bullet
}

// Depth returns the number of list items enclosing list k.
func Depth(tx *doc.Txn, k doc.Key) int {
	depth := 0
	for parent := tx.Parent(k); IsItem(tx, parent); {
		depth++
		l := tx.Parent(parent)
		doc.Assert(IsList(tx, l), "parent of list item %q must be a list", parent)
		parent = tx.Parent(l)
	}
	return depth
}

func boolPtr(b bool) *bool { return &b }
