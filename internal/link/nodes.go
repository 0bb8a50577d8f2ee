package link

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/richdoc/internal/doc"
)

// TypeLink is the node type of links.
const TypeLink = "link"

// Link is the payload of link nodes.
type Link struct {
	URL   string
	Title string
}

// ClonePayload implements doc.Payload.
func (l *Link) ClonePayload() doc.Payload {
	c := *l
	return &c
}

// Class returns the class of link nodes.
func Class() doc.Class {
	return doc.Class{
		Type:            TypeLink,
		Kind:            doc.KindElement,
		Inline:          true,
		RemoveWhenEmpty: true,
		NewPayload:      func() doc.Payload { return &Link{} },
		Append: func(tx *doc.Txn, k doc.Key, children []doc.Key) {
			// Links do not nest: a nested link gives up its children.
			var flat []doc.Key
			for _, c := range children {
				if IsLink(tx, c) {
					flat = append(flat, tx.Children(c)...)
					continue
				}
				flat = append(flat, c)
			}
			tx.AppendBase(k, flat...)
		},
		ExportJSON: func(n *doc.Node, out map[string]any) {
			l := n.Payload().(*Link)
			out["url"] = l.URL
			if l.Title != "" {
				out["title"] = l.Title
			}
		},
		ImportJSON: func(tx *doc.Txn, k doc.Key, v gjson.Result) error {
			url := v.Get("url")
			if !url.Exists() {
				return fmt.Errorf("%w in node %s", ErrMissingURL, k)
			}
			l := doc.WritablePayloadOf[*Link](tx, k)
			l.URL = url.String()
			l.Title = v.Get("title").String()
			return nil
		},
	}
}

// CreateLink creates a detached, empty link.
func CreateLink(tx *doc.Txn, url, title string) doc.Key {
	k := tx.CreateNode(TypeLink)
	l := doc.WritablePayloadOf[*Link](tx, k)
	l.URL, l.Title = url, title
	return k
}

// IsLink reports whether k is a link.
func IsLink(tx *doc.Txn, k doc.Key) bool { return tx.Is(k, TypeLink) }

// URL returns the url of link k.
func URL(tx *doc.Txn, k doc.Key) string { return doc.PayloadOf[*Link](tx, k).URL }

// Title returns the title of link k.
func Title(tx *doc.Txn, k doc.Key) string { return doc.PayloadOf[*Link](tx, k).Title }

// Set changes the url and title of link k.
func Set(tx *doc.Txn, k doc.Key, url, title string) {
	l := doc.WritablePayloadOf[*Link](tx, k)
	l.URL, l.Title = url, title
}

// Unwrap moves the children of link k into its place and removes it.
func Unwrap(tx *doc.Txn, k doc.Key) {
	for _, c := range tx.Children(k) {
		tx.InsertBeforeBase(k, c)
	}
	tx.Remove(k)
}

// Of returns the link containing k, or "".
func Of(tx *doc.Txn, k doc.Key) doc.Key {
	for p := k; p != ""; p = tx.Parent(p) {
		if IsLink(tx, p) {
			return p
		}
		if !tx.IsInline(p) {
			return ""
		}
	}
	return ""
}
