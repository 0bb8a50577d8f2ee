package doc

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ExportNode serializes a node and its descendants.
func (tx *Txn) ExportNode(k Key) map[string]any {
	n := tx.MustNode(k)
	c := tx.Class(k)
	Assert(c != nil, "ExportNode: type %q is not registered", n.typ)

	out := map[string]any{
		"type":    n.typ,
		"version": c.version(),
	}
	switch n.kind {
	case KindText:
		out["text"] = n.text
		out["format"] = int(n.textFormat)
		out["style"] = n.style
		out["detail"] = 0
		out["mode"] = "normal"
	case KindRoot, KindElement:
		children := make([]any, 0, len(n.children))
		for _, ck := range n.children {
			children = append(children, tx.ExportNode(ck))
		}
		out["children"] = children
		out["format"] = string(n.format)
		out["indent"] = n.indent
		var dir any
		if n.direction != "" {
			dir = n.direction
		}
		out["direction"] = dir
	}
	if c.ExportJSON != nil {
		c.ExportJSON(n, out)
	}
	return out
}

// ExportJSON serializes the whole document as {"root": {...}}.
func (tx *Txn) ExportJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"root": tx.ExportNode(RootKey)})
}

// ExportJSON serializes the committed document. With indent the output is
// pretty printed.
func (d *Document) ExportJSON(indent bool) ([]byte, error) {
	var data []byte
	err := d.Read(func(tx *Txn) error {
		var err error
		data, err = tx.ExportJSON()
		return err
	})
	if err != nil {
		return nil, err
	}
	if indent {
		data = pretty.Pretty(data)
	}
	return data, nil
}

// ImportNode creates a detached node tree from serialized JSON.
func (tx *Txn) ImportNode(v gjson.Result) (Key, error) {
	return tx.importNode(v, "")
}

// ImportNodes creates detached nodes from a JSON array of serialized nodes.
func (tx *Txn) ImportNodes(v gjson.Result) ([]Key, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of nodes", ErrInvalidJSON)
	}
	var keys []Key
	for i, item := range v.Array() {
		k, err := tx.importNode(item, fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (tx *Txn) importNode(v gjson.Result, path string) (Key, error) {
	if !v.IsObject() {
		return "", &JSONError{Path: path, Err: fmt.Errorf("%w: expected an object", ErrInvalidJSON)}
	}
	typ := v.Get("type").String()
	c, ok := tx.doc.registry.Lookup(typ)
	if !ok {
		return "", &JSONError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownType, typ)}
	}
	if c.Kind == KindRoot {
		return "", &JSONError{Path: path, Err: fmt.Errorf("%w: nested root", ErrInvalidJSON)}
	}

	k := tx.CreateNode(typ)
	n := tx.pending[k]
	switch c.Kind {
	case KindText:
		n.text = v.Get("text").String()
		n.textFormat = TextFormat(v.Get("format").Uint())
		n.style = v.Get("style").String()
	case KindElement:
		tx.applyElementJSON(n, v)
	}
	if c.ImportJSON != nil {
		if err := c.ImportJSON(tx, k, v); err != nil {
			return "", &JSONError{Path: path, Err: err}
		}
	}
	if c.Kind == KindElement {
		for i, child := range v.Get("children").Array() {
			ck, err := tx.importNode(child, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return "", err
			}
			tx.Append(k, ck)
		}
	}
	return k, nil
}

func (tx *Txn) applyElementJSON(n *Node, v gjson.Result) {
	n.format = ElementFormat(v.Get("format").String())
	n.indent = int(v.Get("indent").Int())
	if d := v.Get("direction"); d.Type == gjson.String {
		n.direction = d.String()
	}
}

// ImportJSON replaces the content of the root with a serialized document.
// Both {"root": {...}} and a bare root node are accepted.
func (tx *Txn) ImportJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed document", ErrInvalidJSON)
	}
	root := gjson.GetBytes(data, "root")
	if !root.Exists() {
		root = gjson.ParseBytes(data)
	}
	if root.Get("type").String() != TypeRoot {
		return fmt.Errorf("%w: missing root node", ErrInvalidJSON)
	}

	var children []Key
	for i, child := range root.Get("children").Array() {
		k, err := tx.importNode(child, fmt.Sprintf("root.children[%d]", i))
		if err != nil {
			return err
		}
		children = append(children, k)
	}
	tx.Clear(RootKey)
	tx.applyElementJSON(tx.Writable(RootKey), root)
	if len(children) > 0 {
		tx.Append(RootKey, children...)
	}
	tx.SetSelection(nil)
	return nil
}
