package image

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/richdoc/internal/block"
	"github.com/dshills/richdoc/internal/doc"
)

// TypeImage is the node type of image blocks.
const TypeImage = "image"

// Image is the payload of image nodes.
type Image struct {
	Src string
	Alt string
	// Width is the display width in pixels; 0 means the natural width.
	Width int
}

// ClonePayload implements doc.Payload.
func (i *Image) ClonePayload() doc.Payload {
	c := *i
	return &c
}

// Class returns the class of image blocks.
func Class() doc.Class {
	return block.DecoratorBlockClass(doc.Class{
		Type:       TypeImage,
		NewPayload: func() doc.Payload { return &Image{} },
		ExportJSON: func(n *doc.Node, out map[string]any) {
			img := n.Payload().(*Image)
			out["src"] = img.Src
			out["altText"] = img.Alt
			out["width"] = img.Width
		},
		ImportJSON: func(tx *doc.Txn, k doc.Key, v gjson.Result) error {
			src := v.Get("src")
			if !src.Exists() {
				return fmt.Errorf("%w in node %s", ErrMissingSource, k)
			}
			width := int(v.Get("width").Int())
			if width < 0 {
				return fmt.Errorf("%w: %d", ErrInvalidWidth, width)
			}
			img := doc.WritablePayloadOf[*Image](tx, k)
			img.Src, img.Alt, img.Width = src.String(), v.Get("altText").String(), width
			return nil
		},
		CreateDecorator: func(n *doc.Node) map[string]any {
			img := n.Payload().(*Image)
			return map[string]any{
				"nodeKey": string(n.Key()),
				"src":     img.Src,
				"alt":     img.Alt,
				"width":   img.Width,
			}
		},
		UpdateDecorator: func(n *doc.Node, props map[string]any) bool {
			img := n.Payload().(*Image)
			if props["src"] != img.Src {
				return true
			}
			props["alt"] = img.Alt
			props["width"] = img.Width
			return false
		},
	})
}

// CreateImage creates a detached image block.
func CreateImage(tx *doc.Txn, src, alt string, width int) doc.Key {
	k := tx.CreateNode(TypeImage)
	img := doc.WritablePayloadOf[*Image](tx, k)
	img.Src, img.Alt, img.Width = src, alt, max(width, 0)
	return k
}

// IsImage reports whether k is an image block.
func IsImage(tx *doc.Txn, k doc.Key) bool { return tx.Is(k, TypeImage) }

// Of returns the payload of image k. The result must not be modified.
func Of(tx *doc.Txn, k doc.Key) *Image { return doc.PayloadOf[*Image](tx, k) }

// SetWidth changes the display width of image k.
func SetWidth(tx *doc.Txn, k doc.Key, width int) {
	doc.Assert(width >= 0, "negative image width %d", width)
	doc.WritablePayloadOf[*Image](tx, k).Width = width
}
