package image

import (
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/nodeutil"
)

// InsertPayload is the payload of INSERT_IMAGE.
type InsertPayload struct {
	Src   string
	Alt   string
	Width int
}

// ResizePayload is the payload of RESIZE_IMAGE.
type ResizePayload struct {
	Node  doc.Key
	Width int
}

var (
	// InsertImage inserts an image block at the selection.
	InsertImage = doc.NewCommand[InsertPayload]("INSERT_IMAGE")
	// ResizeImage changes the width of an image block.
	ResizeImage = doc.NewCommand[ResizePayload]("RESIZE_IMAGE")
)

// Register installs the image commands on d.
func Register(d *doc.Document) func() {
	return doc.MergeRegister(
		doc.RegisterCommand(d, InsertImage, func(tx *doc.Txn, p InsertPayload) bool {
			if p.Src == "" {
				return false
			}
			k := CreateImage(tx, p.Src, p.Alt, p.Width)
			if nodeutil.TryInsertBlock(tx, k, tx.Selection()) == "" {
				tx.Append(doc.RootKey, k)
			}
			tx.SelectStart(k)
			return true
		}, doc.PriorityEditor),
		doc.RegisterCommand(d, ResizeImage, func(tx *doc.Txn, p ResizePayload) bool {
			if !IsImage(tx, p.Node) || p.Width < 0 {
				return false
			}
			SetWidth(tx, p.Node, p.Width)
			return true
		}, doc.PriorityEditor),
	)
}
