package image

import (
	"regexp"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/dom"
)

var pixels = regexp.MustCompile(`^(\d+)(px)?$`)

// HTMLExtension converts img elements with a src.
func HTMLExtension() dom.Extension {
	return dom.Extension{
		Conversions: map[string][]dom.Conversion{
			"img": {{
				Match: func(n *html.Node) bool { return dom.Attr(n, "src") != "" },
				Convert: func(tx *doc.Txn, n *html.Node) *dom.Output {
					return &dom.Output{Nodes: []doc.Key{CreateImage(tx, dom.Attr(n, "src"), dom.Attr(n, "alt"), widthOf(n))}}
				},
			}},
		},
		Exports: map[string]dom.ExportFunc{
			TypeImage: func(tx *doc.Txn, k doc.Key) *html.Node {
				img := Of(tx, k)
				el := dom.NewElement(atom.Img,
					html.Attribute{Key: "src", Val: img.Src},
					html.Attribute{Key: "alt", Val: img.Alt},
				)
				if img.Width > 0 {
					dom.SetAttr(el, "width", strconv.Itoa(img.Width))
				}
				return el
			},
		},
	}
}

// widthOf reads the width attribute, falling back to a pixel width style.
func widthOf(n *html.Node) int {
	for _, v := range []string{dom.Attr(n, "width"), dom.Style(n)["width"]} {
		if m := pixels.FindStringSubmatch(v); m != nil {
			w, _ := strconv.Atoi(m[1])
			return w
		}
	}
	return 0
}
