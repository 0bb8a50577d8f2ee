package doc

import "strings"

// Key identifies a node within a document. Keys are stable across revisions.
type Key string

// RootKey is the key of the document root.
const RootKey Key = "root"

// Kind classifies nodes by their structural role.
type Kind uint8

const (
	KindRoot Kind = iota
	KindElement
	KindText
	KindLineBreak
	KindDecorator
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindLineBreak:
		return "linebreak"
	case KindDecorator:
		return "decorator"
	default:
		return "unknown"
	}
}

// IsElement reports whether nodes of this kind hold children.
func (k Kind) IsElement() bool {
	return k == KindRoot || k == KindElement
}

// BlockKind is the block variant a class plays. The set is closed.
type BlockKind uint8

const (
	// BlockNone marks classes that cannot be selected as a block.
	BlockNone BlockKind = iota
	// BlockElement marks element blocks such as headings and quotes.
	BlockElement
	// BlockParagraph marks the paragraph-like default block.
	BlockParagraph
	// BlockDecorator marks decorator blocks such as images.
	BlockDecorator
)

// TextFormat is a bitmask of inline text styles.
type TextFormat uint32

// Text format bits.
const (
	FormatBold TextFormat = 1 << iota
	FormatItalic
	FormatStrikethrough
	FormatUnderline
	FormatCode
	FormatSubscript
	FormatSuperscript
	FormatHighlight
)

var textFormatNames = []struct {
	name   string
	format TextFormat
}{
	{"bold", FormatBold},
	{"italic", FormatItalic},
	{"strikethrough", FormatStrikethrough},
	{"underline", FormatUnderline},
	{"code", FormatCode},
	{"subscript", FormatSubscript},
	{"superscript", FormatSuperscript},
	{"highlight", FormatHighlight},
}

// Has reports whether every bit of o is set.
func (f TextFormat) Has(o TextFormat) bool {
	return o != 0 && f&o == o
}

// Toggle flips the bits of o.
func (f TextFormat) Toggle(o TextFormat) TextFormat {
	return f ^ o
}

// String returns the names of the set bits joined by "|".
func (f TextFormat) String() string {
	var names []string
	for _, n := range textFormatNames {
		if f&n.format != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseTextFormat returns the format bit for a style name such as "bold".
func ParseTextFormat(name string) (TextFormat, bool) {
	for _, n := range textFormatNames {
		if n.name == name {
			return n.format, true
		}
	}
	return 0, false
}

// ElementFormat is the alignment of an element.
type ElementFormat string

// Element alignments.
const (
	AlignNone    ElementFormat = ""
	AlignLeft    ElementFormat = "left"
	AlignCenter  ElementFormat = "center"
	AlignRight   ElementFormat = "right"
	AlignJustify ElementFormat = "justify"
	AlignStart   ElementFormat = "start"
	AlignEnd     ElementFormat = "end"
)

// ParseElementFormat validates an alignment name. Unknown names map to AlignNone.
func ParseElementFormat(s string) ElementFormat {
	switch f := ElementFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify, AlignStart, AlignEnd:
		return f
	default:
		return AlignNone
	}
}
