package doc

// KeyEvent describes a key press delivered to a key command.
type KeyEvent struct {
	Key   string
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

// DataTransfer carries clipboard data keyed by MIME type.
type DataTransfer struct {
	data  map[string]string
	order []string
}

// NewDataTransfer creates an empty data transfer.
func NewDataTransfer() *DataTransfer {
	return &DataTransfer{data: make(map[string]string)}
}

// Set stores data for a MIME type.
func (d *DataTransfer) Set(mime, value string) {
	if _, ok := d.data[mime]; !ok {
		d.order = append(d.order, mime)
	}
	d.data[mime] = value
}

// Get returns the data for a MIME type.
func (d *DataTransfer) Get(mime string) (string, bool) {
	v, ok := d.data[mime]
	return v, ok
}

// Types returns the stored MIME types in insertion order.
func (d *DataTransfer) Types() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// InsertNodesPayload is the payload of SelectionInsertClipboardNodes.
type InsertNodesPayload struct {
	Nodes     []Key
	Selection Selection
}

// Built-in commands.
var (
	SelectionChange = NewCommand[struct{}]("SELECTION_CHANGE")

	KeyArrowUp    = NewCommand[KeyEvent]("KEY_ARROW_UP")
	KeyArrowDown  = NewCommand[KeyEvent]("KEY_ARROW_DOWN")
	KeyArrowLeft  = NewCommand[KeyEvent]("KEY_ARROW_LEFT")
	KeyArrowRight = NewCommand[KeyEvent]("KEY_ARROW_RIGHT")
	KeyBackspace  = NewCommand[KeyEvent]("KEY_BACKSPACE")
	KeyDelete     = NewCommand[KeyEvent]("KEY_DELETE")
	KeyEnter      = NewCommand[KeyEvent]("KEY_ENTER")
	KeyTab        = NewCommand[KeyEvent]("KEY_TAB")
	KeyEscape     = NewCommand[KeyEvent]("KEY_ESCAPE")

	SelectAll = NewCommand[struct{}]("SELECT_ALL")
	Copy      = NewCommand[*DataTransfer]("COPY")
	Cut       = NewCommand[*DataTransfer]("CUT")
	Paste     = NewCommand[*DataTransfer]("PASTE")

	FormatText      = NewCommand[TextFormat]("FORMAT_TEXT")
	FormatElement   = NewCommand[ElementFormat]("FORMAT_ELEMENT")
	InsertText      = NewCommand[string]("INSERT_TEXT")
	InsertLineBreak = NewCommand[bool]("INSERT_LINE_BREAK")
	InsertParagraph = NewCommand[struct{}]("INSERT_PARAGRAPH")
	RemoveText      = NewCommand[struct{}]("REMOVE_TEXT")
	DeleteCharacter = NewCommand[bool]("DELETE_CHARACTER")
	IndentContent   = NewCommand[struct{}]("INDENT_CONTENT")
	OutdentContent  = NewCommand[struct{}]("OUTDENT_CONTENT")

	SelectionInsertClipboardNodes = NewCommand[InsertNodesPayload]("SELECTION_INSERT_CLIPBOARD_NODES")
)
