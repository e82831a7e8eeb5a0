// Package printer holds classified output: text fragments tagged with what
// they are, leaving how they look to the renderer.
package printer

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

type Class int

const (
	ClassEvaluation Class = iota
	ClassOk
	ClassWarning
	ClassRawOutput
	ClassShellOutput
	ClassError
	ClassNewLine
	ClassCustom
)

var classNames = [...]string{
	ClassEvaluation:  "evaluation",
	ClassOk:          "ok",
	ClassWarning:     "warning",
	ClassRawOutput:   "raw-output",
	ClassShellOutput: "shell",
	ClassError:       "error",
	ClassNewLine:     "newline",
	ClassCustom:      "custom",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Item is one fragment of a render batch. Color is only meaningful for
// ClassCustom items with HasColor set. A Custom item without a color takes
// the palette default, while Custom(text, tcell.ColorDefault) asks for the
// terminal's own foreground.
type Item struct {
	Text     string
	Class    Class
	Color    tcell.Color
	HasColor bool
}

func NewItem(text string, class Class) Item {
	return Item{Text: text, Class: class}
}

func Custom(text string, color tcell.Color) Item {
	return Item{Text: text, Class: ClassCustom, Color: color, HasColor: true}
}

func NewLine() Item {
	return Item{Class: ClassNewLine}
}

func (i Item) IsNewLine() bool {
	return i.Class == ClassNewLine
}

// Batch is a single-pass queue of items. Next consumes from the front.
type Batch struct {
	items []Item
	head  int
}

// New returns a batch holding a single item.
func New(item Item) *Batch {
	return &Batch{items: []Item{item}}
}

func Empty() *Batch {
	return &Batch{}
}

// FromString splits s on newlines into Custom(None) items separated by
// NewLine items. The trailing NewLine is kept only when s ends with '\n'.
func FromString(s string) *Batch {
	return FromStringClass(s, ClassCustom)
}

// FromStringClass is FromString with every text item tagged class.
func FromStringClass(s string, class Class) *Batch {
	b := Empty()
	if s == "" {
		return b
	}
	lines := strings.Split(s, "\n")
	if strings.HasSuffix(s, "\n") {
		lines = lines[:len(lines)-1]
	}
	for _, line := range lines {
		b.Push(NewItem(line, class))
		b.AddNewLines(1)
	}
	if !strings.HasSuffix(s, "\n") {
		b.Pop()
	}
	return b
}

func (b *Batch) Push(item Item) {
	if item.Class == ClassNewLine {
		item.Text = ""
	}
	b.items = append(b.items, item)
}

func (b *Batch) AddNewLines(n int) {
	for i := 0; i < n; i++ {
		b.items = append(b.items, NewLine())
	}
}

// Append moves every remaining item of other onto the end of b, leaving
// other empty.
func (b *Batch) Append(other *Batch) {
	if other == nil {
		return
	}
	for {
		item, ok := other.Next()
		if !ok {
			return
		}
		b.items = append(b.items, item)
	}
}

// Pop removes the last item.
func (b *Batch) Pop() (Item, bool) {
	if b.Len() == 0 {
		return Item{}, false
	}
	last := b.items[len(b.items)-1]
	b.items = b.items[:len(b.items)-1]
	return last, true
}

// Next removes and returns the first remaining item.
func (b *Batch) Next() (Item, bool) {
	if b.Len() == 0 {
		return Item{}, false
	}
	item := b.items[b.head]
	b.items[b.head] = Item{}
	b.head++
	if b.head == len(b.items) {
		b.items = b.items[:0]
		b.head = 0
	}
	return item, true
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items) - b.head
}

func (b *Batch) IsEmpty() bool {
	return b.Len() == 0
}

// CountNewLines counts the remaining NewLine items without consuming them.
func (b *Batch) CountNewLines() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, item := range b.items[b.head:] {
		if item.Class == ClassNewLine {
			n++
		}
	}
	return n
}

// Text drains the batch and joins the text items, turning NewLine items
// back into '\n'.
func (b *Batch) Text() string {
	var sb strings.Builder
	for {
		item, ok := b.Next()
		if !ok {
			return sb.String()
		}
		if item.Class == ClassNewLine {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(item.Text)
	}
}
