package buffer

import "github.com/mattn/go-runewidth"

// Coord is a wrap-aware position relative to the first rune of the buffer.
type Coord struct {
	Col int
	Row int
}

// Buffer is the text being edited at the prompt.
type Buffer struct {
	runes     []rune
	cursor    int
	wrapWidth int
}

func New(wrapWidth int) *Buffer {
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	return &Buffer{wrapWidth: wrapWidth}
}

// FromString creates a buffer holding s with the cursor at position 0.
func FromString(s string, wrapWidth int) *Buffer {
	b := New(wrapWidth)
	b.runes = []rune(s)
	return b
}

func (b *Buffer) WrapWidth() int { return b.wrapWidth }
func (b *Buffer) Cursor() int    { return b.cursor }
func (b *Buffer) Len() int       { return len(b.runes) }
func (b *Buffer) IsEmpty() bool  { return len(b.runes) == 0 }
func (b *Buffer) IsAtStart() bool {
	return b.cursor == 0
}
func (b *Buffer) IsAtEnd() bool {
	return b.cursor == len(b.runes)
}

func (b *Buffer) Insert(r rune) {
	b.runes = append(b.runes, 0)
	copy(b.runes[b.cursor+1:], b.runes[b.cursor:])
	b.runes[b.cursor] = r
	b.cursor++
}

func (b *Buffer) InsertString(s string) {
	for _, r := range s {
		b.Insert(r)
	}
}

// RemoveCurrent deletes the rune under the cursor. The cursor stays put and
// the following text shifts left.
func (b *Buffer) RemoveCurrent() (rune, bool) {
	if b.cursor >= len(b.runes) {
		return 0, false
	}
	r := b.runes[b.cursor]
	b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
	return r, true
}

func (b *Buffer) MoveForward() {
	if b.cursor < len(b.runes) {
		b.cursor++
	}
}

func (b *Buffer) MoveBackward() {
	if b.cursor > 0 {
		b.cursor--
	}
}

func (b *Buffer) GotoStart() { b.cursor = 0 }
func (b *Buffer) GotoEnd()   { b.cursor = len(b.runes) }

// SetCursor moves the cursor to pos, clamped to the buffer bounds.
func (b *Buffer) SetCursor(pos int) {
	b.cursor = b.clamp(pos)
}

func (b *Buffer) Clear() {
	b.runes = b.runes[:0]
	b.cursor = 0
}

func (b *Buffer) Previous() (rune, bool) {
	return b.at(b.cursor - 1)
}

func (b *Buffer) Current() (rune, bool) {
	return b.at(b.cursor)
}

func (b *Buffer) Next() (rune, bool) {
	return b.at(b.cursor + 1)
}

func (b *Buffer) Last() (rune, bool) {
	return b.at(len(b.runes) - 1)
}

func (b *Buffer) at(i int) (rune, bool) {
	if i < 0 || i >= len(b.runes) {
		return 0, false
	}
	return b.runes[i], true
}

// IsAtLineStart reports whether input at the cursor would begin a line:
// the buffer is empty or the previous rune is a newline or a tab.
func (b *Buffer) IsAtLineStart() bool {
	if b.IsEmpty() {
		return true
	}
	prev, ok := b.Previous()
	return ok && (prev == '\n' || prev == '\t')
}

// Width is the number of columns r takes on screen. Tabs are drawn as a
// single space.
func Width(r rune) int {
	if r == '\t' {
		return 1
	}
	return runewidth.RuneWidth(r)
}

// PositionToCoord translates a buffer index into a column/row pair. Explicit
// newlines start a new row, and so does reaching the wrap width. A wide rune
// that does not fit the rest of a row moves to the next one.
func (b *Buffer) PositionToCoord(pos int) Coord {
	pos = b.clamp(pos)
	var c Coord
	for i := 0; i < pos; i++ {
		if b.runes[i] == '\n' {
			c.Col = 0
			c.Row++
			continue
		}
		w := Width(b.runes[i])
		if c.Col > 0 && c.Col+w > b.wrapWidth {
			c.Col = 0
			c.Row++
		}
		c.Col += w
		if c.Col == b.wrapWidth {
			c.Col = 0
			c.Row++
		}
	}
	return c
}

func (b *Buffer) CursorCoord() Coord {
	return b.PositionToCoord(b.cursor)
}

func (b *Buffer) LastCoord() Coord {
	return b.PositionToCoord(len(b.runes))
}

func (b *Buffer) String() string {
	return string(b.runes)
}

// Runes returns a copy of the content.
func (b *Buffer) Runes() []rune {
	out := make([]rune, len(b.runes))
	copy(out, b.runes)
	return out
}

// Rewrap returns a buffer with the same content and cursor but a new wrap
// width. The receiver is left untouched.
func (b *Buffer) Rewrap(wrapWidth int) *Buffer {
	nb := New(wrapWidth)
	nb.runes = b.Runes()
	nb.cursor = b.cursor
	return nb
}

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.runes) {
		return len(b.runes)
	}
	return pos
}
