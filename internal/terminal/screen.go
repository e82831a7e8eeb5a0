package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Screen implements Terminal on top of a tcell.Screen, emulating a plain
// scrolling terminal inside the cell grid.
type Screen struct {
	screen tcell.Screen
	x, y   int
	style  tcell.Style
	hidden bool
}

func NewScreen(s tcell.Screen) *Screen {
	return &Screen{screen: s, style: tcell.StyleDefault}
}

// Position reports where the next rune will be written.
func (t *Screen) Position() (col, row int) {
	return t.x, t.y
}

func (t *Screen) Size() (int, int, error) {
	w, h := t.screen.Size()
	return w, h, nil
}

func (t *Screen) Write(s string) error {
	w, _ := t.screen.Size()
	for _, r := range s {
		if r == '\t' {
			r = ' '
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		// Pending wrap: a full row only wraps once more text arrives.
		if t.x+rw > w {
			t.lineFeed()
		}
		t.screen.SetContent(t.x, t.y, r, nil, t.style)
		t.x += rw
	}
	t.syncCursor()
	return nil
}

func (t *Screen) LineFeed() error {
	t.lineFeed()
	t.syncCursor()
	return nil
}

func (t *Screen) lineFeed() {
	_, h := t.screen.Size()
	t.x = 0
	if t.y >= h-1 {
		t.scroll(1)
		return
	}
	t.y++
}

func (t *Screen) MoveTo(col, row int) error {
	w, h := t.screen.Size()
	t.x = clamp(col, 0, w)
	t.y = clamp(row, 0, h-1)
	t.syncCursor()
	return nil
}

func (t *Screen) Clear(ct ClearType) error {
	w, h := t.screen.Size()
	switch ct {
	case ClearAll:
		t.screen.Clear()
		t.x, t.y = 0, 0
	case ClearFromCursorDown:
		t.clearRow(t.y, t.x, w)
		for y := t.y + 1; y < h; y++ {
			t.clearRow(y, 0, w)
		}
	case ClearUntilNewLine:
		t.clearRow(t.y, t.x, w)
	}
	return nil
}

func (t *Screen) clearRow(y, from, w int) {
	for x := from; x < w; x++ {
		t.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}

func (t *Screen) ScrollUp(n int) error {
	t.scroll(n)
	return nil
}

func (t *Screen) scroll(n int) {
	w, h := t.screen.Size()
	if n <= 0 {
		return
	}
	if n > h {
		n = h
	}
	for y := 0; y < h-n; y++ {
		for x := 0; x < w; {
			mainc, combc, style, width := t.screen.GetContent(x, y+n) //nolint:staticcheck // cell copy needs the raw content
			t.screen.SetContent(x, y, mainc, combc, style)
			if width < 1 {
				width = 1
			}
			x += width
		}
	}
	for y := h - n; y < h; y++ {
		t.clearRow(y, 0, w)
	}
}

func (t *Screen) SetForeground(c tcell.Color) error {
	t.style = t.style.Foreground(c)
	return nil
}

func (t *Screen) ResetStyle() error {
	t.style = tcell.StyleDefault
	return nil
}

func (t *Screen) HideCursor() error {
	t.hidden = true
	t.screen.HideCursor()
	return nil
}

func (t *Screen) ShowCursor() error {
	t.hidden = false
	t.syncCursor()
	return nil
}

func (t *Screen) syncCursor() {
	if t.hidden {
		return
	}
	w, _ := t.screen.Size()
	x := t.x
	if x >= w {
		x = w - 1
	}
	t.screen.ShowCursor(x, t.y)
}

func (t *Screen) Flush() error {
	t.screen.Show()
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
